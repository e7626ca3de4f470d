package analysis

import (
	"bytes"
	"fmt"
	"path"

	"github.com/rs/zerolog/log"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/util"
)

// ErrorAnalyzer writes failed solves to errors/<run>_<experiment>_error.txt
// together with the iterations recorded before the failure.
type ErrorAnalyzer struct {
	savePath string
	exp      string
}

var _ core.Analyzer = &ErrorAnalyzer{}

func NewErrorAnalyzer(savePath string) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		savePath: path.Join(savePath, "errors"),
	}
}

func (a *ErrorAnalyzer) Analyze(rCtx *core.RunContext, trace *core.Trace) {
	if !rCtx.IsError() {
		return
	}
	buf := new(bytes.Buffer)
	buf.WriteString(fmt.Sprintf("Error: %s\n", rCtx.Err()))
	buf.WriteString(traceToString(trace))

	fileName := fmt.Sprintf("%d_error.txt", rCtx.Run)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_error.txt", rCtx.Run, a.exp)
	}
	file := path.Join(a.savePath, fileName)
	if err := util.SaveBytes(file, buf.Bytes()); err != nil {
		log.Error().Err(err).Str("file", file).Msg("saving error report")
	}
}

func traceToString(trace *core.Trace) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Iterations: %d\n", trace.Len())
	for i := 0; i < trace.Len(); i++ {
		iter := trace.Iteration(i)
		fmt.Fprintf(
			buf,
			"%d: sweeps=%d delta=%g converged=%t changed=%d fallbacks=%d actions=%v\n",
			iter.Index, iter.Sweeps, iter.Delta, iter.Converged, iter.Changed, iter.Fallbacks, iter.Actions,
		)
	}
	return buf.String()
}

func (a *ErrorAnalyzer) DataSet() core.DataSet {
	return nil
}

func (a *ErrorAnalyzer) Reset() {
	// do nothing
}

type ErrorAnalyzerConstructor struct {
	SavePath string
}

var _ core.AnalyzerConstructor = &ErrorAnalyzerConstructor{}

func NewErrorAnalyzerConstructor(savePath string) *ErrorAnalyzerConstructor {
	return &ErrorAnalyzerConstructor{
		SavePath: savePath,
	}
}

func (e *ErrorAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	return &ErrorAnalyzer{
		savePath: path.Join(e.SavePath, "errors"),
		exp:      exp,
	}
}

// NoOpComparator pairs with analyzers that only have side effects.
type NoOpComparator struct{}

var _ core.Comparator = NoOpComparator{}

func (NoOpComparator) Compare(_ []string, _ []core.DataSet) {}

func (n NoOpComparator) NewComparator(_ int) core.Comparator {
	return n
}
