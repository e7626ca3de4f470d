package analysis

import (
	"path"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/util"
)

type convergenceDataset struct {
	Stable     bool      `json:"stable"`
	Iterations int       `json:"iterations"`
	Seconds    float64   `json:"seconds"`
	Changed    []int     `json:"changed"`
	Sweeps     []int     `json:"sweeps"`
	Deltas     []float64 `json:"deltas"`
	Error      string    `json:"error,omitempty"`
}

func (c *convergenceDataset) Copy() *convergenceDataset {
	return &convergenceDataset{
		Stable:     c.Stable,
		Iterations: c.Iterations,
		Seconds:    c.Seconds,
		Changed:    util.CopyIntSlice(c.Changed),
		Sweeps:     util.CopyIntSlice(c.Sweeps),
		Deltas:     util.CopyFloatSlice(c.Deltas),
		Error:      c.Error,
	}
}

// ConvergenceAnalyzer records how many states changed action and how many
// evaluation sweeps were needed in every iteration of a solve.
type ConvergenceAnalyzer struct {
	dataset *convergenceDataset
}

var _ core.Analyzer = &ConvergenceAnalyzer{}

func NewConvergenceAnalyzer() *ConvergenceAnalyzer {
	c := &ConvergenceAnalyzer{}
	c.Reset()
	return c
}

func (c *ConvergenceAnalyzer) Reset() {
	c.dataset = &convergenceDataset{
		Changed: make([]int, 0),
		Sweeps:  make([]int, 0),
		Deltas:  make([]float64, 0),
	}
}

func (c *ConvergenceAnalyzer) Analyze(rCtx *core.RunContext, trace *core.Trace) {
	c.dataset.Seconds = rCtx.Duration.Seconds()
	if rCtx.IsError() {
		c.dataset.Error = rCtx.Err().Error()
	} else {
		c.dataset.Stable = rCtx.Solution.Stable
	}
	for i := 0; i < trace.Len(); i++ {
		iter := trace.Iteration(i)
		c.dataset.Changed = append(c.dataset.Changed, iter.Changed)
		c.dataset.Sweeps = append(c.dataset.Sweeps, iter.Sweeps)
		c.dataset.Deltas = append(c.dataset.Deltas, iter.Delta)
	}
	c.dataset.Iterations = trace.Len()
}

func (c *ConvergenceAnalyzer) DataSet() core.DataSet {
	return c.dataset.Copy()
}

type ConvergenceAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &ConvergenceAnalyzerConstructor{}

func NewConvergenceAnalyzerConstructor() *ConvergenceAnalyzerConstructor {
	return &ConvergenceAnalyzerConstructor{}
}

func (c *ConvergenceAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewConvergenceAnalyzer()
}

// ConvergenceComparator writes the datasets of all experiments to
// convergence.json and charts them in convergence.html.
type ConvergenceComparator struct {
	savePath string
}

var _ core.Comparator = &ConvergenceComparator{}

func NewConvergenceComparator(savePath string) *ConvergenceComparator {
	return &ConvergenceComparator{
		savePath: savePath,
	}
}

func (c *ConvergenceComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*convergenceDataset)
	names := make([]string, 0, len(experimentNames))
	series := make([]*convergenceDataset, 0, len(experimentNames))
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*convergenceDataset)
		if !ok || ds == nil {
			continue
		}
		out[name] = ds
		names = append(names, name)
		series = append(series, ds)
	}

	file := path.Join(c.savePath, "convergence.json")
	if err := util.SaveJson(file, out); err != nil {
		log.Error().Err(err).Str("file", file).Msg("saving convergence data")
	}
	file = path.Join(c.savePath, "convergence.html")
	if err := renderConvergence(file, names, series); err != nil {
		log.Error().Err(err).Str("file", file).Msg("rendering convergence chart")
	}
}

type ConvergenceComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &ConvergenceComparatorConstructor{}

func NewConvergenceComparatorConstructor(savePath string) *ConvergenceComparatorConstructor {
	return &ConvergenceComparatorConstructor{
		savePath: savePath,
	}
}

func (c *ConvergenceComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewConvergenceComparator(path.Join(c.savePath, strconv.Itoa(run)))
}
