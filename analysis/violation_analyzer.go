package analysis

import (
	"path"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/util"
)

type violationDataset struct {
	Threshold float64 `json:"threshold"`
	// Violating lists the states whose final cost value is below threshold.
	Violating []int `json:"violating"`
	// Fallbacks per iteration, states where no action was feasible.
	Fallbacks []int     `json:"fallbacks"`
	MinCost   float64   `json:"min_cost"`
	VCost     []float64 `json:"v_cost"`
}

// ViolationAnalyzer checks the final cost values of a solve against the
// threshold the planner was asked to respect.
type ViolationAnalyzer struct {
	threshold float64
	dataset   *violationDataset
}

var _ core.Analyzer = &ViolationAnalyzer{}

func NewViolationAnalyzer(threshold float64) *ViolationAnalyzer {
	v := &ViolationAnalyzer{threshold: threshold}
	v.Reset()
	return v
}

func (v *ViolationAnalyzer) Reset() {
	v.dataset = &violationDataset{
		Threshold: v.threshold,
		Violating: make([]int, 0),
		Fallbacks: make([]int, 0),
	}
}

func (v *ViolationAnalyzer) Analyze(rCtx *core.RunContext, trace *core.Trace) {
	for i := 0; i < trace.Len(); i++ {
		v.dataset.Fallbacks = append(v.dataset.Fallbacks, trace.Iteration(i).Fallbacks)
	}
	if rCtx.IsError() || rCtx.Solution == nil {
		return
	}
	v.dataset.VCost = append([]float64(nil), rCtx.Solution.VCost...)
	for s, c := range rCtx.Solution.VCost {
		if s == 0 || c < v.dataset.MinCost {
			v.dataset.MinCost = c
		}
		if c < v.threshold {
			v.dataset.Violating = append(v.dataset.Violating, s)
		}
	}
}

func (v *ViolationAnalyzer) DataSet() core.DataSet {
	out := *v.dataset
	out.Violating = append(make([]int, 0, len(v.dataset.Violating)), v.dataset.Violating...)
	out.Fallbacks = append(make([]int, 0, len(v.dataset.Fallbacks)), v.dataset.Fallbacks...)
	out.VCost = append([]float64(nil), v.dataset.VCost...)
	return &out
}

type ViolationAnalyzerConstructor struct {
	Threshold float64
}

var _ core.AnalyzerConstructor = &ViolationAnalyzerConstructor{}

func NewViolationAnalyzerConstructor(threshold float64) *ViolationAnalyzerConstructor {
	return &ViolationAnalyzerConstructor{Threshold: threshold}
}

func (c *ViolationAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewViolationAnalyzer(c.Threshold)
}

type ViolationComparator struct {
	savePath string
}

var _ core.Comparator = &ViolationComparator{}

func NewViolationComparator(savePath string) *ViolationComparator {
	return &ViolationComparator{
		savePath: path.Join(savePath, "violations.json"),
	}
}

func (c *ViolationComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]*violationDataset)
	for i, name := range experimentNames {
		if ds, ok := datasets[i].(*violationDataset); ok && ds != nil {
			out[name] = ds
		}
	}
	if err := util.SaveJson(c.savePath, out); err != nil {
		log.Error().Err(err).Str("file", c.savePath).Msg("saving violations")
	}
}

type ViolationComparatorConstructor struct {
	savePath string
}

var _ core.ComparatorConstructor = &ViolationComparatorConstructor{}

func NewViolationComparatorConstructor(savePath string) *ViolationComparatorConstructor {
	return &ViolationComparatorConstructor{
		savePath: savePath,
	}
}

func (c *ViolationComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewViolationComparator(path.Join(c.savePath, strconv.Itoa(run)))
}
