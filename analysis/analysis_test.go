package analysis

import (
	"context"
	"errors"
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/util"
)

func sampleTrace() *core.Trace {
	trace := core.NewTrace()
	trace.AddIteration(&core.Iteration{Index: 0, Sweeps: 12, Delta: 1e-6, Converged: true, Changed: 3, Fallbacks: 1, Actions: []int{1, 0, 1}})
	trace.AddIteration(&core.Iteration{Index: 1, Sweeps: 5, Delta: 1e-6, Converged: true, Changed: 0, Actions: []int{1, 0, 1}})
	return trace
}

func sampleRun() *core.RunContext {
	return &core.RunContext{
		Context:    context.Background(),
		Experiment: "exp",
		Duration:   2 * time.Second,
		Solution: &core.Solution{
			Policy:     core.NewUniformPolicy(3, 2),
			V:          []float64{-1, -2, 0},
			VCost:      []float64{-0.5, -2, 0},
			Iterations: 2,
			Stable:     true,
		},
	}
}

func TestConvergenceAnalyzer(t *testing.T) {
	a := NewConvergenceAnalyzer()
	a.Analyze(sampleRun(), sampleTrace())

	ds := a.DataSet().(*convergenceDataset)
	assert.True(t, ds.Stable)
	assert.Equal(t, 2, ds.Iterations)
	assert.Equal(t, []int{3, 0}, ds.Changed)
	assert.Equal(t, []int{12, 5}, ds.Sweeps)
	assert.Equal(t, 2.0, ds.Seconds)

	// the dataset is a snapshot
	a.Reset()
	assert.Len(t, ds.Changed, 2)
	assert.Empty(t, a.DataSet().(*convergenceDataset).Changed)
}

func TestViolationAnalyzer(t *testing.T) {
	a := NewViolationAnalyzer(-1.5)
	a.Analyze(sampleRun(), sampleTrace())

	ds := a.DataSet().(*violationDataset)
	assert.Equal(t, []int{1}, ds.Violating)
	assert.Equal(t, []int{1, 0}, ds.Fallbacks)
	assert.Equal(t, -2.0, ds.MinCost)
}

func TestConvergenceComparatorWritesFiles(t *testing.T) {
	dir := t.TempDir()
	a := NewConvergenceAnalyzer()
	a.Analyze(sampleRun(), sampleTrace())

	cmp := NewConvergenceComparatorConstructor(dir).NewComparator(3)
	cmp.Compare([]string{"ok", "failed"}, []core.DataSet{a.DataSet(), nil})

	out := make(map[string]*convergenceDataset)
	require.NoError(t, util.ReadJson(path.Join(dir, "3", "convergence.json"), &out))
	require.Contains(t, out, "ok")
	assert.NotContains(t, out, "failed")
	assert.Equal(t, []int{3, 0}, out["ok"].Changed)

	html, err := os.ReadFile(path.Join(dir, "3", "convergence.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Changed actions per iteration")
}

func TestViolationComparatorWritesFile(t *testing.T) {
	dir := t.TempDir()
	a := NewViolationAnalyzer(-1.5)
	a.Analyze(sampleRun(), sampleTrace())

	NewViolationComparatorConstructor(dir).NewComparator(0).Compare([]string{"exp"}, []core.DataSet{a.DataSet()})

	out := make(map[string]*violationDataset)
	require.NoError(t, util.ReadJson(path.Join(dir, "0", "violations.json"), &out))
	assert.Equal(t, []int{1}, out["exp"].Violating)
}

func TestErrorAnalyzerWritesOnlyFailures(t *testing.T) {
	dir := t.TempDir()
	a := NewErrorAnalyzerConstructor(dir).NewAnalyzer("exp", 2)

	a.Analyze(sampleRun(), sampleTrace())
	_, err := os.Stat(path.Join(dir, "errors", "2_exp_error.txt"))
	assert.True(t, os.IsNotExist(err))

	failed := &core.RunContext{Experiment: "exp", Run: 2}
	failed.SetError(errors.New("boom"))
	a.Analyze(failed, sampleTrace())

	bs, err := os.ReadFile(path.Join(dir, "errors", "2_exp_error.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "Error: boom")
	assert.Contains(t, string(bs), "Iterations: 2")
}
