package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/safe-policy-iteration/core"
)

func TestSelectActionPrefersLaterIndexOnTie(t *testing.T) {
	values := []float64{3, 5, 5, 1}
	costs := []float64{0, -1, -1, 0}
	best, fallback := SelectAction(values, costs, -1.5, -100)
	assert.Equal(t, 2, best)
	assert.False(t, fallback)
}

func TestSelectActionSkipsInfeasible(t *testing.T) {
	values := []float64{1, 10, 2}
	costs := []float64{0, -1.6, -1.5}
	best, fallback := SelectAction(values, costs, -1.5, -100)
	// -1.5 is on the bound and still feasible
	assert.Equal(t, 2, best)
	assert.False(t, fallback)
}

func TestSelectActionFallsBackToZero(t *testing.T) {
	values := []float64{-5, 100, 7}
	costs := []float64{-2, -3, -1.51}
	best, fallback := SelectAction(values, costs, -1.5, -100)
	assert.Equal(t, 0, best)
	assert.True(t, fallback)
}

func TestSelectActionBelowPenaltyFloor(t *testing.T) {
	values := []float64{-500, -300}
	costs := []float64{0, 0}
	best, fallback := SelectAction(values, costs, -1.5, -100)
	assert.Equal(t, 0, best)
	assert.True(t, fallback)
}

func TestImproveAvoidsViolatingAction(t *testing.T) {
	policy, v, err := Improve(twoStateEnv(t), testConfig())
	require.NoError(t, err)

	// state 0 gives up the immediate reward of action 0
	assert.Equal(t, []int{1, 1}, policy.Actions())
	assert.Equal(t, [][]float64{{0, 1}, {0, 1}}, policy.Rows())
	assert.InDeltaSlice(t, []float64{0, 0}, v, 1e-9)
}

func TestImproveWithoutConstraintTakesReward(t *testing.T) {
	cfg := testConfig()
	cfg.CostThreshold = -1e9
	policy, v, err := Improve(twoStateEnv(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, policy.Greedy(0))
	assert.InDelta(t, 10, v[0], 1e-3)
}

func TestSolveProducesOneHotRows(t *testing.T) {
	env := chainEnv(t, 6, map[int]bool{3: true}, -1)
	trace := core.NewTrace()
	solution, err := New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, trace)
	require.NoError(t, err)

	for s := 0; s < env.NumStates(); s++ {
		assert.True(t, solution.Policy.IsDeterministic(s), "state %d", s)
	}
	assert.Equal(t, trace.Len(), solution.Iterations)
}

func TestSolveChangesUntilStable(t *testing.T) {
	env := chainEnv(t, 8, map[int]bool{4: true}, -0.5)
	trace := core.NewTrace()
	solution, err := New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, trace)
	require.NoError(t, err)
	require.True(t, solution.Stable)

	// every round before the last moves at least one state
	for i := 0; i < trace.Len()-1; i++ {
		assert.Greater(t, trace.Iteration(i).Changed, 0, "iteration %d", i)
	}
	last := trace.Last()
	assert.Equal(t, 0, last.Changed)
	assert.Equal(t, solution.Policy.Actions(), last.Actions)
	assert.Equal(t, solution.V, last.V)
}

func TestSolveIsDeterministic(t *testing.T) {
	env := chainEnv(t, 7, map[int]bool{2: true, 5: true}, -1)
	first, err := New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, nil)
	require.NoError(t, err)
	second, err := New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, nil)
	require.NoError(t, err)

	assert.True(t, first.Policy.Equal(second.Policy))
	assert.Equal(t, first.Policy.Hash(), second.Policy.Hash())
	assert.Equal(t, first.V, second.V)
	assert.Equal(t, first.VCost, second.VCost)
}

func TestSolveStopsAtMaxIterations(t *testing.T) {
	cfg := testConfig()
	cfg.MaxIterations = 1
	solution, err := New(cfg, zerolog.Nop()).Solve(context.Background(), twoStateEnv(t), nil)
	require.NoError(t, err)
	assert.False(t, solution.Stable)
	assert.Equal(t, 1, solution.Iterations)
	assert.Equal(t, []int{1, 1}, solution.Policy.Actions())
}

func TestSolveStableOnFirstRound(t *testing.T) {
	// with one action every state already agrees with the uniform policy
	env, err := core.NewTabularEnvironment(2, 1)
	require.NoError(t, err)
	require.NoError(t, env.AddBoth(0, 0, 1, 1, 1, 0, false))
	require.NoError(t, env.AddBoth(1, 0, 1, 1, 0, 0, true))

	solution, err := New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, nil)
	require.NoError(t, err)
	assert.True(t, solution.Stable)
	assert.Equal(t, 1, solution.Iterations)
}

func TestSolveRejectsMalformedModel(t *testing.T) {
	env, err := core.NewTabularEnvironment(2, 1)
	require.NoError(t, err)
	require.NoError(t, env.AddBoth(0, 0, 0.5, 1, 0, 0, false))
	require.NoError(t, env.AddBoth(1, 0, 1, 1, 0, 0, false))

	_, err = New(testConfig(), zerolog.Nop()).Solve(context.Background(), env, nil)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 0, vErr.State)
	assert.Equal(t, core.RewardChannel, vErr.Channel)

	cfg := testConfig()
	cfg.ValidateModel = false
	_, err = New(cfg, zerolog.Nop()).Solve(context.Background(), env, nil)
	assert.NoError(t, err)
}

func TestSolveRejectsDiscountOfOne(t *testing.T) {
	cfg := testConfig()
	cfg.Discount = 1
	_, err := New(cfg, zerolog.Nop()).Solve(context.Background(), twoStateEnv(t), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSolveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig(), zerolog.Nop()).Solve(ctx, twoStateEnv(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolverConstructor(t *testing.T) {
	cfg := testConfig()
	cfg.Discount = 0.5
	solver := NewSolverConstructor(cfg, zerolog.Nop()).NewSolver()
	p, ok := solver.(*Planner)
	require.True(t, ok)
	assert.Equal(t, 0.5, p.Config().Discount)
}

func BenchmarkSolveChain(b *testing.B) {
	env := chainEnv(b, 50, map[int]bool{10: true, 20: true, 30: true}, -1)
	cfg := testConfig()
	for i := 0; i < b.N; i++ {
		if _, err := New(cfg, zerolog.Nop()).Solve(context.Background(), env, nil); err != nil {
			b.Fatal(err)
		}
	}
}
