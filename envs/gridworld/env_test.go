package gridworld

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/planner"
)

var middleWall = []Cell{{1, 2}, {2, 2}, {3, 2}}

func TestNewDefaultIsValid(t *testing.T) {
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 25, g.NumStates())
	assert.Equal(t, NumActions, g.NumActions())
	assert.Equal(t, []int{5, 5}, g.Shape())
	assert.NoError(t, core.Validate(g, 1e-12))
	assert.True(t, g.IsTerminal(0))
	assert.True(t, g.IsTerminal(24))
	assert.True(t, g.IsHazard(g.State(Cell{2, 2})))
}

func TestTransitions(t *testing.T) {
	g, err := New(DefaultConfig())
	require.NoError(t, err)

	// terminals loop on themselves for free
	for a := 0; a < NumActions; a++ {
		tr := g.Transitions(core.RewardChannel, 0, a)
		require.Len(t, tr, 1)
		assert.Equal(t, core.Transition{Prob: 1, Next: 0, Signal: 0, Terminal: true}, tr[0])
	}

	// moving up from the top row stays put
	s := g.State(Cell{0, 3})
	tr := g.Transitions(core.RewardChannel, s, Up)
	assert.Equal(t, s, tr[0].Next)
	assert.Equal(t, -1.0, tr[0].Signal)

	// entering a hazard costs, leaving one does not
	s = g.State(Cell{1, 1})
	cost := g.Transitions(core.CostChannel, s, Right)
	assert.Equal(t, g.State(Cell{1, 2}), cost[0].Next)
	assert.Equal(t, -1.0, cost[0].Signal)
	cost = g.Transitions(core.CostChannel, g.State(Cell{1, 2}), Left)
	assert.Equal(t, 0.0, cost[0].Signal)

	// reaching a terminal flags the transition
	tr = g.Transitions(core.RewardChannel, g.State(Cell{4, 3}), Right)
	assert.True(t, tr[0].Terminal)
}

func TestSlipSplitsPerpendicular(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Slip = 0.2
	g, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, core.Validate(g, 1e-12))

	s := g.State(Cell{2, 1})
	tr := g.Transitions(core.RewardChannel, s, Up)
	require.Len(t, tr, 3)
	assert.Equal(t, g.State(Cell{1, 1}), tr[0].Next)
	assert.InDelta(t, 0.8, tr[0].Prob, 1e-12)
	assert.Equal(t, g.State(Cell{2, 2}), tr[1].Next)
	assert.Equal(t, g.State(Cell{2, 0}), tr[2].Next)
	assert.InDelta(t, 0.1, tr[2].Prob, 1e-12)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Rows: 0, Cols: 3})
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Hazards = []Cell{{7, 7}}
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Slip = 1.5
	_, err = New(cfg)
	assert.Error(t, err)
}

func entersHazard(g *Gridworld, policy *core.Policy) []int {
	states := make([]int, 0)
	for s := 0; s < g.NumStates(); s++ {
		next := g.Transitions(core.RewardChannel, s, policy.Greedy(s))[0].Next
		if g.IsHazard(next) && !g.IsTerminal(s) {
			states = append(states, s)
		}
	}
	return states
}

func TestPlanAvoidsCostlyHazards(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hazards = middleWall
	cfg.HazardCost = -2
	g, err := New(cfg)
	require.NoError(t, err)

	solution, err := planner.New(planner.DefaultConfig(), zerolog.Nop()).Solve(context.Background(), g, nil)
	require.NoError(t, err)
	assert.True(t, solution.Stable)
	assert.Empty(t, entersHazard(g, solution.Policy))
	for s, c := range solution.VCost {
		assert.GreaterOrEqual(t, c, -1.5, "state %d", s)
	}

	// without the bound the planner cuts through the wall from (1, 3)
	pcfg := planner.DefaultConfig()
	pcfg.CostThreshold = -1e9
	solution, err = planner.New(pcfg, zerolog.Nop()).Solve(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{g.State(Cell{1, 3})}, entersHazard(g, solution.Policy))
}

func TestPlanDefaultGrid(t *testing.T) {
	g, err := New(DefaultConfig())
	require.NoError(t, err)
	policy, v, err := planner.Improve(g, planner.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []int{
		3, 3, 3, 3, 3,
		0, 3, 3, 3, 2,
		0, 3, 3, 2, 2,
		0, 3, 2, 2, 2,
		1, 1, 1, 1, 3,
	}, policy.Actions())
	assert.InDelta(t, 0, v[0], 1e-9)
	assert.InDelta(t, -1, v[1], 1e-4)
	assert.InDelta(t, -3.439, v[4], 1e-3)
}

func TestPainter(t *testing.T) {
	g, err := New(Config{Rows: 2, Cols: 2, StepReward: -1, HazardCost: -1, Hazards: []Cell{{0, 1}}})
	require.NoError(t, err)
	policy := core.NewUniformPolicy(4, NumActions)
	policy.SetDeterministic(1, Down)
	policy.SetDeterministic(2, Right)

	painter := NewPainter(g, false)
	buf := new(bytes.Buffer)
	painter.Policy(buf, policy)
	assert.Equal(t, " T  v \n >  T \n", buf.String())

	buf.Reset()
	painter.Actions(buf, policy)
	assert.Equal(t, " 0 2\n 1 0\n", buf.String())

	buf.Reset()
	painter.Values(buf, []float64{0, -1.5, 2, 0})
	assert.Equal(t, "  000.00| -001.50|\n  002.00|  000.00|\n", buf.String())
}
