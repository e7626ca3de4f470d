package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeu5/safe-policy-iteration/core"
)

// twoStateEnv: in state 0, action 0 loops with reward 1 and cost -2 while
// action 1 moves to the absorbing state 1 for free.
func twoStateEnv(t testing.TB) *core.TabularEnvironment {
	t.Helper()
	env, err := core.NewTabularEnvironment(2, 2)
	require.NoError(t, err)
	require.NoError(t, env.AddBoth(0, 0, 1.0, 0, 1.0, -2.0, false))
	require.NoError(t, env.AddBoth(0, 1, 1.0, 1, 0.0, 0.0, false))
	require.NoError(t, env.AddBoth(1, 0, 1.0, 1, 0.0, 0.0, false))
	require.NoError(t, env.AddBoth(1, 1, 1.0, 1, 0.0, 0.0, false))
	return env
}

// chainEnv is a corridor of n states with actions 0=left and 1=right. The
// last state is an absorbing goal, every other step costs a reward of -1.
// Entering a hazard state adds hazardCost on the cost channel.
func chainEnv(t testing.TB, n int, hazards map[int]bool, hazardCost float64) *core.TabularEnvironment {
	t.Helper()
	env, err := core.NewTabularEnvironment(n, 2)
	require.NoError(t, err)
	for s := 0; s < n; s++ {
		if s == n-1 {
			require.NoError(t, env.AddBoth(s, 0, 1, s, 0, 0, true))
			require.NoError(t, env.AddBoth(s, 1, 1, s, 0, 0, true))
			continue
		}
		for a, next := range []int{s - 1, s + 1} {
			if next < 0 {
				next = 0
			}
			cost := 0.0
			if hazards[next] {
				cost = hazardCost
			}
			require.NoError(t, env.AddBoth(s, a, 1, next, -1, cost, next == n-1))
		}
	}
	return env
}

func testConfig() Config {
	return DefaultConfig()
}
