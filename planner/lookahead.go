package planner

import "github.com/zeu5/safe-policy-iteration/core"

// Lookahead expands one step from state for every action, against the
// given reward and cost value functions. No penalty is applied here.
func Lookahead(env core.Environment, state int, v, vCost []float64, discount float64) (values, costs []float64) {
	nA := env.NumActions()
	values = make([]float64, nA)
	costs = make([]float64, nA)
	for a := 0; a < nA; a++ {
		for _, tr := range env.Transitions(core.RewardChannel, state, a) {
			values[a] += tr.Prob * (tr.Signal + discount*v[tr.Next])
		}
		for _, tr := range env.Transitions(core.CostChannel, state, a) {
			costs[a] += tr.Prob * (tr.Signal + discount*vCost[tr.Next])
		}
	}
	return values, costs
}

// SelectAction returns the feasible action with the highest reward value,
// where an action is feasible when its cost value is at least threshold.
// The scan starts from penalty as the best value seen so far and a later
// action replaces the current best on equal value.
//
// Action 0 is returned with fallback set when nothing is feasible, or when
// no feasible action reaches the penalty floor.
func SelectAction(values, costs []float64, threshold, penalty float64) (best int, fallback bool) {
	found := false
	bestValue := penalty
	for a := range costs {
		if costs[a] < threshold {
			continue
		}
		if values[a] >= bestValue {
			bestValue = values[a]
			best = a
			found = true
		}
	}
	if !found {
		return 0, true
	}
	return best, false
}
