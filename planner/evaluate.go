package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/zeu5/safe-policy-iteration/core"
	"gonum.org/v1/gonum/floats"
)

// Evaluation holds the reward and cost value functions of a policy.
type Evaluation struct {
	V         []float64
	VCost     []float64
	Sweeps    int
	Delta     float64
	Converged bool
}

// Evaluate computes the reward and cost value functions of policy by
// repeated full sweeps, stopping once the largest change of V within a
// sweep drops below cfg.Tolerance. The reward backup of a state carries
// cfg.Penalty whenever that state's cost value from the previous sweep is
// below cfg.CostThreshold.
//
// ctx is checked before every sweep. Neither the policy nor the
// environment is modified.
func Evaluate(ctx context.Context, policy *core.Policy, env core.Environment, cfg Config) (*Evaluation, error) {
	if err := cfg.validateEvaluation(); err != nil {
		return nil, err
	}
	nS, nA := env.NumStates(), env.NumActions()
	if policy.NumStates() != nS || policy.NumActions() != nA {
		return nil, fmt.Errorf(
			"%w: policy is %dx%d, environment is %dx%d",
			ErrShapeMismatch, policy.NumStates(), policy.NumActions(), nS, nA,
		)
	}

	v := make([]float64, nS)
	vCost := make([]float64, nS)
	vPrev := make([]float64, nS)
	costPrev := make([]float64, nS)

	eval := &Evaluation{V: v, VCost: vCost}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		copy(vPrev, v)
		copy(costPrev, vCost)

		// successors are read in place unless the update is synchronous
		succV, succCost := v, vCost
		if cfg.Synchronous {
			succV, succCost = vPrev, costPrev
		}

		for s := 0; s < nS; s++ {
			penalty := 0.0
			if costPrev[s] < cfg.CostThreshold {
				penalty = cfg.Penalty
			}
			var reward, cost float64
			for a := 0; a < nA; a++ {
				actionProb := policy.Prob(s, a)
				for _, tr := range env.Transitions(core.RewardChannel, s, a) {
					reward += actionProb * tr.Prob * (tr.Signal + penalty + cfg.Discount*succV[tr.Next])
				}
				for _, tr := range env.Transitions(core.CostChannel, s, a) {
					cost += actionProb * tr.Prob * (tr.Signal + cfg.Discount*succCost[tr.Next])
				}
			}
			v[s] = reward
			vCost[s] = cost
		}

		eval.Sweeps++
		eval.Delta = floats.Distance(v, vPrev, math.Inf(1))
		if eval.Delta < cfg.Tolerance {
			eval.Converged = true
			return eval, nil
		}
		if cfg.MaxSweeps > 0 && eval.Sweeps >= cfg.MaxSweeps {
			return eval, nil
		}
	}
}

func (c Config) validateEvaluation() error {
	if c.Discount < 0 || c.Discount >= 1 {
		return fmt.Errorf("%w: discount %v must be in [0, 1)", ErrInvalidConfig, c.Discount)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance %v must be positive", ErrInvalidConfig, c.Tolerance)
	}
	if c.MaxSweeps < 0 {
		return fmt.Errorf("%w: max sweeps %d must not be negative", ErrInvalidConfig, c.MaxSweeps)
	}
	return nil
}
