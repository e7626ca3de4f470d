package planner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/util"
)

// Planner runs cost-constrained policy iteration.
type Planner struct {
	cfg    Config
	logger zerolog.Logger
}

var _ core.Solver = &Planner{}

func New(cfg Config, logger zerolog.Logger) *Planner {
	return &Planner{
		cfg:    cfg,
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

func (p *Planner) Config() Config {
	return p.cfg
}

// Solve starts from the uniform policy and alternates evaluation with
// greedy improvement until no state changes its action or MaxIterations
// rounds have run. Running out of rounds is not an error, the last policy
// is returned with Stable unset.
func (p *Planner) Solve(ctx context.Context, env core.Environment, trace *core.Trace) (*core.Solution, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if p.cfg.ValidateModel {
		if err := core.Validate(env, p.cfg.ProbabilityTolerance); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	policy := core.NewUniformPolicy(env.NumStates(), env.NumActions())
	solution := &core.Solution{Policy: policy}

	for i := 0; i < p.cfg.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		eval, err := Evaluate(ctx, policy, env, p.cfg)
		if err != nil {
			return nil, err
		}
		if !eval.Converged {
			p.logger.Warn().
				Int("iteration", i).
				Int("sweeps", eval.Sweeps).
				Float64("delta", eval.Delta).
				Msg("evaluation hit the sweep limit")
		}

		changed, fallbacks := p.improve(policy, env, eval)
		solution.V = eval.V
		solution.VCost = eval.VCost
		solution.Iterations = i + 1

		if trace != nil {
			trace.AddIteration(&core.Iteration{
				Index:     i,
				Sweeps:    eval.Sweeps,
				Delta:     eval.Delta,
				Converged: eval.Converged,
				Changed:   changed,
				Fallbacks: fallbacks,
				Actions:   policy.Actions(),
				V:         util.CopyFloatSlice(eval.V),
				VCost:     util.CopyFloatSlice(eval.VCost),
			})
		}
		p.logger.Debug().
			Int("iteration", i).
			Int("sweeps", eval.Sweeps).
			Int("changed", changed).
			Int("fallbacks", fallbacks).
			Msg("improvement round")

		if changed == 0 {
			solution.Stable = true
			p.logger.Info().
				Int("iterations", solution.Iterations).
				Dur("elapsed", time.Since(start)).
				Msg("policy stable")
			return solution, nil
		}
	}

	p.logger.Warn().
		Int("max_iterations", p.cfg.MaxIterations).
		Dur("elapsed", time.Since(start)).
		Msg("policy did not stabilise, returning last policy")
	return solution, nil
}

// improve makes policy greedy with respect to eval, in place. It returns
// the number of states whose action moved and the number of states that
// had no feasible action.
func (p *Planner) improve(policy *core.Policy, env core.Environment, eval *Evaluation) (changed, fallbacks int) {
	for s := 0; s < env.NumStates(); s++ {
		chosen := policy.Greedy(s)
		values, costs := Lookahead(env, s, eval.V, eval.VCost, p.cfg.Discount)
		best, fallback := SelectAction(values, costs, p.cfg.CostThreshold, p.cfg.Penalty)
		if fallback {
			fallbacks++
		}
		if best != chosen {
			changed++
		}
		policy.SetDeterministic(s, best)
	}
	return changed, fallbacks
}

// Improve runs the planner without logging or tracing and returns the
// final policy with its reward value function.
func Improve(env core.Environment, cfg Config) (*core.Policy, []float64, error) {
	solution, err := New(cfg, zerolog.Nop()).Solve(context.Background(), env, nil)
	if err != nil {
		return nil, nil, err
	}
	return solution.Policy, solution.V, nil
}

type SolverConstructor struct {
	Config Config
	Logger zerolog.Logger
}

var _ core.SolverConstructor = &SolverConstructor{}

func NewSolverConstructor(cfg Config, logger zerolog.Logger) *SolverConstructor {
	return &SolverConstructor{
		Config: cfg,
		Logger: logger,
	}
}

func (c *SolverConstructor) NewSolver() core.Solver {
	return New(c.Config, c.Logger)
}
