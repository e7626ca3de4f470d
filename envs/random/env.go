package random

import (
	"fmt"

	"github.com/zeu5/safe-policy-iteration/core"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Config of a randomly generated two-channel MDP. Every (state, action) pair
// gets Branching distinct successors with random weights. Rewards and costs
// are drawn uniformly from their ranges.
type Config struct {
	States    int     `json:"states"`
	Actions   int     `json:"actions"`
	Branching int     `json:"branching"`
	RewardMin float64 `json:"reward_min"`
	RewardMax float64 `json:"reward_max"`
	CostMin   float64 `json:"cost_min"`
	CostMax   float64 `json:"cost_max"`
	Seed      uint64  `json:"seed"`
	// SharedSuccessors makes the cost channel reuse the successor
	// distribution of the reward channel.
	SharedSuccessors bool `json:"shared_successors"`
}

func DefaultConfig() Config {
	return Config{
		States:           20,
		Actions:          3,
		Branching:        3,
		RewardMin:        -1,
		RewardMax:        1,
		CostMin:          -1,
		CostMax:          0,
		Seed:             1,
		SharedSuccessors: true,
	}
}

func (c Config) validate() error {
	if c.States <= 0 || c.Actions <= 0 {
		return fmt.Errorf("need at least one state and one action, got %d and %d", c.States, c.Actions)
	}
	if c.Branching <= 0 || c.Branching > c.States {
		return fmt.Errorf("branching %d must be in [1, %d]", c.Branching, c.States)
	}
	if c.RewardMin > c.RewardMax || c.CostMin > c.CostMax {
		return fmt.Errorf("signal ranges must be ordered")
	}
	return nil
}

// New generates a tabular environment from cfg. The same config always yields
// the same model.
func New(cfg Config) (*core.TabularEnvironment, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	env, err := core.NewTabularEnvironment(cfg.States, cfg.Actions)
	if err != nil {
		return nil, err
	}
	src := erand.NewSource(cfg.Seed)
	rnd := erand.New(src)

	for s := 0; s < cfg.States; s++ {
		for a := 0; a < cfg.Actions; a++ {
			next, probs := successors(cfg, src, rnd)
			for i, n := range next {
				err := env.Add(core.RewardChannel, s, a, core.Transition{
					Prob:   probs[i],
					Next:   n,
					Signal: uniform(rnd, cfg.RewardMin, cfg.RewardMax),
				})
				if err != nil {
					return nil, err
				}
			}
			if !cfg.SharedSuccessors {
				next, probs = successors(cfg, src, rnd)
			}
			for i, n := range next {
				err := env.Add(core.CostChannel, s, a, core.Transition{
					Prob:   probs[i],
					Next:   n,
					Signal: uniform(rnd, cfg.CostMin, cfg.CostMax),
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return env, nil
}

func successors(cfg Config, src erand.Source, rnd *erand.Rand) ([]int, []float64) {
	next := make([]int, cfg.Branching)
	sampleuv.WithoutReplacement(next, cfg.States, src)

	probs := make([]float64, cfg.Branching)
	for i := range probs {
		// keep weights away from zero so every successor stays reachable
		probs[i] = 0.1 + rnd.Float64()
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return next, probs
}

func uniform(rnd *erand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rnd.Float64()
}

// Constructor generates a different model per run by offsetting the seed.
type Constructor struct {
	Config Config
}

var _ core.EnvironmentConstructor = &Constructor{}

func NewConstructor(cfg Config) *Constructor {
	return &Constructor{Config: cfg}
}

func (c *Constructor) NewEnvironment(run int) (core.Environment, error) {
	cfg := c.Config
	cfg.Seed += uint64(run)
	return New(cfg)
}
