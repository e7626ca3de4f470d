package planner

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid planner config")
	ErrShapeMismatch = errors.New("policy shape does not match environment")
)

// Config carries the constants of the algorithm.
type Config struct {
	// Discount must lie in [0, 1).
	Discount float64 `json:"discount"`
	// Tolerance stops an evaluation once the largest change of V in a sweep
	// is below it.
	Tolerance float64 `json:"tolerance"`
	// Penalty is added to every reward backup of a state whose cost value
	// was below CostThreshold in the previous sweep.
	Penalty float64 `json:"penalty"`
	// CostThreshold is the feasibility bound. More negative cost values
	// mean more violation.
	CostThreshold float64 `json:"cost_threshold"`
	// MaxIterations caps improvement rounds.
	MaxIterations int `json:"max_iterations"`
	// MaxSweeps caps sweeps per evaluation, zero leaves it unbounded.
	MaxSweeps int `json:"max_sweeps"`
	// Synchronous reads successor values from the previous sweep instead of
	// updating in place.
	Synchronous bool `json:"synchronous"`
	// ValidateModel checks the environment before solving.
	ValidateModel        bool    `json:"validate_model"`
	ProbabilityTolerance float64 `json:"probability_tolerance"`
}

func DefaultConfig() Config {
	return Config{
		Discount:             0.9,
		Tolerance:            1e-5,
		Penalty:              -100,
		CostThreshold:        -1.5,
		MaxIterations:        1000,
		MaxSweeps:            0,
		Synchronous:          false,
		ValidateModel:        true,
		ProbabilityTolerance: 1e-9,
	}
}

func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount >= 1 {
		return fmt.Errorf("%w: discount %v must be in [0, 1)", ErrInvalidConfig, c.Discount)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance %v must be positive", ErrInvalidConfig, c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidConfig, c.MaxIterations)
	}
	if c.MaxSweeps < 0 {
		return fmt.Errorf("%w: max sweeps %d must not be negative", ErrInvalidConfig, c.MaxSweeps)
	}
	if c.ValidateModel && c.ProbabilityTolerance < 0 {
		return fmt.Errorf("%w: probability tolerance %v must not be negative", ErrInvalidConfig, c.ProbabilityTolerance)
	}
	return nil
}
