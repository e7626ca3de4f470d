package core

import "context"

// Solution is what a solver hands back to the driver.
type Solution struct {
	Policy     *Policy   `json:"policy"`
	V          []float64 `json:"v"`
	VCost      []float64 `json:"v_cost"`
	Iterations int       `json:"iterations"`
	Stable     bool      `json:"stable"`
}

type Solver interface {
	// Solve plans on env. A nil trace disables iteration recording.
	Solve(context.Context, Environment, *Trace) (*Solution, error)
}

type SolverConstructor interface {
	NewSolver() Solver
}
