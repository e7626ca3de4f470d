package core

import "sync"

// Iteration records one evaluate-then-improve round of a solver.
type Iteration struct {
	Index     int
	Sweeps    int
	Delta     float64
	Converged bool
	// Changed counts states whose greedy action moved in this round.
	Changed int
	// Fallbacks counts states where no action was feasible.
	Fallbacks int
	Actions   []int
	V         []float64
	VCost     []float64
}

// Trace collects iterations. It is safe to read while a solver appends.
type Trace struct {
	mtx        *sync.Mutex
	iterations []*Iteration
}

func NewTrace() *Trace {
	return &Trace{
		iterations: make([]*Iteration, 0),
		mtx:        &sync.Mutex{},
	}
}

func (t *Trace) AddIteration(i *Iteration) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.iterations = append(t.iterations, i)
}

func (t *Trace) Iteration(i int) *Iteration {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.iterations[i]
}

func (t *Trace) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.iterations)
}

// Last returns the latest iteration or nil when the trace is empty.
func (t *Trace) Last() *Iteration {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if len(t.iterations) == 0 {
		return nil
	}
	return t.iterations[len(t.iterations)-1]
}
