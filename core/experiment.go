package core

import (
	"context"
	"time"
)

type ParallelExperiment struct {
	Name        string
	Environment EnvironmentConstructor
	Solver      SolverConstructor
}

// RunContext describes one finished solve for the analyzers.
type RunContext struct {
	Context    context.Context
	Experiment string
	Run        int
	Solution   *Solution
	Duration   time.Duration

	err error
}

func (r *RunContext) IsError() bool {
	return r.err != nil
}

func (r *RunContext) Err() error {
	return r.err
}

func (r *RunContext) SetError(err error) {
	r.err = err
}

type DataSet interface{}

type Analyzer interface {
	Analyze(*RunContext, *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type ParallelComparison struct {
	Experiments []*ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]ComparatorConstructor
}

type RunConfig struct {
	Runs int
	// Timeout bounds a single solve, zero means no bound.
	Timeout time.Duration
}

func NewParallelComparison() *ParallelComparison {
	return &ParallelComparison{
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]ComparatorConstructor),
		Experiments: make([]*ParallelExperiment, 0),
	}
}

func (c *ParallelComparison) AddExperiment(e *ParallelExperiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *ParallelComparison) AddAnalysis(name string, a AnalyzerConstructor, cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}

type Experiment struct {
	Name        string
	Environment Environment
	Solver      Solver
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]Analyzer
	Comparators map[string]Comparator
}

func NewComparison() *Comparison {
	return &Comparison{
		Analyzers:   make(map[string]Analyzer),
		Comparators: make(map[string]Comparator),
		Experiments: make([]*Experiment, 0),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a Analyzer, cmp Comparator) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
