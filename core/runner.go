package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

type experimentRunContext struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer

	writer io.Writer

	*RunConfig
}

type ExperimentResult struct {
	Solution   *Solution
	Iterations int
	Duration   time.Duration

	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

func (e *Experiment) run(ctx *experimentRunContext) *ExperimentResult {
	result := &ExperimentResult{
		Datasets: make(map[string]DataSet),
	}

	solveCtx := ctx.ctx
	if ctx.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx.ctx, ctx.Timeout)
		defer cancel()
	}
	rCtx := &RunContext{
		Context:    solveCtx,
		Experiment: e.Name,
		Run:        ctx.run,
	}

	fmt.Fprintf(ctx.writer, "Experiment: %s, Run %d, solving\n", e.Name, ctx.run)
	trace := NewTrace()
	start := time.Now()
	solution, err := e.Solver.Solve(solveCtx, e.Environment, trace)
	result.Duration = time.Since(start)
	result.Iterations = trace.Len()
	rCtx.Duration = result.Duration

	if err != nil {
		result.Error = err
		rCtx.SetError(err)
		fmt.Fprintf(ctx.writer, "Experiment: %s, Run %d, Error: %v\n", e.Name, ctx.run, err)
	} else {
		result.Solution = solution
		rCtx.Solution = solution
		fmt.Fprintf(
			ctx.writer,
			"Experiment: %s, Run %d, Iterations: %d, Stable: %t, Time: %s\n",
			e.Name, ctx.run, solution.Iterations, solution.Stable, result.Duration,
		)
	}

	for _, a := range ctx.analyzers {
		a.Analyze(rCtx, trace)
	}
	for name, a := range ctx.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	return result
}

// compare hands each comparator the datasets of all experiments, in
// experiment order. Failed experiments contribute a nil dataset.
func compare(names []string, results map[string]*ExperimentResult, comparators map[string]Comparator) {
	for analyzer, c := range comparators {
		datasets := make([]DataSet, len(names))
		for i, name := range names {
			result, ok := results[name]
			if !ok || result.IsError() {
				continue
			}
			datasets[i] = result.Datasets[analyzer]
		}
		c.Compare(names, datasets)
	}
}

// Run executes every experiment sequentially for the configured number of
// runs and returns the results of each run.
func (c *Comparison) Run(ctx context.Context, rConfig *RunConfig, writer io.Writer) []map[string]*ExperimentResult {
	if writer == nil {
		writer = io.Discard
	}
	out := make([]map[string]*ExperimentResult, 0, rConfig.Runs)
	for run := 0; run < rConfig.Runs; run++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		results := make(map[string]*ExperimentResult)
		names := make([]string, 0, len(c.Experiments))

		for _, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return out
			default:
			}
			eCtx := &experimentRunContext{
				run:       run,
				ctx:       ctx,
				analyzers: make(map[string]Analyzer),
				writer:    writer,
				RunConfig: rConfig,
			}

			for name, a := range c.Analyzers {
				a.Reset()
				eCtx.analyzers[name] = a
			}

			results[e.Name] = e.run(eCtx)
			names = append(names, e.Name)
		}

		compare(names, results, c.Comparators)
		out = append(out, results)
	}
	return out
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	experiment *ParallelExperiment
	comp       *ParallelComparison
	runNumber  int
	writer     io.Writer
	rConfig    *RunConfig
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	experimentName string
	run            int
	result         *ExperimentResult
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case work, more := <-workCh:
			if !more {
				return
			}
			resultsCh <- w.runWork(ctx, work)
		}
	}
}

// Run an experiment by constructing the experiment context, *Experiment
func (w *parallelWorker) runWork(ctx context.Context, work *parallelWork) *parallelResult {
	eCtx := &experimentRunContext{
		run:       work.runNumber,
		ctx:       ctx,
		analyzers: make(map[string]Analyzer),
		writer:    work.writer,
		RunConfig: work.rConfig,
	}

	for name, aC := range work.comp.Analyzers {
		eCtx.analyzers[name] = aC.NewAnalyzer(work.experiment.Name, work.runNumber)
	}

	env, err := work.experiment.Environment.NewEnvironment(work.runNumber)
	if err != nil {
		fmt.Fprintf(work.writer, "Experiment: %s, Run %d, Error: %v\n", work.experiment.Name, work.runNumber, err)
		return &parallelResult{
			experimentName: work.experiment.Name,
			run:            work.runNumber,
			result:         &ExperimentResult{Error: err, Datasets: make(map[string]DataSet)},
		}
	}

	exp := &Experiment{
		Name:        work.experiment.Name,
		Environment: env,
		Solver:      work.experiment.Solver.NewSolver(),
	}

	return &parallelResult{
		experimentName: work.experiment.Name,
		run:            work.runNumber,
		result:         exp.run(eCtx),
	}
}

// Run fans the experiments of every run out to a pool of workers. Output of
// each experiment goes to its own line of a live terminal writer.
func (c *ParallelComparison) Run(ctx context.Context, rConfig *RunConfig, parallelism int) []map[string]*ExperimentResult {
	if parallelism <= 0 {
		parallelism = 1
	}
	out := make([]map[string]*ExperimentResult, 0, rConfig.Runs)
	for run := 0; run < rConfig.Runs; run++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}
		writer := uilive.New()
		writer.Start()
		fmt.Fprintf(writer, "Run %d\n", run)

		workCh := make(chan *parallelWork, parallelism)
		resultsCh := make(chan *parallelResult, parallelism)

		wg := new(sync.WaitGroup)
		for i := 0; i < parallelism; i++ {
			worker := &parallelWorker{id: i}
			wg.Add(1)
			go func() {
				defer wg.Done()
				worker.run(ctx, workCh, resultsCh)
			}()
		}

		go func() {
			defer close(workCh)
			for _, e := range c.Experiments {
				select {
				case <-ctx.Done():
					return
				case workCh <- &parallelWork{
					experiment: e,
					comp:       c,
					runNumber:  run,
					rConfig:    rConfig,
					writer:     writer.Newline(),
				}:
				}
			}
		}()

		go func() {
			wg.Wait()
			close(resultsCh)
		}()

		results := make(map[string]*ExperimentResult)
		for result := range resultsCh {
			results[result.experimentName] = result.result
		}
		writer.Stop()

		select {
		case <-ctx.Done():
			return out
		default:
		}

		names := make([]string, 0, len(c.Experiments))
		for _, e := range c.Experiments {
			names = append(names, e.Name)
		}
		comparators := make(map[string]Comparator, len(c.Comparators))
		for name, cC := range c.Comparators {
			comparators[name] = cC.NewComparator(run)
		}
		compare(names, results, comparators)
		out = append(out, results)
	}
	return out
}
