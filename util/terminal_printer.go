package util

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// TerminalPrinter redraws a set of status lines at a fixed frequency.
type TerminalPrinter struct {
	outputs   []*Output
	frequency time.Duration
	doneCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	writer  *uilive.Writer
	writers []io.Writer
}

// NewTerminalPrinter draws to out, a nil out means standard output.
func NewTerminalPrinter(out io.Writer, frequency time.Duration) *TerminalPrinter {
	writer := uilive.New()
	if out != nil {
		writer.Out = out
	}
	return &TerminalPrinter{
		outputs:   make([]*Output, 0),
		frequency: frequency,
		doneCh:    make(chan struct{}),

		writer:  writer,
		writers: make([]io.Writer, 0),
	}
}

// NewOutput registers a line. Call before Start.
func (t *TerminalPrinter) NewOutput() *Output {
	out := NewOutput()
	t.outputs = append(t.outputs, out)
	if len(t.outputs) == 1 {
		t.writers = append(t.writers, t.writer)
	} else {
		t.writers = append(t.writers, t.writer.Newline())
	}
	return out
}

func (t *TerminalPrinter) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-t.doneCh:
				t.print()
				return
			case <-ctx.Done():
				t.print()
				return
			case <-time.After(t.frequency):
				t.print()
			}
		}
	}()
}

// Stop draws the final state once and waits for the printer to exit.
func (t *TerminalPrinter) Stop() {
	t.stopOnce.Do(func() {
		close(t.doneCh)
	})
	t.wg.Wait()
}

func (t *TerminalPrinter) print() {
	for i, output := range t.outputs {
		fmt.Fprint(t.writers[i], output.Get()+"\n")
	}
	t.writer.Flush()
}

// Output holds the current text of one status line.
type Output struct {
	mu        *sync.Mutex
	printable string
}

func NewOutput() *Output {
	return &Output{
		mu:        new(sync.Mutex),
		printable: "",
	}
}

// Set the output string (blocking)
func (p *Output) Set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printable = s
}

// Try to set the output string (non-blocking)
func (p *Output) TrySet(s string) bool {
	if p.mu.TryLock() {
		defer p.mu.Unlock()
		p.printable = s
		return true
	}
	return false
}

// Get the output string (blocking)
func (p *Output) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}
