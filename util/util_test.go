package util

import (
	"bytes"
	"context"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshape(t *testing.T) {
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5}}, Reshape([]float64{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, ReshapeInts([]int{1, 2, 3}, 3))
	assert.Nil(t, Reshape([]float64{1}, 0))
}

func TestJsonFiles(t *testing.T) {
	file := path.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, SaveJson(file, map[string]int{"a": 1}))

	out := make(map[string]int)
	require.NoError(t, ReadJson(file, &out))
	assert.Equal(t, 1, out["a"])
	assert.Equal(t, JsonHash(map[string]int{"a": 1}), JsonHash(out))
}

func TestTerminalPrinterPrintsFinalState(t *testing.T) {
	buf := new(bytes.Buffer)
	printer := NewTerminalPrinter(buf, time.Hour)
	first := printer.NewOutput()
	second := printer.NewOutput()
	printer.Start(context.Background())

	first.Set("iteration 3")
	assert.True(t, second.TrySet("done"))
	printer.Stop()
	printer.Stop()

	assert.Contains(t, buf.String(), "iteration 3")
	assert.Contains(t, buf.String(), "done")
}

func TestTerminalPrinterDrawsOnCancel(t *testing.T) {
	buf := new(bytes.Buffer)
	printer := NewTerminalPrinter(buf, time.Hour)
	out := printer.NewOutput()
	ctx, cancel := context.WithCancel(context.Background())
	printer.Start(ctx)

	out.Set("iteration 7")
	cancel()
	// the printer exits on cancel, Stop finds nothing left to draw
	time.Sleep(50 * time.Millisecond)
	printer.Stop()

	assert.Contains(t, buf.String(), "iteration 7")
}
