package analysis

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/zeu5/safe-policy-iteration/util"
)

// renderConvergence draws one line per experiment for the number of changed
// actions and the number of evaluation sweeps per iteration.
func renderConvergence(file string, names []string, datasets []*convergenceDataset) error {
	steps := 0
	for _, ds := range datasets {
		if len(ds.Changed) > steps {
			steps = len(ds.Changed)
		}
	}
	xAxis := make([]string, steps)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i)
	}

	changed := newLine("Changed actions per iteration", xAxis)
	sweeps := newLine("Evaluation sweeps per iteration", xAxis)
	for i, ds := range datasets {
		changedItems := make([]opts.LineData, 0, len(ds.Changed))
		for _, c := range ds.Changed {
			changedItems = append(changedItems, opts.LineData{Value: c})
		}
		changed.AddSeries(names[i], changedItems)

		sweepItems := make([]opts.LineData, 0, len(ds.Sweeps))
		for _, s := range ds.Sweeps {
			sweepItems = append(sweepItems, opts.LineData{Value: s})
		}
		sweeps.AddSeries(names[i], sweepItems)
	}

	page := components.NewPage()
	page.AddCharts(changed, sweeps)
	buf := new(bytes.Buffer)
	if err := page.Render(buf); err != nil {
		return err
	}
	return util.SaveBytes(file, buf.Bytes())
}

func newLine(title string, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	line.SetXAxis(xAxis)
	return line
}
