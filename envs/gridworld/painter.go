package gridworld

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/safe-policy-iteration/core"
)

var arrows = []string{"^", ">", "v", "<"}

// Painter draws grids of actions and values. Terminal cells are green and
// hazards red when colours are on.
type Painter struct {
	grid *Gridworld
	au   aurora.Aurora
}

func NewPainter(g *Gridworld, colors bool) *Painter {
	return &Painter{
		grid: g,
		au:   aurora.NewAurora(colors),
	}
}

func (p *Painter) cell(s int, text string) aurora.Value {
	switch {
	case p.grid.IsTerminal(s):
		return p.au.Green(text)
	case p.grid.IsHazard(s):
		return p.au.Red(text)
	default:
		return p.au.Blue(text)
	}
}

// Policy draws the greedy action of every cell as an arrow.
func (p *Painter) Policy(w io.Writer, policy *core.Policy) {
	cfg := p.grid.Config()
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			s := p.grid.State(Cell{r, c})
			text := arrows[policy.Greedy(s)]
			if p.grid.IsTerminal(s) {
				text = "T"
			}
			fmt.Fprint(w, p.cell(s, fmt.Sprintf(" %s ", text)))
		}
		fmt.Fprintln(w)
	}
}

// Actions draws the greedy action indices, the reshaped view of the policy.
func (p *Painter) Actions(w io.Writer, policy *core.Policy) {
	cfg := p.grid.Config()
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			s := p.grid.State(Cell{r, c})
			fmt.Fprint(w, p.cell(s, fmt.Sprintf("%2d", policy.Greedy(s))))
		}
		fmt.Fprintln(w)
	}
}

// Values draws a per-state vector on the grid.
func (p *Painter) Values(w io.Writer, values []float64) {
	cfg := p.grid.Config()
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			s := p.grid.State(Cell{r, c})
			fmt.Fprint(w, p.cell(s, formatValue(values[s])))
			fmt.Fprint(w, p.au.White("|"))
		}
		fmt.Fprintln(w)
	}
}

func formatValue(x float64) string {
	if x < 0 {
		return fmt.Sprintf(" -%06.2f", -x)
	}
	return fmt.Sprintf("  %06.2f", x)
}
