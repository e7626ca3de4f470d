package gridworld

import (
	"fmt"

	"github.com/zeu5/safe-policy-iteration/core"
)

const (
	Up = iota
	Right
	Down
	Left

	NumActions = 4
)

var ActionNames = []string{"up", "right", "down", "left"}

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Config struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	// StepReward is paid on every move out of a non-terminal cell.
	StepReward float64 `json:"step_reward"`
	// HazardCost is charged on the cost channel when a move ends in a hazard.
	HazardCost float64 `json:"hazard_cost"`
	Hazards    []Cell  `json:"hazards"`
	// Terminals default to the top-left and bottom-right corners.
	Terminals []Cell `json:"terminals"`
	// Slip is the probability of moving to one of the two perpendicular
	// directions instead, split evenly.
	Slip float64 `json:"slip"`
}

// DefaultConfig is a 5x5 grid with a wall of hazards down the middle column,
// open at the top and bottom rows.
func DefaultConfig() Config {
	return Config{
		Rows:       5,
		Cols:       5,
		StepReward: -1,
		HazardCost: -1,
		Hazards:    []Cell{{1, 2}, {2, 2}, {3, 2}},
	}
}

// Gridworld is a grid of cells with a reward channel paying StepReward per
// move and a cost channel charging HazardCost on entering a hazard. Terminal
// cells loop on themselves with zero reward and cost.
type Gridworld struct {
	*core.TabularEnvironment
	cfg       Config
	hazards   map[Cell]bool
	terminals map[Cell]bool
}

func New(cfg Config) (*Gridworld, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return nil, fmt.Errorf("grid %dx%d must have positive dimensions", cfg.Rows, cfg.Cols)
	}
	if cfg.Slip < 0 || cfg.Slip > 1 {
		return nil, fmt.Errorf("slip %v must be in [0, 1]", cfg.Slip)
	}
	if len(cfg.Terminals) == 0 {
		cfg.Terminals = []Cell{{0, 0}, {cfg.Rows - 1, cfg.Cols - 1}}
	}

	g := &Gridworld{
		cfg:       cfg,
		hazards:   make(map[Cell]bool),
		terminals: make(map[Cell]bool),
	}
	for _, c := range cfg.Hazards {
		if !g.inside(c) {
			return nil, fmt.Errorf("hazard %v outside the grid", c)
		}
		g.hazards[c] = true
	}
	for _, c := range cfg.Terminals {
		if !g.inside(c) {
			return nil, fmt.Errorf("terminal %v outside the grid", c)
		}
		g.terminals[c] = true
	}

	table, err := core.NewTabularEnvironment(cfg.Rows*cfg.Cols, NumActions, cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	g.TabularEnvironment = table
	if err := g.build(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gridworld) build() error {
	for s := 0; s < g.NumStates(); s++ {
		cell := g.Cell(s)
		for a := 0; a < NumActions; a++ {
			if g.terminals[cell] {
				if err := g.AddBoth(s, a, 1, s, 0, 0, true); err != nil {
					return err
				}
				continue
			}
			for _, move := range g.outcomes(a) {
				next := g.State(g.shift(cell, move.action))
				cost := 0.0
				if g.hazards[g.Cell(next)] {
					cost = g.cfg.HazardCost
				}
				if err := g.AddBoth(s, a, move.prob, next, g.cfg.StepReward, cost, g.IsTerminal(next)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type outcome struct {
	action int
	prob   float64
}

func (g *Gridworld) outcomes(action int) []outcome {
	if g.cfg.Slip == 0 {
		return []outcome{{action, 1}}
	}
	side := g.cfg.Slip / 2
	return []outcome{
		{action, 1 - g.cfg.Slip},
		{(action + 1) % NumActions, side},
		{(action + 3) % NumActions, side},
	}
}

// shift moves one cell in the direction of action, staying on the grid.
func (g *Gridworld) shift(c Cell, action int) Cell {
	switch action {
	case Up:
		c.Row--
	case Right:
		c.Col++
	case Down:
		c.Row++
	case Left:
		c.Col--
	}
	if c.Row < 0 {
		c.Row = 0
	}
	if c.Row > g.cfg.Rows-1 {
		c.Row = g.cfg.Rows - 1
	}
	if c.Col < 0 {
		c.Col = 0
	}
	if c.Col > g.cfg.Cols-1 {
		c.Col = g.cfg.Cols - 1
	}
	return c
}

func (g *Gridworld) inside(c Cell) bool {
	return c.Row >= 0 && c.Row < g.cfg.Rows && c.Col >= 0 && c.Col < g.cfg.Cols
}

func (g *Gridworld) Config() Config {
	return g.cfg
}

func (g *Gridworld) State(c Cell) int {
	return c.Row*g.cfg.Cols + c.Col
}

func (g *Gridworld) Cell(s int) Cell {
	return Cell{Row: s / g.cfg.Cols, Col: s % g.cfg.Cols}
}

func (g *Gridworld) IsHazard(s int) bool {
	return g.hazards[g.Cell(s)]
}

func (g *Gridworld) IsTerminal(s int) bool {
	return g.terminals[g.Cell(s)]
}

type Constructor struct {
	Config Config
}

var _ core.EnvironmentConstructor = &Constructor{}

func NewConstructor(cfg Config) *Constructor {
	return &Constructor{Config: cfg}
}

func (c *Constructor) NewEnvironment(_ int) (core.Environment, error) {
	return New(c.Config)
}
