package common

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/zeu5/safe-policy-iteration/envs/gridworld"
	"github.com/zeu5/safe-policy-iteration/envs/random"
	"github.com/zeu5/safe-policy-iteration/planner"
	"github.com/zeu5/safe-policy-iteration/util"
)

type Flags struct {
	SavePath string
	LogLevel string
	PlannerFlags
	GridFlags
	RandomFlags
	RunFlags
	Parallelism int
	ServeFlags
}

type PlannerFlags struct {
	Discount       float64
	Tolerance      float64
	Penalty        float64
	CostThreshold  float64
	MaxIterations  int
	MaxSweeps      int
	Synchronous    bool
	SkipValidation bool
}

type GridFlags struct {
	Rows       int
	Cols       int
	StepReward float64
	HazardCost float64
	Slip       float64
	// Hazards as "row:col" pairs
	Hazards []string
}

type RandomFlags struct {
	States    int
	Actions   int
	Branching int
	Seed      uint64
}

type RunFlags struct {
	NumRuns int
	Timeout time.Duration
	// Thresholds compared by the compare command
	Thresholds []float64
}

type ServeFlags struct {
	Addr        string
	DatabaseURL string
}

func DefaultFlags() *Flags {
	pCfg := planner.DefaultConfig()
	gCfg := gridworld.DefaultConfig()
	rCfg := random.DefaultConfig()
	return &Flags{
		SavePath: "results",
		LogLevel: "info",
		PlannerFlags: PlannerFlags{
			Discount:       pCfg.Discount,
			Tolerance:      pCfg.Tolerance,
			Penalty:        pCfg.Penalty,
			CostThreshold:  pCfg.CostThreshold,
			MaxIterations:  pCfg.MaxIterations,
			MaxSweeps:      pCfg.MaxSweeps,
			Synchronous:    pCfg.Synchronous,
			SkipValidation: !pCfg.ValidateModel,
		},
		GridFlags: GridFlags{
			Rows:       gCfg.Rows,
			Cols:       gCfg.Cols,
			StepReward: gCfg.StepReward,
			HazardCost: gCfg.HazardCost,
			Slip:       gCfg.Slip,
			Hazards:    FormatCells(gCfg.Hazards),
		},
		RandomFlags: RandomFlags{
			States:    rCfg.States,
			Actions:   rCfg.Actions,
			Branching: rCfg.Branching,
			Seed:      rCfg.Seed,
		},
		RunFlags: RunFlags{
			NumRuns:    1,
			Timeout:    time.Minute,
			Thresholds: []float64{-1e9, -3, -1.5, -0.5},
		},
		Parallelism: 4,
		ServeFlags: ServeFlags{
			Addr: ":8080",
		},
	}
}

func (f *Flags) PlannerConfig() planner.Config {
	cfg := planner.DefaultConfig()
	cfg.Discount = f.Discount
	cfg.Tolerance = f.Tolerance
	cfg.Penalty = f.Penalty
	cfg.CostThreshold = f.CostThreshold
	cfg.MaxIterations = f.MaxIterations
	cfg.MaxSweeps = f.MaxSweeps
	cfg.Synchronous = f.Synchronous
	cfg.ValidateModel = !f.SkipValidation
	return cfg
}

func (f *Flags) GridConfig() (gridworld.Config, error) {
	hazards, err := ParseCells(f.Hazards)
	if err != nil {
		return gridworld.Config{}, err
	}
	return gridworld.Config{
		Rows:       f.Rows,
		Cols:       f.Cols,
		StepReward: f.StepReward,
		HazardCost: f.HazardCost,
		Hazards:    hazards,
		Slip:       f.Slip,
	}, nil
}

func (f *Flags) RandomConfig() random.Config {
	cfg := random.DefaultConfig()
	cfg.States = f.States
	cfg.Actions = f.Actions
	cfg.Branching = f.Branching
	cfg.Seed = f.Seed
	return cfg
}

// Record saves the flags to config.json under the save path.
func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}

// ParseCells reads "row:col" pairs.
func ParseCells(values []string) ([]gridworld.Cell, error) {
	cells := make([]gridworld.Cell, 0, len(values))
	for _, v := range values {
		parts := strings.Split(strings.TrimSpace(v), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("cell %q is not row:col", v)
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", v, err)
		}
		col, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", v, err)
		}
		cells = append(cells, gridworld.Cell{Row: row, Col: col})
	}
	return cells, nil
}

func FormatCells(cells []gridworld.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprintf("%d:%d", c.Row, c.Col)
	}
	return out
}
