package core

// Channel selects one of the two signals carried by a transition.
type Channel int

const (
	RewardChannel Channel = 0
	CostChannel   Channel = 1
)

// Channels lists the channels in index order.
var Channels = []Channel{RewardChannel, CostChannel}

func (c Channel) String() string {
	switch c {
	case RewardChannel:
		return "reward"
	case CostChannel:
		return "cost"
	default:
		return "unknown"
	}
}

// Transition is one outcome of taking an action in a state. Signal is a
// reward on the reward channel and a cost on the cost channel.
type Transition struct {
	Prob     float64 `json:"prob"`
	Next     int     `json:"next"`
	Signal   float64 `json:"signal"`
	Terminal bool    `json:"terminal"`
}

// Environment is a fully known finite MDP with a reward and a cost channel.
// Implementations must not change their tables while a planner reads them.
type Environment interface {
	NumStates() int
	NumActions() int
	// Shape describes how to lay out a per-state vector for display.
	Shape() []int
	Transitions(ch Channel, state, action int) []Transition
}

type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment for the given run number.
	NewEnvironment(int) (Environment, error)
}
