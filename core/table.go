package core

import (
	"errors"
	"fmt"
)

var ErrEmptyModel = errors.New("model needs at least one state and one action")

// TabularEnvironment stores both transition channels in memory.
type TabularEnvironment struct {
	states  int
	actions int
	shape   []int

	// table[channel][state][action]
	table [2][][][]Transition
}

var _ Environment = &TabularEnvironment{}

// NewTabularEnvironment allocates an environment with no transitions. When
// shape is omitted the states are laid out as a single row.
func NewTabularEnvironment(states, actions int, shape ...int) (*TabularEnvironment, error) {
	if states <= 0 || actions <= 0 {
		return nil, ErrEmptyModel
	}
	if len(shape) == 0 {
		shape = []int{states}
	}
	t := &TabularEnvironment{
		states:  states,
		actions: actions,
		shape:   append([]int(nil), shape...),
	}
	for _, ch := range Channels {
		t.table[ch] = make([][][]Transition, states)
		for s := 0; s < states; s++ {
			t.table[ch][s] = make([][]Transition, actions)
		}
	}
	return t, nil
}

func (t *TabularEnvironment) NumStates() int {
	return t.states
}

func (t *TabularEnvironment) NumActions() int {
	return t.actions
}

func (t *TabularEnvironment) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *TabularEnvironment) Transitions(ch Channel, state, action int) []Transition {
	return t.table[ch][state][action]
}

// Add appends a transition record to the (state, action) row of a channel.
func (t *TabularEnvironment) Add(ch Channel, state, action int, tr Transition) error {
	if ch != RewardChannel && ch != CostChannel {
		return fmt.Errorf("unknown channel %d", ch)
	}
	if state < 0 || state >= t.states {
		return fmt.Errorf("state %d out of range [0, %d)", state, t.states)
	}
	if action < 0 || action >= t.actions {
		return fmt.Errorf("action %d out of range [0, %d)", action, t.actions)
	}
	t.table[ch][state][action] = append(t.table[ch][state][action], tr)
	return nil
}

// AddBoth appends the same successor to both channels with separate signals.
func (t *TabularEnvironment) AddBoth(state, action int, prob float64, next int, reward, cost float64, terminal bool) error {
	if err := t.Add(RewardChannel, state, action, Transition{Prob: prob, Next: next, Signal: reward, Terminal: terminal}); err != nil {
		return err
	}
	return t.Add(CostChannel, state, action, Transition{Prob: prob, Next: next, Signal: cost, Terminal: terminal})
}
