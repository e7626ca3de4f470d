package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ValidationError reports a malformed transition row.
type ValidationError struct {
	Channel Channel
	State   int
	Action  int
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.State < 0 {
		return fmt.Sprintf("invalid model: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s row (state %d, action %d): %s", e.Channel, e.State, e.Action, e.Reason)
}

// Validate checks that every row of both channels is a probability
// distribution over in-range successors, within tolerance eps.
func Validate(env Environment, eps float64) error {
	nS, nA := env.NumStates(), env.NumActions()
	if nS <= 0 || nA <= 0 {
		return ErrEmptyModel
	}
	size := 1
	for _, d := range env.Shape() {
		size *= d
	}
	if size != nS {
		return &ValidationError{State: -1, Action: -1, Reason: fmt.Sprintf("shape %v does not hold %d states", env.Shape(), nS)}
	}

	probs := make([]float64, 0)
	for _, ch := range Channels {
		for s := 0; s < nS; s++ {
			for a := 0; a < nA; a++ {
				rows := env.Transitions(ch, s, a)
				if len(rows) == 0 {
					return &ValidationError{Channel: ch, State: s, Action: a, Reason: "no transitions"}
				}
				probs = probs[:0]
				for _, tr := range rows {
					if tr.Prob < 0 || tr.Prob > 1 || math.IsNaN(tr.Prob) {
						return &ValidationError{Channel: ch, State: s, Action: a, Reason: fmt.Sprintf("probability %v outside [0, 1]", tr.Prob)}
					}
					if tr.Next < 0 || tr.Next >= nS {
						return &ValidationError{Channel: ch, State: s, Action: a, Reason: fmt.Sprintf("next state %d out of range", tr.Next)}
					}
					probs = append(probs, tr.Prob)
				}
				if sum := floats.Sum(probs); math.Abs(sum-1) > eps {
					return &ValidationError{Channel: ch, State: s, Action: a, Reason: fmt.Sprintf("probabilities sum to %v", sum)}
				}
			}
		}
	}
	return nil
}
