package core

import (
	"encoding/json"
	"fmt"

	"github.com/zeu5/safe-policy-iteration/util"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Policy is a [states x actions] table where each row is a distribution
// over actions.
type Policy struct {
	table *mat.Dense
}

// NewUniformPolicy assigns 1/actions to every entry.
func NewUniformPolicy(states, actions int) *Policy {
	data := make([]float64, states*actions)
	for i := range data {
		data[i] = 1 / float64(actions)
	}
	return &Policy{table: mat.NewDense(states, actions, data)}
}

// NewPolicyFromRows copies the given rows into a new policy.
func NewPolicyFromRows(rows [][]float64) (*Policy, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyModel
	}
	actions := len(rows[0])
	data := make([]float64, 0, len(rows)*actions)
	for s, row := range rows {
		if len(row) != actions {
			return nil, fmt.Errorf("row %d has %d actions, expected %d", s, len(row), actions)
		}
		data = append(data, row...)
	}
	return &Policy{table: mat.NewDense(len(rows), actions, data)}, nil
}

func (p *Policy) NumStates() int {
	r, _ := p.table.Dims()
	return r
}

func (p *Policy) NumActions() int {
	_, c := p.table.Dims()
	return c
}

func (p *Policy) Prob(state, action int) float64 {
	return p.table.At(state, action)
}

// Row returns a copy of the action distribution of a state.
func (p *Policy) Row(state int) []float64 {
	return util.CopyFloatSlice(p.table.RawRowView(state))
}

// Greedy returns the most probable action of a state, the lowest index on ties.
func (p *Policy) Greedy(state int) int {
	return floats.MaxIdx(p.table.RawRowView(state))
}

// SetDeterministic replaces the row of state with a one-hot vector on action.
func (p *Policy) SetDeterministic(state, action int) {
	row := p.table.RawRowView(state)
	for a := range row {
		row[a] = 0
	}
	row[action] = 1
}

// IsDeterministic reports whether the row of state is one-hot.
func (p *Policy) IsDeterministic(state int) bool {
	ones := 0
	for _, v := range p.table.RawRowView(state) {
		switch v {
		case 1:
			ones++
		case 0:
		default:
			return false
		}
	}
	return ones == 1
}

// Actions returns the greedy action of every state.
func (p *Policy) Actions() []int {
	out := make([]int, p.NumStates())
	for s := range out {
		out[s] = p.Greedy(s)
	}
	return out
}

func (p *Policy) Clone() *Policy {
	return &Policy{table: mat.DenseCopyOf(p.table)}
}

// Rows returns a copy of the table as nested slices.
func (p *Policy) Rows() [][]float64 {
	out := make([][]float64, p.NumStates())
	for s := range out {
		out[s] = p.Row(s)
	}
	return out
}

// Equal reports whether two policies have identical entries.
func (p *Policy) Equal(o *Policy) bool {
	return mat.Equal(p.table, o.table)
}

// Hash fingerprints the table contents.
func (p *Policy) Hash() string {
	return util.JsonHash(p.Rows())
}

func (p *Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Rows())
}

func (p *Policy) UnmarshalJSON(data []byte) error {
	rows := make([][]float64, 0)
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	np, err := NewPolicyFromRows(rows)
	if err != nil {
		return err
	}
	p.table = np.table
	return nil
}
