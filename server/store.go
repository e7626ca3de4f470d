package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/envs/gridworld"
	"github.com/zeu5/safe-policy-iteration/planner"
)

var (
	// ErrNotFound indicates the requested plan does not exist.
	ErrNotFound = errors.New("plan not found")
	// ErrConflict indicates a plan with the same ID is already stored.
	ErrConflict = errors.New("plan already exists")
)

// Plan is a solved grid-world planning request.
type Plan struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Grid      gridworld.Config `json:"grid"`
	Planner   planner.Config   `json:"planner"`
	Solution  *core.Solution   `json:"solution"`
	// Actions is the greedy policy laid out on the grid.
	Actions [][]int `json:"actions"`
}

// PlanStore persists plans for the HTTP API.
type PlanStore interface {
	SavePlan(ctx context.Context, plan Plan) error
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context) ([]string, error)
}

// MemoryStore is an in-memory PlanStore.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

var _ PlanStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans: make(map[string]Plan),
	}
}

func (m *MemoryStore) SavePlan(_ context.Context, plan Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.plans[plan.ID]; exists {
		return ErrConflict
	}
	m.plans[plan.ID] = plan
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, id string) (Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return plan, nil
}

// ListPlans returns plan IDs oldest first.
func (m *MemoryStore) ListPlans(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plans := make([]Plan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].ID < plans[j].ID
		}
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids, nil
}
