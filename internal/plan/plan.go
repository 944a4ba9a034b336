package plan

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// transitionLogSize bounds the per-plan transition history ring.
const transitionLogSize = 20

// Plan is a point-in-time snapshot of one plan. The task tree is deep-copied,
// so two snapshots taken around a mutation never share state.
type Plan struct {
	ID        int64        `json:"id"`
	Goal      string       `json:"goal"`
	Notes     string       `json:"notes,omitempty"`
	Root      []*Task      `json:"root"`
	Current   Path         `json:"current"`
	History   []Transition `json:"history,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// PlanSummary is the listing form of a plan.
type PlanSummary struct {
	ID        int64     `json:"id"`
	Goal      string    `json:"goal"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition is one entry in a plan's recent-activity log.
type Transition struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	Details string    `json:"details,omitempty"`
}

// Current describes a plan's current focus. Task is nil when the focus is the
// plan root.
type Current struct {
	Path Path  `json:"path"`
	Task *Task `json:"task,omitempty"`
}

// planState is the live, mutable state of one plan. The store addresses it
// through its own map lock; all field access goes through mu.
type planState struct {
	mu sync.RWMutex
	// pubMu orders change notifications; it is taken while mu is still held
	// and released only after the event is published.
	pubMu sync.Mutex

	deleted bool

	id        int64
	goal      string
	notes     string
	root      []*Task
	current   Path
	trail     []Transition
	leases    leaseRegistry
	seq       uint64
	createdAt time.Time
}

func newPlanState(id int64, goal, notes string) *planState {
	return &planState{
		id:        id,
		goal:      goal,
		notes:     notes,
		leases:    newLeaseRegistry(),
		createdAt: time.Now(),
	}
}

// resolve walks the task tree to the task addressed by path. The root path
// resolves to (nil, nil).
func (st *planState) resolve(path Path) (*Task, error) {
	if path.IsRoot() {
		return nil, nil
	}

	siblings := st.root
	var task *Task
	for _, idx := range path {
		if idx >= len(siblings) {
			return nil, errors.NewTaskNotFoundError(path.String())
		}
		task = siblings[idx]
		siblings = task.Children
	}
	return task, nil
}

// resolveTask is resolve restricted to non-root paths.
func (st *planState) resolveTask(path Path) (*Task, error) {
	if path.IsRoot() {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "operation requires a task path, not the plan root")
	}
	return st.resolve(path)
}

// ancestors returns the tasks on the path strictly above the addressed task,
// outermost first. It assumes path already resolved.
func (st *planState) ancestors(path Path) []*Task {
	out := make([]*Task, 0, len(path))
	siblings := st.root
	for _, idx := range path[:len(path)-1] {
		t := siblings[idx]
		out = append(out, t)
		siblings = t.Children
	}
	return out
}

// logTransition appends to the bounded recent-activity ring.
func (st *planState) logTransition(action, details string) {
	st.trail = append(st.trail, Transition{Time: time.Now(), Action: action, Details: details})
	if len(st.trail) > transitionLogSize {
		st.trail = st.trail[len(st.trail)-transitionLogSize:]
	}
}

// snapshot deep-copies the plan under the caller's lock.
func (st *planState) snapshot() Plan {
	root := make([]*Task, len(st.root))
	for i, t := range st.root {
		root[i] = t.Clone()
	}
	history := make([]Transition, len(st.trail))
	copy(history, st.trail)
	return Plan{
		ID:        st.id,
		Goal:      st.goal,
		Notes:     st.notes,
		Root:      root,
		Current:   st.current.Clone(),
		History:   history,
		CreatedAt: st.createdAt,
	}
}

func (st *planState) taskCount() int {
	n := 0
	for _, t := range st.root {
		n += t.countTasks()
	}
	return n
}
