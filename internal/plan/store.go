// Package plan implements the hierarchical plan engine: multi-level task
// trees addressed by index paths, a current-position cursor per plan,
// lease-gated completion, and change notification.
package plan

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/strata/internal/errors"
	"github.com/felixgeelhaar/strata/internal/log"
)

// Store holds every live plan. All operations are safe for concurrent use;
// plans are independently locked so work on one plan never stalls another.
type Store struct {
	mu     sync.RWMutex
	plans  map[int64]*planState
	nextID int64
	closed bool

	notifier *Notifier
	logger   *log.Logger
}

// NewStore creates an empty store.
func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		plans:    make(map[int64]*planState),
		notifier: NewNotifier(),
		logger:   logger.With("component", "store"),
	}
}

// Notifier exposes the store's change notifier for subscription.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Close shuts the store down. Every subsequent operation fails with a lock
// failure and all subscribers are released.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ids := make([]int64, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.notifier.DropPlan(id)
	}
}

// state looks up the live state for a plan.
func (s *Store) state(id int64) (*planState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.NewLockFailureError(id)
	}
	st, ok := s.plans[id]
	if !ok {
		return nil, errors.NewPlanNotFoundError(id)
	}
	return st, nil
}

// read runs fn under the plan's read lock.
func (s *Store) read(id int64, fn func(st *planState) error) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.deleted {
		return errors.NewPlanNotFoundError(id)
	}
	return fn(st)
}

// mutate runs fn under the plan's write lock. On success it records a
// transition, assigns the next event sequence number, and publishes the
// change after the tree lock is released. pubMu is acquired before mu is
// dropped, so events for one plan reach the notifier in sequence order.
func (s *Store) mutate(id int64, action string, fn func(st *planState) (string, error)) error {
	st, err := s.state(id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	if st.deleted {
		st.mu.Unlock()
		return errors.NewPlanNotFoundError(id)
	}
	details, err := fn(st)
	if err != nil {
		st.mu.Unlock()
		return err
	}
	st.logTransition(action, details)
	st.seq++
	ev := Event{PlanID: st.id, Seq: st.seq, Time: time.Now()}
	st.pubMu.Lock()
	st.mu.Unlock()

	s.notifier.Publish(ev)
	st.pubMu.Unlock()

	s.logger.Debug("plan mutated", "plan_id", id, "action", action, "seq", ev.Seq)
	return nil
}

// CreatePlan registers a new plan and returns its identifier. Identifiers are
// assigned monotonically and never reused within a store's lifetime.
func (s *Store) CreatePlan(goal, notes string) (int64, error) {
	if goal == "" {
		return 0, errors.New(errors.ErrCodeInvalidOperation, "plan goal must not be empty").
			WithSuggestion("Describe what the plan should achieve")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, errors.NewLockFailureError(0)
	}
	s.nextID++
	id := s.nextID
	s.plans[id] = newPlanState(id, goal, notes)
	s.mu.Unlock()

	s.logger.Info("plan created", "plan_id", id, "goal", goal)
	return id, nil
}

// GetPlan returns a deep snapshot of the plan.
func (s *Store) GetPlan(id int64) (Plan, error) {
	var p Plan
	err := s.read(id, func(st *planState) error {
		p = st.snapshot()
		return nil
	})
	return p, err
}

// ListPlans returns a summary of every live plan, ordered by identifier.
func (s *Store) ListPlans() ([]PlanSummary, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, errors.NewLockFailureError(0)
	}
	states := make([]*planState, 0, len(s.plans))
	for _, st := range s.plans {
		states = append(states, st)
	}
	s.mu.RUnlock()

	out := make([]PlanSummary, 0, len(states))
	for _, st := range states {
		st.mu.RLock()
		if !st.deleted {
			out = append(out, PlanSummary{
				ID:        st.id,
				Goal:      st.goal,
				TaskCount: st.taskCount(),
				CreatedAt: st.createdAt,
			})
		}
		st.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeletePlan removes the plan and releases its subscribers. The identifier is
// not reused.
func (s *Store) DeletePlan(id int64) error {
	err := s.mutate(id, "plan_deleted", func(st *planState) (string, error) {
		st.deleted = true
		return st.goal, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.plans, id)
	s.mu.Unlock()
	s.notifier.DropPlan(id)

	s.logger.Info("plan deleted", "plan_id", id)
	return nil
}

// AddTask appends a new task under parent and returns its path. Adding work
// beneath a completed task reopens that task and every completed ancestor,
// since a subtree with open work cannot itself be done.
func (s *Store) AddTask(id int64, parent Path, description string, level Level, notes string) (Path, error) {
	if description == "" {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "task description must not be empty")
	}
	if !level.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidOperation, fmt.Sprintf("invalid level %d", int(level))).
			WithSuggestion("Use planning, isolation, ordering, or implementation")
	}

	var path Path
	err := s.mutate(id, "task_added", func(st *planState) (string, error) {
		task := NewTask(description, level)
		task.Notes = notes

		if parent.IsRoot() {
			st.root = append(st.root, task)
			path = Path{len(st.root) - 1}
			return description, nil
		}

		parentTask, err := st.resolve(parent)
		if err != nil {
			return "", err
		}
		for _, anc := range append(st.ancestors(parent), parentTask) {
			if anc.Completed {
				anc.uncomplete()
			}
		}
		reopened := parent.Clone()
		for !reopened.IsRoot() {
			st.leases.invalidate(reopened)
			reopened = reopened.Parent()
		}

		parentTask.Children = append(parentTask.Children, task)
		path = parent.Child(len(parentTask.Children) - 1)
		return description, nil
	})
	if err != nil {
		return nil, err
	}
	return path, nil
}

// RemoveTask removes the task at path together with its subtree and returns
// the removed task. Later siblings shift down, so paths derived before the
// removal may now address different tasks. If the current position pointed
// into the removed subtree it moves to the removed task's parent.
func (s *Store) RemoveTask(id int64, path Path) (*Task, error) {
	if path.IsRoot() {
		return nil, errors.New(errors.ErrCodeInvalidOperation, "cannot remove the plan root").
			WithSuggestion("Delete the plan instead with 'strata plan delete'")
	}

	var removed *Task
	err := s.mutate(id, "task_removed", func(st *planState) (string, error) {
		parentPath := path.Parent()
		idx := path[len(path)-1]

		var siblings *[]*Task
		if parentPath.IsRoot() {
			siblings = &st.root
		} else {
			parentTask, err := st.resolve(parentPath)
			if err != nil {
				return "", errors.NewTaskNotFoundError(path.String())
			}
			siblings = &parentTask.Children
		}
		if idx >= len(*siblings) {
			return "", errors.NewTaskNotFoundError(path.String())
		}

		removed = (*siblings)[idx]
		*siblings = append((*siblings)[:idx], (*siblings)[idx+1:]...)

		st.leases.invalidateSubtree(path)
		if st.current.HasPrefix(path) {
			st.current = parentPath
		}
		return removed.Description, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ChangeLevel reassigns the task's abstraction level. Levels are advisory, so
// no relationship with the parent's or children's levels is enforced. Any
// outstanding lease for the task is invalidated.
func (s *Store) ChangeLevel(id int64, path Path, level Level) error {
	if !level.Valid() {
		return errors.New(errors.ErrCodeInvalidOperation, fmt.Sprintf("invalid level %d", int(level)))
	}
	return s.mutate(id, "level_changed", func(st *planState) (string, error) {
		task, err := st.resolveTask(path)
		if err != nil {
			return "", err
		}
		task.Level = level
		st.leases.invalidate(path)
		return fmt.Sprintf("%s -> %s", path.String(), level), nil
	})
}

// GetNotes returns the task's notes.
func (s *Store) GetNotes(id int64, path Path) (string, error) {
	var notes string
	err := s.read(id, func(st *planState) error {
		task, err := st.resolveTask(path)
		if err != nil {
			return err
		}
		notes = task.Notes
		return nil
	})
	return notes, err
}

// SetNotes replaces the task's notes and invalidates its lease.
func (s *Store) SetNotes(id int64, path Path, notes string) error {
	return s.mutate(id, "notes_set", func(st *planState) (string, error) {
		task, err := st.resolveTask(path)
		if err != nil {
			return "", err
		}
		task.Notes = notes
		st.leases.invalidate(path)
		return path.String(), nil
	})
}

// DeleteNotes clears the task's notes and invalidates its lease.
func (s *Store) DeleteNotes(id int64, path Path) error {
	return s.mutate(id, "notes_deleted", func(st *planState) (string, error) {
		task, err := st.resolveTask(path)
		if err != nil {
			return "", err
		}
		task.Notes = ""
		st.leases.invalidate(path)
		return path.String(), nil
	})
}

// MoveTo repositions the plan's current focus. The root path is a valid
// destination.
func (s *Store) MoveTo(id int64, path Path) error {
	return s.mutate(id, "moved", func(st *planState) (string, error) {
		if _, err := st.resolve(path); err != nil {
			return "", err
		}
		st.current = path.Clone()
		if path.IsRoot() {
			return "root", nil
		}
		return path.String(), nil
	})
}

// GetCurrent returns the plan's current focus. Task is nil at the root.
func (s *Store) GetCurrent(id int64) (Current, error) {
	var cur Current
	err := s.read(id, func(st *planState) error {
		task, err := st.resolve(st.current)
		if err != nil {
			return err
		}
		cur = Current{Path: st.current.Clone(), Task: task.Clone()}
		return nil
	})
	return cur, err
}

// GenerateLease issues a fresh completion lease for the task, superseding any
// outstanding one. A completed task cannot be leased again. Issuing a lease
// changes no plan content, so no change event is published.
func (s *Store) GenerateLease(id int64, path Path) (Lease, error) {
	st, err := s.state(id)
	if err != nil {
		return Lease{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.deleted {
		return Lease{}, errors.NewPlanNotFoundError(id)
	}
	task, err := st.resolveTask(path)
	if err != nil {
		return Lease{}, err
	}
	if task.Completed {
		return Lease{}, errors.New(errors.ErrCodeTaskNotFound,
			fmt.Sprintf("task [%s] is completed; no further lease can be issued", path.String())).
			WithSuggestion("Uncomplete the task first if it needs to be redone")
	}
	return st.leases.issue(path), nil
}

// CompleteTask marks the task and its whole subtree completed. Unforced
// completion requires the task's current lease and a non-empty summary;
// force bypasses both. Completing an already completed task always fails.
func (s *Store) CompleteTask(id int64, path Path, leaseToken, summary string, force bool) error {
	return s.mutate(id, "task_completed", func(st *planState) (string, error) {
		task, err := st.resolveTask(path)
		if err != nil {
			return "", err
		}
		if task.Completed {
			return "", errors.NewAlreadyCompletedError(path.String())
		}

		if !force {
			if leaseToken == "" {
				return "", errors.NewLeaseRequiredError(path.String())
			}
			if summary == "" {
				return "", errors.New(errors.ErrCodeInvalidOperation, "completion requires a summary").
					WithSuggestion("Describe what was done and how it was verified")
			}
			if err := st.leases.consume(path, leaseToken); err != nil {
				return "", err
			}
		} else {
			st.leases.invalidate(path)
		}

		task.complete(summary)
		st.leases.invalidateSubtree(path)
		return task.Description, nil
	})
}

// UncompleteTask reopens a completed task, discarding its summary and
// invalidating any lease. Descendants keep their completion state.
func (s *Store) UncompleteTask(id int64, path Path) error {
	return s.mutate(id, "task_uncompleted", func(st *planState) (string, error) {
		task, err := st.resolveTask(path)
		if err != nil {
			return "", err
		}
		if !task.Completed {
			return "", errors.NewNotCompletedError(path.String())
		}
		task.uncomplete()
		st.leases.invalidate(path)
		return task.Description, nil
	})
}

// DistilledContext projects the plan into the compact working view centered
// on its current position.
func (s *Store) DistilledContext(id int64) (DistilledContext, error) {
	var dc DistilledContext
	err := s.read(id, func(st *planState) error {
		dc = Distill(st.snapshot())
		return nil
	})
	return dc, err
}
