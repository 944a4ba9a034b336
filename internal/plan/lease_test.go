package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/strata/internal/errors"
)

func TestGenerateLeaseDistinctTokens(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	l1, err := s.GenerateLease(id, p0)
	require.NoError(t, err)
	l2, err := s.GenerateLease(id, p0)
	require.NoError(t, err)
	assert.NotEqual(t, l1.Token, l2.Token)
}

func TestCompletionRace(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	l1, _ := s.GenerateLease(id, p0)
	l2, _ := s.GenerateLease(id, p0)

	// The superseded lease can never complete.
	err := s.CompleteTask(id, p0, l1.Token, "done", false)
	assert.Equal(t, errors.ErrCodeLeaseInvalid, errors.CodeOf(err))

	require.NoError(t, s.CompleteTask(id, p0, l2.Token, "done", false))

	// Both tokens are dead once the task is completed.
	err = s.CompleteTask(id, p0, l2.Token, "again", false)
	assert.Equal(t, errors.ErrCodeAlreadyCompleted, errors.CodeOf(err))
	err = s.CompleteTask(id, p0, l1.Token, "again", false)
	assert.Equal(t, errors.ErrCodeAlreadyCompleted, errors.CodeOf(err))
}

func TestCompleteWithoutLease(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	err := s.CompleteTask(id, p0, "", "done", false)
	assert.Equal(t, errors.ErrCodeLeaseRequired, errors.CodeOf(err))

	// No outstanding lease: a provided token is invalid, not required.
	err = s.CompleteTask(id, p0, "bogus", "done", false)
	assert.Equal(t, errors.ErrCodeLeaseInvalid, errors.CodeOf(err))
}

func TestForceCompletion(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	require.NoError(t, s.CompleteTask(id, p0, "", "", true))

	p, _ := s.GetPlan(id)
	assert.True(t, p.Root[0].Completed)

	// Force does not bypass the re-completion check.
	err := s.CompleteTask(id, p0, "", "", true)
	assert.Equal(t, errors.ErrCodeAlreadyCompleted, errors.CodeOf(err))
}

func TestCompletionRequiresSummary(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")
	l, _ := s.GenerateLease(id, p0)

	err := s.CompleteTask(id, p0, l.Token, "", false)
	require.Equal(t, errors.ErrCodeInvalidOperation, errors.CodeOf(err))

	// The rejected attempt must not consume the lease.
	require.NoError(t, s.CompleteTask(id, p0, l.Token, "verified with tests", false))
}

func TestCompletionCascadesToSubtree(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "parent", LevelPlanning, "")
	p00, _ := s.AddTask(id, p0, "child", LevelIsolation, "")
	_, err := s.AddTask(id, p00, "grandchild", LevelImplementation, "")
	require.NoError(t, err)

	l, _ := s.GenerateLease(id, p0)
	require.NoError(t, s.CompleteTask(id, p0, l.Token, "all done", false))

	p, _ := s.GetPlan(id)
	assert.True(t, p.Root[0].Completed)
	assert.Equal(t, "all done", p.Root[0].Summary)
	assert.True(t, p.Root[0].Children[0].Completed)
	assert.True(t, p.Root[0].Children[0].Children[0].Completed)
	assert.Empty(t, p.Root[0].Children[0].Summary, "cascade does not invent summaries")
}

func TestUncomplete(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	err := s.UncompleteTask(id, p0)
	assert.Equal(t, errors.ErrCodeNotCompleted, errors.CodeOf(err))

	require.NoError(t, s.CompleteTask(id, p0, "", "", true))
	require.NoError(t, s.UncompleteTask(id, p0))

	p, _ := s.GetPlan(id)
	assert.False(t, p.Root[0].Completed)
	assert.Empty(t, p.Root[0].Summary)

	// The reopened task can be leased and completed again.
	l, err := s.GenerateLease(id, p0)
	require.NoError(t, err)
	require.NoError(t, s.CompleteTask(id, p0, l.Token, "redone", false))
}

func TestLeaseInvalidatedByContentChange(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")

	l, _ := s.GenerateLease(id, p0)
	require.NoError(t, s.SetNotes(id, p0, "changed underneath the lease holder"))

	err := s.CompleteTask(id, p0, l.Token, "done", false)
	assert.Equal(t, errors.ErrCodeLeaseInvalid, errors.CodeOf(err))

	l, _ = s.GenerateLease(id, p0)
	require.NoError(t, s.ChangeLevel(id, p0, LevelOrdering))
	err = s.CompleteTask(id, p0, l.Token, "done", false)
	assert.Equal(t, errors.ErrCodeLeaseInvalid, errors.CodeOf(err))
}

func TestLeaseOnCompletedTask(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "t", LevelPlanning, "")
	require.NoError(t, s.CompleteTask(id, p0, "", "", true))

	_, err := s.GenerateLease(id, p0)
	assert.Equal(t, errors.ErrCodeTaskNotFound, errors.CodeOf(err))
}

func TestLeaseDroppedWithSubtree(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreatePlan("goal", "")
	p0, _ := s.AddTask(id, Path{}, "parent", LevelPlanning, "")
	p00, _ := s.AddTask(id, p0, "child", LevelIsolation, "")

	l, _ := s.GenerateLease(id, p00)
	_, err := s.RemoveTask(id, p0)
	require.NoError(t, err)

	// Re-adding at the same coordinates must not resurrect the old lease.
	p0, _ = s.AddTask(id, Path{}, "parent2", LevelPlanning, "")
	p00, _ = s.AddTask(id, p0, "child2", LevelIsolation, "")
	err = s.CompleteTask(id, p00, l.Token, "done", false)
	assert.Equal(t, errors.ErrCodeLeaseInvalid, errors.CodeOf(err))
}
