package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/strata/internal/errors"
	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/internal/plan"
	"github.com/felixgeelhaar/strata/internal/server"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	logger := log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
	store := plan.NewStore(logger)
	srv := server.NewServer(store, logger, server.Config{Address: "127.0.0.1:0"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestClientPlanLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, err := c.CreatePlan(ctx, "Build an API", "scoped")
	require.NoError(t, err)
	require.Positive(t, id)

	p, err := c.GetPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Build an API", p.Goal)
	assert.Equal(t, "scoped", p.Notes)

	plans, err := c.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	require.NoError(t, c.DeletePlan(ctx, id))
	_, err = c.GetPlan(ctx, id)
	assert.Equal(t, errors.ErrCodePlanNotFound, errors.CodeOf(err))
}

func TestClientTaskWorkflow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, err := c.CreatePlan(ctx, "goal", "")
	require.NoError(t, err)

	path, err := c.AddTask(ctx, id, "", "Design schema", "planning", "")
	require.NoError(t, err)
	assert.Equal(t, "0", path)

	child, err := c.AddTask(ctx, id, path, "Define endpoints", "isolation", "first pass")
	require.NoError(t, err)
	assert.Equal(t, "0,0", child)

	require.NoError(t, c.MoveTo(ctx, id, child))
	cur, err := c.GetCurrent(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cur.Task)
	assert.Equal(t, "Define endpoints", cur.Task.Description)

	lease, err := c.GenerateLease(ctx, id, child)
	require.NoError(t, err)
	require.NotEmpty(t, lease.Token)

	require.NoError(t, c.CompleteTask(ctx, id, child, lease.Token, "done", false))

	err = c.CompleteTask(ctx, id, child, lease.Token, "again", false)
	assert.Equal(t, errors.ErrCodeAlreadyCompleted, errors.CodeOf(err))

	require.NoError(t, c.UncompleteTask(ctx, id, child))

	dc, err := c.GetDistilledContext(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "goal", dc.Goal)
	require.NotNil(t, dc.Current.Task)
	assert.False(t, dc.Current.Task.Completed)
}

func TestClientNotes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, _ := c.CreatePlan(ctx, "goal", "")
	path, _ := c.AddTask(ctx, id, "", "t", "planning", "")

	require.NoError(t, c.SetNotes(ctx, id, path, "remember this"))
	notes, err := c.GetNotes(ctx, id, path)
	require.NoError(t, err)
	assert.Equal(t, "remember this", notes)

	require.NoError(t, c.DeleteNotes(ctx, id, path))
	notes, err = c.GetNotes(ctx, id, path)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestClientRemoveAndErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id, _ := c.CreatePlan(ctx, "goal", "")
	_, _ = c.AddTask(ctx, id, "", "a", "planning", "")
	_, _ = c.AddTask(ctx, id, "", "b", "planning", "")

	removed, err := c.RemoveTask(ctx, id, "0")
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Description)

	_, err = c.RemoveTask(ctx, id, "5")
	assert.Equal(t, errors.ErrCodeTaskNotFound, errors.CodeOf(err))

	err = c.ChangeLevel(ctx, id, "0", "implementation")
	require.NoError(t, err)

	err = c.MoveTo(ctx, id, "not-a-path")
	assert.Equal(t, errors.ErrCodePathSyntax, errors.CodeOf(err))
}

func TestClientGuide(t *testing.T) {
	c := newTestClient(t)
	guideText, err := c.GetGuide(context.Background(), "cli")
	require.NoError(t, err)
	assert.Contains(t, guideText, "STRATA GUIDE")
}

func TestClientServerUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", WithHTTPClient(&http.Client{}))
	_, err := c.ListPlans(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeClientTransport, errors.CodeOf(err))
}
