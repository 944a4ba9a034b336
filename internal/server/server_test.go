package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/strata/internal/log"
	"github.com/felixgeelhaar/strata/internal/plan"
	"github.com/felixgeelhaar/strata/pkg/strata/api"
)

func newTestServer(t *testing.T) (*httptest.Server, *plan.Store) {
	t.Helper()
	logger := log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
	store := plan.NewStore(logger)
	srv := NewServer(store, logger, Config{Address: "127.0.0.1:0"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, api.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env api.Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res, env
}

func decodeData(t *testing.T, env api.Envelope, into any) {
	t.Helper()
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, into))
}

func createPlan(t *testing.T, ts *httptest.Server, goal string) int64 {
	t.Helper()
	res, env := doJSON(t, http.MethodPost, ts.URL+"/api/plans", api.CreatePlanRequest{Goal: goal})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var out api.CreatePlanResponse
	decodeData(t, env, &out)
	return out.ID
}

func TestPlanLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createPlan(t, ts, "Build an API")

	res, env := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/plans/%d", ts.URL, id), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var p plan.Plan
	decodeData(t, env, &p)
	assert.Equal(t, "Build an API", p.Goal)
	assert.Empty(t, p.Root)

	res, env = doJSON(t, http.MethodGet, ts.URL+"/api/plans", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list api.ListPlansResponse
	decodeData(t, env, &list)
	require.Len(t, list.Plans, 1)
	assert.Equal(t, id, list.Plans[0].ID)

	res, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/plans/%d", ts.URL, id), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/plans/%d", ts.URL, id), nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PLAN-001", env.Error.Code)
}

func TestTaskFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createPlan(t, ts, "goal")
	base := fmt.Sprintf("%s/api/plans/%d", ts.URL, id)

	res, env := doJSON(t, http.MethodPost, base+"/tasks", api.AddTaskRequest{
		Description: "Design schema", Level: "planning",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var added api.AddTaskResponse
	decodeData(t, env, &added)
	assert.Equal(t, "0", added.Path)

	res, env = doJSON(t, http.MethodPost, base+"/tasks", api.AddTaskRequest{
		ParentPath: "0", Description: "Define endpoints", Level: "isolation",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	decodeData(t, env, &added)
	assert.Equal(t, "0,0", added.Path)

	res, _ = doJSON(t, http.MethodPost, base+"/move", api.MoveRequest{Path: "0,0"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env = doJSON(t, http.MethodGet, base+"/current", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var cur plan.Current
	decodeData(t, env, &cur)
	require.NotNil(t, cur.Task)
	assert.Equal(t, "Define endpoints", cur.Task.Description)

	res, env = doJSON(t, http.MethodPost, base+"/lease", api.LeaseRequest{Path: "0,0"})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var lease api.LeaseResponse
	decodeData(t, env, &lease)
	require.NotEmpty(t, lease.Token)

	res, _ = doJSON(t, http.MethodPost, base+"/tasks/complete", api.CompleteTaskRequest{
		Path: "0,0", Lease: lease.Token, Summary: "done",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env = doJSON(t, http.MethodGet, base+"/context", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var dc plan.DistilledContext
	decodeData(t, env, &dc)
	require.NotNil(t, dc.Current.Task)
	assert.True(t, dc.Current.Task.Completed)
	assert.Equal(t, "done", dc.Current.Task.Summary)
}

func TestLeaseErrorsMapToConflict(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createPlan(t, ts, "goal")
	base := fmt.Sprintf("%s/api/plans/%d", ts.URL, id)

	_, _ = doJSON(t, http.MethodPost, base+"/tasks", api.AddTaskRequest{Description: "t", Level: "planning"})

	res, env := doJSON(t, http.MethodPost, base+"/tasks/complete", api.CompleteTaskRequest{Path: "0", Summary: "x"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "LEASE-001", env.Error.Code)
	assert.NotEmpty(t, env.Error.Suggestions)

	res, env = doJSON(t, http.MethodPost, base+"/tasks/complete", api.CompleteTaskRequest{Path: "0", Lease: "bogus", Summary: "x"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "LEASE-002", env.Error.Code)
}

func TestBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createPlan(t, ts, "goal")
	base := fmt.Sprintf("%s/api/plans/%d", ts.URL, id)

	res, env := doJSON(t, http.MethodPost, base+"/tasks", api.AddTaskRequest{
		ParentPath: "zero", Description: "t", Level: "planning",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "PATH-001", env.Error.Code)

	res, env = doJSON(t, http.MethodPost, base+"/tasks/remove", api.TaskPathRequest{Path: ""})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "PLAN-003", env.Error.Code)

	res, env = doJSON(t, http.MethodGet, ts.URL+"/api/plans/abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.NotNil(t, env.Error)
}

func TestNotesEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createPlan(t, ts, "goal")
	base := fmt.Sprintf("%s/api/plans/%d", ts.URL, id)
	_, _ = doJSON(t, http.MethodPost, base+"/tasks", api.AddTaskRequest{Description: "t", Level: "planning"})

	res, _ := doJSON(t, http.MethodPut, base+"/tasks/notes", api.SetNotesRequest{Path: "0", Notes: "detail"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env := doJSON(t, http.MethodGet, base+"/tasks/notes?path=0", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var notes api.NotesResponse
	decodeData(t, env, &notes)
	assert.Equal(t, "detail", notes.Notes)

	res, _ = doJSON(t, http.MethodDelete, base+"/tasks/notes?path=0", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, env = doJSON(t, http.MethodGet, base+"/tasks/notes?path=0", nil)
	decodeData(t, env, &notes)
	assert.Empty(t, notes.Notes)
}

func TestGuideEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	_, env := doJSON(t, http.MethodGet, ts.URL+"/api/guide", nil)
	var g api.GuideResponse
	decodeData(t, env, &g)
	assert.Contains(t, g.Guide, "STRATA GUIDE")

	_, env = doJSON(t, http.MethodGet, ts.URL+"/api/guide?mode=mcp", nil)
	decodeData(t, env, &g)
	assert.Contains(t, g.Guide, "STRATA MCP GUIDE")
}

func TestHealthAndUI(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/health/live")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/health/ready")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/ui")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "EventSource")
}

func TestEventsStream(t *testing.T) {
	ts, store := newTestServer(t)
	id := createPlan(t, ts, "goal")

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/plans/%d/events", ts.URL, id), nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/event-stream")

	reader := newSSEReader(res.Body)
	event, _ := reader.next(t)
	assert.Equal(t, "connected", event)

	_, err = store.AddTask(id, plan.Path{}, "t", plan.LevelPlanning, "")
	require.NoError(t, err)

	event, data := reader.next(t)
	assert.Equal(t, "change", event)
	var ev plan.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, id, ev.PlanID)
	assert.Equal(t, uint64(1), ev.Seq)
}

func TestEventsStreamUnknownPlan(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/api/plans/99/events")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
