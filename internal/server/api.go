package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/strata/internal/errors"
	"github.com/felixgeelhaar/strata/internal/guide"
	"github.com/felixgeelhaar/strata/internal/plan"
	"github.com/felixgeelhaar/strata/pkg/strata/api"
)

// statusFor maps error codes onto HTTP statuses. Adapters translate
// presentation but never mask the error kind; the code travels in the body.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodePlanNotFound, errors.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidOperation, errors.ErrCodePathSyntax:
		return http.StatusBadRequest
	case errors.ErrCodeLeaseRequired, errors.ErrCodeLeaseInvalid,
		errors.ErrCodeAlreadyCompleted, errors.ErrCodeNotCompleted:
		return http.StatusConflict
	case errors.ErrCodeLockFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.Envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := &api.ErrorBody{Code: string(errors.ErrCodeInternal), Message: err.Error()}
	var serr *errors.StrataError
	if errors.As(err, &serr) {
		body.Code = string(serr.Code)
		body.Message = serr.Message
		body.Suggestions = serr.Suggestions
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	if encErr := json.NewEncoder(w).Encode(api.Envelope{Success: false, Error: body}); encErr != nil {
		s.logger.Error("encode error response", "error", encErr)
	}
}

func (s *Server) planID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidOperation, "plan id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidOperation, "invalid request body", err))
		return false
	}
	return true
}

func (s *Server) parsePath(w http.ResponseWriter, raw string) (plan.Path, bool) {
	p, err := plan.ParsePath(raw)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return p, true
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePlanRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.store.CreatePlan(req.Goal, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, api.CreatePlanResponse{ID: id})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, api.ListPlansResponse{Plans: plans})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPlan(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeletePlan(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.AddTaskRequest
	if !s.decode(w, r, &req) {
		return
	}
	parent, ok := s.parsePath(w, req.ParentPath)
	if !ok {
		return
	}
	level, err := plan.ParseLevel(req.Level)
	if err != nil {
		s.writeError(w, err)
		return
	}

	path, err := s.store.AddTask(id, parent, req.Description, level, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, api.AddTaskResponse{Path: path.String()})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.CompleteTaskRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	if err := s.store.CompleteTask(id, path, req.Lease, req.Summary, req.Force); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleUncompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.TaskPathRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	if err := s.store.UncompleteTask(id, path); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.TaskPathRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	removed, err := s.store.RemoveTask(id, path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, api.RemoveTaskResponse{Removed: removed})
}

func (s *Server) handleChangeLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.ChangeLevelRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}
	level, err := plan.ParseLevel(req.Level)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.ChangeLevel(id, path, level); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	path, ok := s.parsePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	notes, err := s.store.GetNotes(id, path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, api.NotesResponse{Path: path.String(), Notes: notes})
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.SetNotesRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	if err := s.store.SetNotes(id, path, req.Notes); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	path, ok := s.parsePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	if err := s.store.DeleteNotes(id, path); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	if err := s.store.MoveTo(id, path); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, nil)
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	cur, err := s.store.GetCurrent(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, cur)
}

func (s *Server) handleDistilledContext(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	dc, err := s.store.DistilledContext(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, dc)
}

func (s *Server) handleGenerateLease(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	var req api.LeaseRequest
	if !s.decode(w, r, &req) {
		return
	}
	path, ok := s.parsePath(w, req.Path)
	if !ok {
		return
	}

	lease, err := s.store.GenerateLease(id, path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, api.LeaseResponse{Token: lease.Token, Path: lease.Path.String()})
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	mode := guide.ModeCLI
	if r.URL.Query().Get("mode") == "mcp" {
		mode = guide.ModeMCP
	}
	s.writeData(w, http.StatusOK, api.GuideResponse{Guide: guide.Render(mode)})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"alive"}`))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.IsShuttingDown() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"shutting down"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
