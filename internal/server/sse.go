package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 15 * time.Second

// handleEvents adapts a change notifier subscription into a server-sent event
// stream. Events carry no diff; clients re-fetch plan state on each one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.planID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.GetPlan(id); err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInternal, "streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := s.store.Notifier().Subscribe(id)
	defer cancel()

	// Prime the client so it renders without waiting for the first change.
	fmt.Fprintf(w, "event: connected\ndata: {\"plan_id\":%d}\n\n", id)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, open := <-ch:
			if !open {
				// Plan deleted or store shut down.
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
