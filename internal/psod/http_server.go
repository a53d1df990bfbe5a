package psod

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxListLimit = 1000

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/objectives", s.handleObjectives)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"active_runs": s.Executor.Active(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleObjectives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"objectives": objective.Names()})
}

// handleRuns handles /v1/runs
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id}, /v1/runs/{id}:stop,
// /v1/runs/{id}/history and /v1/runs/{id}/stream
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(method string, h func(http.ResponseWriter, *http.Request, string), runID string) {
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r, runID)
	}

	switch {
	case strings.HasSuffix(path, ":stop"):
		route(http.MethodPost, s.handleStopRun, strings.TrimSuffix(path, ":stop"))
	case strings.HasSuffix(path, "/history"):
		route(http.MethodGet, s.handleHistory, strings.TrimSuffix(path, "/history"))
	case strings.HasSuffix(path, "/stream"):
		route(http.MethodGet, s.handleStream, strings.TrimSuffix(path, "/stream"))
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		route(http.MethodGet, s.handleGetRun, path)
	}
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID string    `json:"run_id,omitempty"`
		Input *RunInput `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Input == nil {
		req.Input = &RunInput{}
	}

	rec, err := s.Executor.Submit(req.RunID, req.Input)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{"run": rec.Run})
}

// handleListRuns handles GET /v1/runs?limit=&offset=&status=
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, maxListLimit)
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	status := models.RunStatus(strings.ToLower(q.Get("status")))

	recs := s.store.List(limit, offset, status)
	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec.Run})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeError(w, httpStatus(err), err.Error())
		return
	}
	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{"run": updated.Run})
}

// handleHistory handles GET /v1/runs/{id}/history
func (s *HTTPServer) handleHistory(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Collector == nil {
		s.writeError(w, http.StatusPreconditionFailed, "history not available")
		return
	}
	history := rec.Collector.History()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":              runID,
		"generations":         history,
		"improvement":         metrics.Improvement(history),
		"stalled_generations": metrics.Stalled(history, 0),
	})
}

// handleStream handles GET /v1/runs/{id}/stream as server-sent events. A
// progress event is sent whenever the generation advances and a complete
// event once the run is terminal.
func (s *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	interval := 500 * time.Millisecond
	if v, err := strconv.ParseInt(r.URL.Query().Get("interval_ms"), 10, 64); err == nil && v > 0 {
		interval = time.Duration(v) * time.Millisecond
	}

	flush := func() {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	lastGen := -1
	publish := func(rec *RunRecord) bool {
		if p := rec.Run.Progress; p != nil && p.Generation != lastGen {
			s.sendSSEEvent(w, "progress", p)
			lastGen = p.Generation
		}
		if rec.Run.Status.IsTerminal() {
			s.sendSSEEvent(w, "complete", rec.Run)
			flush()
			return true
		}
		flush()
		return false
	}

	s.sendSSEEvent(w, "status", map[string]any{"status": rec.Run.Status})
	if publish(rec) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			rec, ok := s.store.Get(runID)
			if !ok {
				s.sendSSEEvent(w, "error", map[string]any{"error": "run not found"})
				return
			}
			if publish(rec) {
				return
			}
		}
	}
}

func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to marshal SSE event data", "error", err)
		return
	}
	if _, err := w.Write([]byte("event: " + eventType + "\ndata: " + string(payload) + "\n\n")); err != nil {
		logger.Debug("failed to write SSE event", "error", err)
	}
}

// writeJSON encodes data before writing the header, so an unencodable value
// yields a 500 instead of a truncated body.
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to encode JSON response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"error": message})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRunIDMissing):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunExists), errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRuns):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
