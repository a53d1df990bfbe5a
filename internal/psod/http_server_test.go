package psod

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

func newTestHTTPServer() (*HTTPServer, *RunStore, *RunExecutor) {
	store := NewRunStore()
	exec := NewRunExecutor(store)
	return NewHTTPServer(store, exec), store, exec
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, out
}

func TestHTTPHealthz(t *testing.T) {
	srv, _, _ := newTestHTTPServer()
	rr, body := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected healthz response: %d %v", rr.Code, body)
	}
}

func TestHTTPObjectives(t *testing.T) {
	srv, _, _ := newTestHTTPServer()
	rr, body := doJSON(t, srv.Handler(), http.MethodGet, "/v1/objectives", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	names, _ := body["objectives"].([]any)
	if len(names) != 4 {
		t.Fatalf("expected 4 objectives, got %v", body["objectives"])
	}
	if rr, _ := doJSON(t, srv.Handler(), http.MethodPost, "/v1/objectives", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHTTPRunLifecycle(t *testing.T) {
	srv, store, exec := newTestHTTPServer()
	h := srv.Handler()

	rr, body := doJSON(t, h, http.MethodPost, "/v1/runs", map[string]any{
		"run_id": "http-run",
		"input": map[string]any{
			"swarm": map[string]any{"generations": 10, "objective": "sphere", "seed": 11},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", rr.Code, body)
	}
	run := body["run"].(map[string]any)
	if run["id"] != "http-run" || run["status"] != string(models.RunStatusRunning) {
		t.Fatalf("unexpected created run: %v", run)
	}

	exec.Wait()
	waitForTerminal(t, store, "http-run")

	rr, body = doJSON(t, h, http.MethodGet, "/v1/runs/http-run", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	run = body["run"].(map[string]any)
	if run["status"] != string(models.RunStatusCompleted) || run["seed"] != "11" {
		t.Fatalf("unexpected run: %v", run)
	}
	result := run["result"].(map[string]any)
	if result["generations"].(float64) != 10 {
		t.Fatalf("unexpected result: %v", result)
	}

	rr, body = doJSON(t, h, http.MethodGet, "/v1/runs/http-run/history", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gens := body["generations"].([]any); len(gens) != 10 {
		t.Fatalf("expected 10 history entries, got %d", len(gens))
	}

	rr, _ = doJSON(t, h, http.MethodPost, "/v1/runs/http-run:stop", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 stopping a completed run, got %d", rr.Code)
	}
}

func TestHTTPHistoryOfDivergentRun(t *testing.T) {
	srv, store, exec := newTestHTTPServer()
	h := srv.Handler()

	rr, body := doJSON(t, h, http.MethodPost, "/v1/runs", map[string]any{
		"run_id": "diverge",
		"input": map[string]any{
			"swarm": map[string]any{"generations": 1000, "inertia_weight": 5, "objective": "sphere", "seed": 3},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", rr.Code, body)
	}
	exec.Wait()
	waitForTerminal(t, store, "diverge")

	rr, body = doJSON(t, h, http.MethodGet, "/v1/runs/diverge/history", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gens := body["generations"].([]any); len(gens) != 1000 {
		t.Fatalf("expected 1000 history entries, got %d", len(gens))
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	srv, _, _ := newTestHTTPServer()
	rr := httptest.NewRecorder()
	srv.writeJSON(rr, http.StatusOK, map[string]any{"value": math.Inf(1)})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("expected a complete JSON body, got %q: %v", rr.Body.String(), err)
	}
	if out["error"] == nil {
		t.Fatalf("expected error message, got %v", out)
	}
}

func TestHTTPCreateRunErrors(t *testing.T) {
	srv, _, exec := newTestHTTPServer()
	defer exec.StopAll()
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rr.Code)
	}

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown objective", map[string]any{"input": map[string]any{"swarm": map[string]any{"objective": "nope"}}}, http.StatusBadRequest},
		{"bad run id", map[string]any{"run_id": "a/b"}, http.StatusBadRequest},
		{"too many particles", map[string]any{"input": map[string]any{"swarm": map[string]any{"particle_count": 1e12}}}, http.StatusBadRequest},
		{"too many dimensions", map[string]any{"input": map[string]any{"swarm": map[string]any{"dimensions": 1001}}}, http.StatusBadRequest},
		{"too many generations", map[string]any{"input": map[string]any{"swarm": map[string]any{"generations": 1000001}}}, http.StatusBadRequest},
		{"first", map[string]any{"run_id": "dup", "input": map[string]any{"swarm": map[string]any{"generations": 1000000}}}, http.StatusCreated},
		{"duplicate", map[string]any{"run_id": "dup"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := doJSON(t, h, http.MethodPost, "/v1/runs", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %v", tt.want, rr.Code, body)
			}
		})
	}
}

func TestHTTPTooManyRuns(t *testing.T) {
	srv, _, exec := newTestHTTPServer()
	exec.SetMaxRuns(1)
	defer exec.StopAll()

	long := map[string]any{"input": map[string]any{"swarm": map[string]any{"generations": 1000000}}}
	if rr, _ := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", long); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if rr, _ := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", long); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestHTTPStopRun(t *testing.T) {
	srv, _, exec := newTestHTTPServer()
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/v1/runs", map[string]any{
		"run_id": "stop-me",
		"input":  map[string]any{"swarm": map[string]any{"generations": 1000000}},
	})
	rr, body := doJSON(t, h, http.MethodPost, "/v1/runs/stop-me:stop", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rr.Code, body)
	}
	if status := body["run"].(map[string]any)["status"]; status != string(models.RunStatusCancelled) {
		t.Fatalf("expected cancelled, got %v", status)
	}
	exec.Wait()

	if rr, _ := doJSON(t, h, http.MethodGet, "/v1/runs/stop-me:stop", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr, _ := doJSON(t, h, http.MethodPost, "/v1/runs/missing:stop", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHTTPListRuns(t *testing.T) {
	srv, store, _ := newTestHTTPServer()
	for _, id := range []string{"a", "b", "c"} {
		store.Create(id, testSpec())
	}
	store.SetStatus("b", models.RunStatusRunning, "")

	rr, body := doJSON(t, srv.Handler(), http.MethodGet, "/v1/runs?limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if runs := body["runs"].([]any); len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["limit"].(float64) != 2 || pagination["count"].(float64) != 2 {
		t.Fatalf("unexpected pagination: %v", pagination)
	}

	_, body = doJSON(t, srv.Handler(), http.MethodGet, "/v1/runs?status=RUNNING", nil)
	runs := body["runs"].([]any)
	if len(runs) != 1 || runs[0].(map[string]any)["id"] != "b" {
		t.Fatalf("expected only run b, got %v", runs)
	}
}

func TestHTTPRunNotFound(t *testing.T) {
	srv, store, _ := newTestHTTPServer()
	store.Create("pending", testSpec())

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/v1/runs/missing", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/missing/history", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/pending/history", http.StatusPreconditionFailed},
		{http.MethodGet, "/v1/runs/pending/unknown", http.StatusNotFound},
		{http.MethodGet, "/v1/runs/", http.StatusBadRequest},
		{http.MethodDelete, "/v1/runs/pending", http.StatusMethodNotAllowed},
		{http.MethodPut, "/v1/runs", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rr, _ := doJSON(t, srv.Handler(), tt.method, tt.path, nil)
		if rr.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rr.Code)
		}
	}
}

func TestHTTPStreamCompletedRun(t *testing.T) {
	srv, store, exec := newTestHTTPServer()
	if _, err := exec.Submit("streamed", swarmInput(t, map[string]any{"generations": 3, "seed": 2})); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	exec.Wait()
	waitForTerminal(t, store, "streamed")

	server := httptest.NewServer(srv.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/runs/streamed/stream")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %s", ct)
	}

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	want := []string{"status", "progress", "complete"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Fatalf("expected events %v, got %v", want, events)
	}
}

func TestHTTPMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestHTTPServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "pso_runs_active") {
		t.Fatalf("expected pso metrics in exposition")
	}
}
