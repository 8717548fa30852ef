package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ruche-hive/ruche/internal/api"
	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/auth"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/runtime"
	"github.com/ruche-hive/ruche/internal/testutil"
)

func newTestServer(t *testing.T) (*api.Server, *testutil.TestEnv) {
	t.Helper()
	env := testutil.NewTestEnv(t)
	srv := api.NewServer(env.App.Nodes, api.Config{RequestTimeout: 5 * time.Second})
	return srv, env
}

func do(t *testing.T, srv *api.Server, method, path, body string, header ...string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestLiveness(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(1)

	status, body := do(t, srv, http.MethodGet, "/healthz", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	live := decode[api.HealthResponse](t, body)
	if live.Status != "ok" || live.Nodes != 1 {
		t.Errorf("liveness = %+v", live)
	}
}

func TestNodeHealth(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(1)

	status, body := do(t, srv, http.MethodGet, "/bee/1/health", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", status, body)
	}
	result := decode[health.CheckResult](t, body)
	if result.Status != health.StatusHealthy || !result.APIReachable {
		t.Errorf("result = %+v", result)
	}

	env.Prober.SetErr(errors.New("connection refused"))
	_, body = do(t, srv, http.MethodGet, "/bee/1/health", "")
	if result := decode[health.CheckResult](t, body); result.Status != health.StatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy", result.Status)
	}

	if status, _ := do(t, srv, http.MethodGet, "/bee/2/health", ""); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestCreateAndGet(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/bee", "")
	if status != http.StatusOK {
		t.Fatalf("POST /bee status = %d, body = %s", status, body)
	}
	info := decode[node.Info](t, body)
	if info.ID != 1 || info.Name != "node_01" || info.APIPort != "1701" {
		t.Errorf("info = %+v", info)
	}

	status, body = do(t, srv, http.MethodGet, "/bee/1", "")
	if status != http.StatusOK {
		t.Fatalf("GET /bee/1 status = %d", status)
	}
	got := decode[node.Info](t, body)
	if got.DataDir != "/media/ruche/swarm_data_01/node_01" || got.Status != "running" {
		t.Errorf("info = %+v", got)
	}

	// Container names are accepted too.
	if status, _ := do(t, srv, http.MethodGet, "/bee/node_01", ""); status != http.StatusOK {
		t.Errorf("GET /bee/node_01 status = %d, want 200", status)
	}
}

func TestErrors(t *testing.T) {
	srv, env := newTestServer(t)
	env.FS.AddDir("/media/ruche/swarm_data_01/node_01")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"unknown node", http.MethodGet, "/bee/42", http.StatusNotFound, "Unable to find bee node with id 42."},
		{"out of range", http.MethodGet, "/bee/250", http.StatusNotFound, "Unable to find bee node with id 250."},
		{"bad id", http.MethodGet, "/bee/abc", http.StatusBadRequest, ""},
		{"directory exists", http.MethodPost, "/bee", http.StatusConflict, "Directory '/media/ruche/swarm_data_01/node_01' already exists"},
		{"confirm without request", http.MethodDelete, "/bee/42", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, tt.method, tt.path, "")
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", status, tt.wantStatus, body)
			}
			resp := decode[api.ErrorResponse](t, body)
			if resp.Message == "" {
				t.Error("message should not be empty")
			}
			if tt.wantMsg != "" && resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	srv, env := newTestServer(t)
	for id := node.MinID; id <= node.MaxID; id++ {
		env.AddNode(id)
	}

	status, body := do(t, srv, http.MethodPost, "/bee", "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	resp := decode[api.ErrorResponse](t, body)
	if resp.Message != "Max capacity reached. 99 bee nodes already registered." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestDeletionFlow(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(3)

	status, body := do(t, srv, http.MethodDelete, "/bee/3", "")
	if status != http.StatusBadRequest {
		t.Fatalf("confirm without request: status = %d, want 400", status)
	}
	if msg := decode[api.ErrorResponse](t, body).Message; !strings.Contains(msg, "No request made in last 30sec") {
		t.Errorf("message = %q", msg)
	}

	status, body = do(t, srv, http.MethodDelete, "/bee/3/req", "")
	if status != http.StatusOK {
		t.Fatalf("request deletion: status = %d", status)
	}
	req := decode[api.DeletionRequestResponse](t, body)
	if req.ExpiresAt.Sub(req.RequestedAt) != 30*time.Second {
		t.Errorf("ticket lifetime = %v, want 30s", req.ExpiresAt.Sub(req.RequestedAt))
	}

	env.Clock.Advance(5 * time.Second)
	if status, body := do(t, srv, http.MethodDelete, "/bee/3", ""); status != http.StatusOK {
		t.Fatalf("confirm: status = %d, body = %s", status, body)
	}
	if env.NodeExists(3) {
		t.Error("node 3 should be deleted")
	}
	if env.FS.Exists(env.NodeDir(3)) {
		t.Error("node 3 directory should be removed")
	}
}

func TestDeletion_UpstreamFailure(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(4)
	env.Runtime.SetError("Remove", io.ErrUnexpectedEOF)

	do(t, srv, http.MethodDelete, "/bee/4/req", "")
	status, _ := do(t, srv, http.MethodDelete, "/bee/4", "")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}

	env.Runtime.ClearError("Remove")
	if status, _ := do(t, srv, http.MethodDelete, "/bee/4", ""); status != http.StatusOK {
		t.Errorf("retry status = %d, want 200", status)
	}
}

func TestList(t *testing.T) {
	srv, env := newTestServer(t)

	status, body := do(t, srv, http.MethodGet, "/bees", "")
	if status != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("empty list = %d %s", status, body)
	}

	env.AddNode(8)
	env.AddNode(2)
	_, body = do(t, srv, http.MethodGet, "/bees", "")
	infos := decode[[]node.Info](t, body)
	if len(infos) != 2 || infos[0].ID != 2 || infos[1].ID != 8 {
		t.Errorf("infos = %+v", infos)
	}
}

func TestSingleOps(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(1)
	env.Runtime.SetLogs("node_01", []string{"a", "b"})

	if status, _ := do(t, srv, http.MethodPost, "/bee/1/stop", ""); status != http.StatusOK {
		t.Fatalf("stop status = %d", status)
	}
	c, _ := env.Runtime.Status(t.Context(), "node_01")
	if c.Status != runtime.StatusStopped {
		t.Errorf("status = %q, want stopped", c.Status)
	}

	if status, _ := do(t, srv, http.MethodPost, "/bee/1/start", ""); status != http.StatusOK {
		t.Fatalf("start status = %d", status)
	}
	if status, _ := do(t, srv, http.MethodPost, "/bee/1/recreate", ""); status != http.StatusOK {
		t.Fatalf("recreate status = %d", status)
	}

	_, body := do(t, srv, http.MethodGet, "/bee/1/logs", "")
	logs := decode[api.LogsResponse](t, body)
	if logs.Name != "node_01" {
		t.Errorf("logs = %+v", logs)
	}

	_, body = do(t, srv, http.MethodGet, "/bee/1/events", "")
	events := decode[[]audit.Event](t, body)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != audit.EventStop || events[2].Type != audit.EventRecreate {
		t.Errorf("events = %+v", events)
	}
}

func TestBulk(t *testing.T) {
	srv, env := newTestServer(t)
	env.AddNode(1)
	env.AddNode(2)

	status, body := do(t, srv, http.MethodPost, "/bees/stop", "")
	if status != http.StatusOK {
		t.Fatalf("stop all status = %d, body = %s", status, body)
	}
	resp := decode[api.BulkResponse](t, body)
	if len(resp.Results) != 2 || !resp.Results[0].OK || !resp.Results[1].OK {
		t.Errorf("results = %+v", resp.Results)
	}

	status, body = do(t, srv, http.MethodPost, "/bees/start", `{"names":["node_02","node_09"]}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("start names status = %d, want 500", status)
	}
	resp = decode[api.BulkResponse](t, body)
	if len(resp.Results) != 2 || !resp.Results[0].OK || resp.Results[1].OK || resp.Results[1].Error == "" {
		t.Errorf("results = %+v", resp.Results)
	}

	status, _ = do(t, srv, http.MethodPost, "/bees/recreate", "")
	if status != http.StatusOK {
		t.Errorf("recreate all status = %d", status)
	}

	status, _ = do(t, srv, http.MethodPost, "/bees/stop", `{"names":`)
	if status != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", status)
	}
}

func TestAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	signer, err := auth.NewSigner("topsecret")
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	srv := api.NewServer(env.App.Nodes, api.Config{Signer: signer})

	if status, _ := do(t, srv, http.MethodGet, "/healthz", ""); status != http.StatusOK {
		t.Errorf("healthz should not need a token, got %d", status)
	}

	status, body := do(t, srv, http.MethodGet, "/bees", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if decode[api.ErrorResponse](t, body).Message == "" {
		t.Error("401 should carry a message")
	}

	if status, _ := do(t, srv, http.MethodGet, "/bees", "", "Authorization", "Bearer nope"); status != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", status)
	}

	token, _ := signer.Generate("ops", time.Hour)
	if status, _ := do(t, srv, http.MethodGet, "/bees", "", "Authorization", "Bearer "+token); status != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", status)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := do(t, srv, http.MethodGet, "/nope", "")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if decode[api.ErrorResponse](t, body).Message == "" {
		t.Error("404 should carry a message")
	}
}
