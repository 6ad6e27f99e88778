package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/remotehub/internal/domain/capture"
	"github.com/GriffinCanCode/remotehub/internal/domain/folders"
	"github.com/GriffinCanCode/remotehub/internal/domain/ports"
	"github.com/GriffinCanCode/remotehub/internal/domain/session"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/remotehub/internal/shared/paths"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

type startCall struct {
	name string
	opts session.StartOptions
}

// fakeSessions records calls and answers with canned errors.
type fakeSessions struct {
	starts   []startCall
	stops    []string
	keys     []string
	texts    []string
	scrolls  []string
	startErr error
	relayErr error
	ready    session.Readiness
	readyErr error
}

func (f *fakeSessions) Start(_ context.Context, name string, opts session.StartOptions) (*session.Session, error) {
	f.starts = append(f.starts, startCall{name, opts})
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &session.Session{Name: name, Port: 7796, WorkingDirectory: opts.Dir, Status: session.StatusRunning}, nil
}

func (f *fakeSessions) Stop(_ context.Context, name string) error {
	if err := utils.ValidateSessionName(name); err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidName, err)
	}
	f.stops = append(f.stops, name)
	return nil
}

func (f *fakeSessions) Readiness(context.Context, string) (session.Readiness, error) {
	return f.ready, f.readyErr
}

func (f *fakeSessions) SendKeys(_ context.Context, name, key string) error {
	f.keys = append(f.keys, name+":"+key)
	return f.relayErr
}

func (f *fakeSessions) SendText(_ context.Context, name, text string) error {
	f.texts = append(f.texts, name+":"+text)
	return f.relayErr
}

func (f *fakeSessions) Scroll(_ context.Context, name, direction string) error {
	f.scrolls = append(f.scrolls, name+":"+direction)
	return f.relayErr
}

type fakeRegistry struct {
	sessions []session.Session
	err      error
}

func (f *fakeRegistry) List(context.Context) ([]session.Session, error) {
	return f.sessions, f.err
}

type fakeCapture struct {
	procs    []capture.Process
	captured []int
	err      error
}

func (f *fakeCapture) List(context.Context) ([]capture.Process, error) {
	return f.procs, nil
}

func (f *fakeCapture) Capture(_ context.Context, pid int) (*session.Session, error) {
	f.captured = append(f.captured, pid)
	if f.err != nil {
		return nil, f.err
	}
	return &session.Session{Name: "b", Port: 7775, WorkingDirectory: "/proj/b", Status: session.StatusRunning}, nil
}

type testServer struct {
	router   *gin.Engine
	sessions *fakeSessions
	registry *fakeRegistry
	capture  *fakeCapture
	metrics  *monitoring.Metrics
	root     string
	install  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	for _, dir := range []string{"alpha", "Beta", "alpha/nested", ".hidden", "node_modules"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	browser, err := folders.NewBrowser(root)
	require.NoError(t, err)

	ts := &testServer{
		router:   gin.New(),
		sessions: &fakeSessions{},
		registry: &fakeRegistry{},
		capture:  &fakeCapture{},
		metrics:  monitoring.NewMetrics(),
		root:     browser.Root(),
		install:  t.TempDir(),
	}
	h := NewHandlers(Deps{
		Sessions:   ts.sessions,
		Registry:   ts.registry,
		Folders:    browser,
		Discoverer: ts.capture,
		Capturer:   ts.capture,
		Metrics:    ts.metrics,
		Install:    paths.NewInstall(ts.install),
	})
	h.Register(ts.router)
	return ts
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Host = "192.168.1.20:7680"
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListSessions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	ts.registry.sessions = []session.Session{{Name: "alpha", Port: 7796, Status: session.StatusRunning, Windows: 1}}
	w = ts.do("GET", "/api/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"alpha","port":7796,"working_directory":"","status":"running","attached":false,"windows":1,"last_activity":0}]`, w.Body.String())

	ts.registry.err = fmt.Errorf("tmux: %w", assert.AnError)
	w = ts.do("GET", "/api/sessions", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestStartSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/start/alpha?dir=alpha/nested&skip_permissions=1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "http://192.168.1.20:7796/", body["url"])

	require.Len(t, ts.sessions.starts, 1)
	assert.Equal(t, "alpha", ts.sessions.starts[0].name)
	assert.Equal(t, session.StartOptions{
		Dir:             filepath.Join(ts.root, "alpha", "nested"),
		SkipPermissions: true,
	}, ts.sessions.starts[0].opts)
}

func TestStartSessionWithoutDir(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/start/alpha", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StartOptions{}, ts.sessions.starts[0].opts)
}

func TestStartSessionRejectsBadDirectories(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		dir  string
	}{
		{"traversal", "../../etc"},
		{"absolute outside root", "/etc"},
		{"missing", "does-not-exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do("GET", "/start/alpha?dir="+tt.dir, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
	assert.Empty(t, ts.sessions.starts)
}

func TestStartSessionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid name", fmt.Errorf("%w: bad", session.ErrInvalidName), http.StatusBadRequest},
		{"spawn failure", fmt.Errorf("%w: tmux exited", session.ErrSpawnFailure), http.StatusInternalServerError},
		{"range exhausted", ports.ErrExhausted, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.sessions.startErr = tt.err

			w := ts.do("GET", "/start/alpha", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Error(), decode(t, w)["error"])
		})
	}
}

func TestStopSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/stop/ghost", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ghost"}, ts.sessions.stops)

	w = ts.do("GET", "/stop/bad%20name", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadiness(t *testing.T) {
	ts := newTestServer(t)
	ts.sessions.ready = session.Readiness{Ready: true, Port: 7796}

	w := ts.do("GET", "/api/ttyd-ready/alpha", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ready":true,"port":7796}`, w.Body.String())
	assert.Equal(t, "no-cache, no-store", w.Header().Get("Cache-Control"))

	ts.sessions.readyErr = session.ErrNotFound
	w = ts.do("GET", "/api/ttyd-ready/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelays(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do("POST", "/api/send-keys/alpha", `{"key":"C-c"}`).Code)
	assert.Equal(t, http.StatusOK, ts.do("POST", "/api/send-text/alpha", `{"text":"hello"}`).Code)
	assert.Equal(t, http.StatusOK, ts.do("POST", "/api/scroll/alpha", `{"direction":"up"}`).Code)

	assert.Equal(t, []string{"alpha:C-c"}, ts.sessions.keys)
	assert.Equal(t, []string{"alpha:hello"}, ts.sessions.texts)
	assert.Equal(t, []string{"alpha:up"}, ts.sessions.scrolls)
}

func TestRelayErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		status int
	}{
		{"malformed body", "/api/send-keys/alpha", `{"key":`, nil, http.StatusBadRequest},
		{"key not allowed", "/api/send-keys/alpha", `{"key":"rm -rf /"}`, fmt.Errorf("%w: key", session.ErrInvalidInput), http.StatusBadRequest},
		{"oversize paste", "/api/send-text/alpha", `{"text":"x"}`, fmt.Errorf("%w: %w", session.ErrInvalidInput, utils.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{"bad direction", "/api/scroll/alpha", `{"direction":"left"}`, fmt.Errorf("%w: direction", session.ErrInvalidInput), http.StatusBadRequest},
		{"unknown session", "/api/send-keys/ghost", `{"key":"Enter"}`, session.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.sessions.relayErr = tt.err

			w := ts.do("POST", tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestListFolders(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/folders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var listing folders.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, []string{"alpha", "Beta"}, listing.Folders)
	assert.Equal(t, "", listing.Current)
	assert.False(t, listing.CanGoUp)

	w = ts.do("GET", "/api/folders?path=alpha", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, []string{"nested"}, listing.Folders)
	assert.True(t, listing.CanGoUp)

	assert.Equal(t, http.StatusBadRequest, ts.do("GET", "/api/folders?path=../../etc", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/api/folders?path=missing", "").Code)
}

func TestCapture(t *testing.T) {
	ts := newTestServer(t)
	ts.capture.procs = []capture.Process{{PID: 4242, WorkingDirectory: "/proj/b", Project: "b"}}

	w := ts.do("GET", "/api/capturable", "")
	require.Equal(t, http.StatusOK, w.Code)
	var procs []capture.Process
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &procs))
	require.Len(t, procs, 1)
	assert.Equal(t, 4242, procs[0].PID)

	w = ts.do("GET", "/capture?pid=4242", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://192.168.1.20:7775/", decode(t, w)["url"])
	assert.Equal(t, []int{4242}, ts.capture.captured)
}

func TestCaptureErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"missing pid", "", nil, http.StatusBadRequest},
		{"non-numeric pid", "?pid=abc", nil, http.StatusBadRequest},
		{"stale pid", "?pid=4242", capture.ErrNotFound, http.StatusNotFound},
		{"no conversation", "?pid=600", capture.ErrNoConversation, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.capture.err = tt.err

			w := ts.do("GET", "/capture"+tt.query, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "metrics")

	ts.do("GET", "/start/alpha", "")
	w = ts.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hub_operation_duration_seconds_count{operation="start",status="success"} 1`)
}

func TestCertAndIcon(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/cert", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/icon.png", "").Code)

	pem := []byte("-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----\n")
	require.NoError(t, os.WriteFile(filepath.Join(ts.install, paths.CertFile), pem, 0o600))
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	require.NoError(t, os.WriteFile(filepath.Join(ts.install, paths.IconFile), png, 0o600))

	w := ts.do("GET", "/cert", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-x509-ca-cert", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=claude-remote-hub.crt", w.Header().Get("Content-Disposition"))
	assert.Equal(t, pem, w.Body.Bytes())

	w = ts.do("GET", "/icon.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("%w: x", folders.ErrPathTraversal)))
	assert.Equal(t, http.StatusNotFound, statusFor(folders.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
