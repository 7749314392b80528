// Package platformtest provides an in-process fake of a platform
// instance's admin API. The fake serves the five admin endpoints with the
// platform's standard response envelope, enforces the Admin authorization
// scheme when a key is configured, and records every request in arrival
// order. It backs the unit and e2e suites and the fakeplatform tool.
package platformtest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
)

// Request is one recorded admin API request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// ClientResult is the per-client outcome reported by the deploy endpoint.
type ClientResult struct {
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
}

// DatabaseResult is the per-database outcome reported by the migration
// endpoint.
type DatabaseResult struct {
	Database string `json:"database"`
	Status   string `json:"status"`
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type forcedError struct {
	code    int
	message string
}

// Instance is a fake platform instance. Configure it with options, mount
// Handler on an httptest.Server or a real listener, then inspect the
// recorded requests.
type Instance struct {
	apiKey          string
	systemStatus    string
	totalClients    int
	clientResults   []ClientResult
	databaseResults []DatabaseResult
	forced          map[string]forcedError

	mu       sync.Mutex
	requests []Request
}

// Option configures an Instance.
type Option func(*Instance)

// WithAPIKey makes the instance reject any request whose Authorization
// header is not exactly "Admin <key>".
func WithAPIKey(key string) Option {
	return func(i *Instance) { i.apiKey = key }
}

// WithHealthSummary sets the summary reported by the health endpoint.
func WithHealthSummary(systemStatus string, totalClients int) Option {
	return func(i *Instance) {
		i.systemStatus = systemStatus
		i.totalClients = totalClients
	}
}

// WithClientResults sets the per-client outcomes reported by the deploy
// endpoint.
func WithClientResults(results ...ClientResult) Option {
	return func(i *Instance) { i.clientResults = results }
}

// WithDatabaseResults sets the per-database outcomes reported by the
// migration endpoint.
func WithDatabaseResults(results ...DatabaseResult) Option {
	return func(i *Instance) { i.databaseResults = results }
}

// WithEndpointError forces the endpoint at path to fail with the given
// status code and error message. The request is still recorded.
func WithEndpointError(path string, code int, message string) Option {
	return func(i *Instance) { i.forced[path] = forcedError{code: code, message: message} }
}

// New creates an Instance with healthy defaults: three clients, every
// deploy and migration succeeding, no authorization required.
func New(opts ...Option) *Instance {
	i := &Instance{
		systemStatus: "healthy",
		totalClients: 3,
		clientResults: []ClientResult{
			{ClientID: "client-001", Status: "success"},
			{ClientID: "client-002", Status: "success"},
			{ClientID: "client-003", Status: "success"},
		},
		databaseResults: []DatabaseResult{
			{Database: "clients_main", Status: "success"},
			{Database: "clients_archive", Status: "success"},
		},
		forced: make(map[string]forcedError),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Handler returns the HTTP handler serving the admin API.
func (i *Instance) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/ping", i.handle(http.MethodGet, i.pingBody))
	mux.HandleFunc("/api/admin/health", i.handle(http.MethodGet, i.healthBody))
	mux.HandleFunc("/api/admin/info", i.handle(http.MethodGet, i.infoBody))
	mux.HandleFunc("/api/admin/integrations/deploy", i.handle(http.MethodPost, i.deployBody))
	mux.HandleFunc("/api/admin/migrations/execute", i.handle(http.MethodPost, i.migrateBody))
	return mux
}

// Requests returns a copy of all recorded requests in arrival order.
func (i *Instance) Requests() []Request {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Request, len(i.requests))
	copy(out, i.requests)
	return out
}

// RequestCount returns the number of requests received so far.
func (i *Instance) RequestCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.requests)
}

// Reset clears the recorded requests.
func (i *Instance) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.requests = nil
}

func (i *Instance) record(r *http.Request, body []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.requests = append(i.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
}

func (i *Instance) handle(method string, respond func(body []byte) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		i.record(r, body)

		if i.apiKey != "" && r.Header.Get("Authorization") != "Admin "+i.apiKey {
			writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "invalid admin credentials"})
			return
		}
		if r.Method != method {
			writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Error: "method not allowed"})
			return
		}
		if forced, ok := i.forced[r.URL.Path]; ok {
			writeJSON(w, forced.code, envelope{Success: false, Error: forced.message})
			return
		}

		data, err := respond(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
	}
}

func (i *Instance) pingBody([]byte) (any, error) {
	return map[string]any{"message": "pong"}, nil
}

func (i *Instance) healthBody([]byte) (any, error) {
	return map[string]any{
		"summary": map[string]any{
			"systemStatus": i.systemStatus,
			"totalClients": i.totalClients,
		},
	}, nil
}

func (i *Instance) infoBody([]byte) (any, error) {
	return map[string]any{
		"version": "4.2.1",
		"database": map[string]any{
			"status":        "connected",
			"clientSchemas": i.totalClients,
		},
	}, nil
}

func (i *Instance) deployBody(body []byte) (any, error) {
	if len(body) == 0 || !json.Valid(body) {
		return nil, errors.New("request body must be a JSON document")
	}
	return map[string]any{"results": i.clientResults}, nil
}

func (i *Instance) migrateBody(body []byte) (any, error) {
	if len(body) == 0 || !json.Valid(body) {
		return nil, errors.New("request body must be a JSON document")
	}
	return map[string]any{"results": i.databaseResults}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
