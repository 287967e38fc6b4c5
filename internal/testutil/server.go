package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Call records one request received by a ScriptServer: which endpoint was
// hit and the decoded JSON payload (including any injected token field).
type Call struct {
	Endpoint string
	Payload  map[string]any
}

// Response is one scripted reply.
type Response struct {
	Status int
	Body   string
}

// ScriptServer is an httptest-backed fake of the remote CrewCall service.
//
// Replies are resolved per endpoint in priority order: a custom handler if
// installed, then the next queued one-shot response, then the sticky
// response, then `{}` with status 200. Every request is recorded for
// assertions on payload contents (actor ids, tokens, tagged dates).
//
// Thread-safety: safe for concurrent use; cache tests overlap calls on
// purpose.
type ScriptServer struct {
	mu       sync.Mutex
	server   *httptest.Server
	queues   map[string][]Response
	sticky   map[string]Response
	handlers map[string]func(Call) Response
	calls    []Call
}

// NewScriptServer starts a fake service. It is closed via t.Cleanup.
func NewScriptServer(t *testing.T) *ScriptServer {
	t.Helper()
	s := &ScriptServer{
		queues:   make(map[string][]Response),
		sticky:   make(map[string]Response),
		handlers: make(map[string]func(Call) Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the fake service's base address.
func (s *ScriptServer) URL() string {
	return s.server.URL
}

// Respond enqueues a one-shot 200 reply for endpoint.
func (s *ScriptServer) Respond(endpoint, body string) {
	s.RespondStatus(endpoint, http.StatusOK, body)
}

// RespondStatus enqueues a one-shot reply with an explicit status.
func (s *ScriptServer) RespondStatus(endpoint string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[endpoint] = append(s.queues[endpoint], Response{Status: status, Body: body})
}

// RespondAlways installs a sticky reply used whenever the one-shot queue
// for endpoint is empty.
func (s *ScriptServer) RespondAlways(endpoint, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sticky[endpoint] = Response{Status: http.StatusOK, Body: body}
}

// Handle installs a custom responder for endpoint. Used by concurrency
// tests that need to gate or sequence resolutions.
func (s *ScriptServer) Handle(endpoint string, fn func(Call) Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[endpoint] = fn
}

// Calls returns the recorded calls for endpoint, in arrival order. With an
// empty endpoint it returns every recorded call.
func (s *ScriptServer) Calls(endpoint string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if endpoint == "" || c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent call to endpoint.
func (s *ScriptServer) LastCall(endpoint string) (Call, bool) {
	calls := s.Calls(endpoint)
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}

func (s *ScriptServer) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/")

	var payload map[string]any
	_ = json.NewDecoder(r.Body).Decode(&payload)
	call := Call{Endpoint: endpoint, Payload: payload}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	handler := s.handlers[endpoint]
	var response Response
	var scripted bool
	if handler == nil {
		if queue := s.queues[endpoint]; len(queue) > 0 {
			response, s.queues[endpoint] = queue[0], queue[1:]
			scripted = true
		} else if sticky, ok := s.sticky[endpoint]; ok {
			response, scripted = sticky, true
		}
	}
	s.mu.Unlock()

	// Custom handlers run unlocked so they may block to sequence
	// overlapping requests.
	if handler != nil {
		response, scripted = handler(call), true
	}
	if !scripted {
		response = Response{Status: http.StatusOK, Body: "{}"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Status)
	w.Write([]byte(response.Body))
}
