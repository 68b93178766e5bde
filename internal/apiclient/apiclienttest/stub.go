// Package apiclienttest provides a scripted apiclient.Requester for tests.
package apiclienttest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/noah-isme/kultura-go/internal/apiclient"
)

// Call records one request made through a Stub.
type Call struct {
	Method string
	Path   string
	Body   any
}

// Handler produces the envelope for a request.
type Handler func(ctx context.Context, call Call) apiclient.Envelope

// Stub routes requests by method and path. Unrouted requests get a 404 envelope.
type Stub struct {
	mu     sync.Mutex
	routes map[string]Handler
	calls  []Call
}

// New returns an empty Stub.
func New() *Stub {
	return &Stub{routes: make(map[string]Handler)}
}

// Handle registers h for method and path, replacing any previous handler.
func (s *Stub) Handle(method, path string, h Handler) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
	return s
}

// Reply registers a fixed envelope for method and path.
func (s *Stub) Reply(method, path string, env apiclient.Envelope) *Stub {
	return s.Handle(method, path, func(context.Context, Call) apiclient.Envelope { return env })
}

// Calls returns a copy of the recorded requests.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many requests hit method and path.
func (s *Stub) CallCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, call := range s.calls {
		if call.Method == method && call.Path == path {
			count++
		}
	}
	return count
}

// Do implements apiclient.Requester. Query options are ignored.
func (s *Stub) Do(ctx context.Context, method, path string, body any, _ ...apiclient.RequestOption) apiclient.Envelope {
	call := Call{Method: method, Path: path, Body: body}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.routes[method+" "+path]
	s.mu.Unlock()

	if !ok {
		return Fail(http.StatusNotFound, apiclient.CodeNotFound, "route not found: "+url.PathEscape(path))
	}
	return h(ctx, call)
}

// OK builds a successful envelope around data.
func OK(data any) apiclient.Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return apiclient.Envelope{Success: true, Data: raw, Status: http.StatusOK}
}

// Paged builds a successful envelope with pagination metadata.
func Paged(data any, meta apiclient.Metadata) apiclient.Envelope {
	env := OK(data)
	env.Metadata = &meta
	return env
}

// Fail builds a failed envelope. A zero status models a transport failure.
func Fail(status int, code, message string) apiclient.Envelope {
	return apiclient.Envelope{Success: false, Status: status, Error: code, Message: message}
}
