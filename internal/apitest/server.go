// Package apitest provides a scriptable fake of the trends API for tests.
//
// Each endpoint is served under /api/ and answers from a queue of scripted
// responses; the last response repeats once the queue is drained.
// Unscripted endpoints answer 404. Every request is recorded.
//
//	srv := apitest.New(t)
//	srv.Script("trending", apitest.Status(503), apitest.JSON(200, map[string]any{"items": []any{}}))
//	store, _ := config.New(map[string]any{"base_uri": srv.BaseURI()})
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Response is one scripted answer.
type Response struct {
	Status int
	Body   string
	Header map[string]string
	Delay  time.Duration // wait before answering; aborted when the client goes away
	Hijack bool          // drop the connection without answering
}

// Status returns a response with an empty body.
func Status(code int) Response {
	return Response{Status: code}
}

// JSON returns a response with v encoded as the body.
func JSON(code int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Response{
		Status: code,
		Body:   string(b),
		Header: map[string]string{"Content-Type": "application/json"},
	}
}

// Raw returns a response with a literal body.
func Raw(code int, body string) Response {
	return Response{Status: code, Body: body}
}

// Drop returns a response that closes the connection mid-request.
func Drop() Response {
	return Response{Hijack: true}
}

// Request is a recorded inbound request.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	Header   http.Header
	Body     []byte
}

// Server is a fake trends API backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	scripts  map[string][]Response
	requests []Request
}

// New starts a server that is closed when the test ends. The health
// endpoint answers {"status":"ok"} unless scripted otherwise.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{scripts: map[string][]Response{}}
	s.Script("health", JSON(http.StatusOK, map[string]any{"status": "ok"}))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/*", s.handle)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURI is the value to use for the base_uri setting.
func (s *Server) BaseURI() string {
	return s.URL + "/api/"
}

// Script replaces the response queue of endpoint.
func (s *Server) Script(endpoint string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[endpoint] = append([]Response(nil), responses...)
}

// Hits returns how many requests endpoint received.
func (s *Server) Hits(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Endpoint == endpoint {
			n++
		}
	}
	return n
}

// Requests returns every recorded request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent request. It panics when there is none.
func (s *Server) Last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "*")
	body, _ := io.ReadAll(r.Body)
	resp, ok := s.next(Request{
		Method:   r.Method,
		Endpoint: endpoint,
		Query:    r.URL.Query(),
		Header:   r.Header.Clone(),
		Body:     body,
	})
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Not Found"}`)
		return
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if resp.Hijack {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}

	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

func (s *Server) next(req Request) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	queue, ok := s.scripts[req.Endpoint]
	if !ok || len(queue) == 0 {
		return Response{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		s.scripts[req.Endpoint] = queue[1:]
	}
	return resp, true
}
