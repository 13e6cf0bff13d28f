// Package web provides an HTTP status server for the stopwatch daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sweeney/stopwatch/internal/status"
)

// Server serves the status page, the JSON status, metrics and the live
// websocket feed.
type Server struct {
	httpServer   *http.Server
	tracker      *status.Tracker
	liveInterval time.Duration

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a Server that reads state from the given tracker. metrics may
// be nil, in which case /metrics is not served. liveInterval is how often
// each websocket connection checks the tracker for a new state.
func New(addr string, tracker *status.Tracker, metrics http.Handler, liveInterval time.Duration) *Server {
	if liveInterval <= 0 {
		liveInterval = 250 * time.Millisecond
	}
	s := &Server{
		tracker:      tracker,
		liveInterval: liveInterval,
		quit:         make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/ws", s.handleLive)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	// Hijacked websocket connections are not closed by Shutdown.
	s.httpServer.RegisterOnShutdown(s.stopLive)
	return s
}

// Handler returns the server's routes. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server and closes live feeds.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) stopLive() {
	s.quitOnce.Do(func() { close(s.quit) })
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}
