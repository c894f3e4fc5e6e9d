package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrEmptyAddress = errors.New("address cannot be empty")

// Server serves /metrics for one Prometheus registry. Close may be called
// from any goroutine, before or after Run.
type Server struct {
	gatherer   prometheus.Gatherer
	httpServer *http.Server
}

// NewServer creates a server listening on addr
func NewServer(addr string, gatherer prometheus.Gatherer) (*Server, error) {
	if addr == "" {
		return nil, ErrEmptyAddress
	}
	s := &Server{gatherer: gatherer}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return router
}

// Run serves until ctx is cancelled or Close is called. It returns nil
// right away on a server that was already closed.
func (s *Server) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.httpServer.Close()
		case <-done:
		}
	}()

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close shuts down the server
func (s *Server) Close() error {
	return s.httpServer.Close()
}
