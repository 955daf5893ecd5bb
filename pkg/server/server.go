// Package server exposes the latest probe outcomes over HTTP: a JSON API
// and a Prometheus scrape endpoint. It is fed by the poller through the
// poller.Observer interface and never probes anything itself.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kylerisse/hostalive/pkg/check"
	"github.com/kylerisse/hostalive/pkg/host"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// Server represents the status server
type Server struct {
	hosts      []host.Host
	statuses   map[string]*check.Status
	listenAddr string
	logger     *logrus.Logger
	limiter    *rate.Limiter
	metrics    *metrics
}

// NewServer creates a status server for the given hosts. The set of hosts
// is fixed; results for unknown hosts are ignored.
func NewServer(listenAddr string, hosts []host.Host, logger *logrus.Logger) *Server {
	statuses := make(map[string]*check.Status, len(hosts))
	for _, h := range hosts {
		statuses[h.Name] = check.NewStatus()
	}

	return &Server{
		hosts:      hosts,
		statuses:   statuses,
		listenAddr: listenAddr,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(20), 50),
		metrics:    newMetrics(prometheus.NewRegistry(), hosts),
	}
}

// ObserveProbe records the latest probe result for a host.
func (s *Server) ObserveProbe(h host.Host, result check.Result) {
	status, ok := s.statuses[h.Name]
	if !ok {
		s.logger.Debugf("Ignoring result for unknown host %s", h.Name)
		return
	}
	status.SetResult(result)
	s.metrics.observeProbe(h, result)
}

// ObserveWrite records the outcome of a batched write.
func (s *Server) ObserveWrite(result sink.WriteResult) {
	s.metrics.observeWrite(result)
}

// ListenAndServe serves HTTP until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting status server on %v...", s.listenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down status server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
