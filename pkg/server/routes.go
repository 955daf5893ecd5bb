package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the full HTTP handler stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api", s.handleAPI)
	mux.HandleFunc("/api/hosts/{hostname}", s.handleHostAPI)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	rl := newRateLimitMiddleware(s.limiter)
	return requireGET(rl(noCacheMiddleware(mux)))
}
