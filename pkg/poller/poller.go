// Package poller runs the polling loop: probe every configured host in
// order, turn the outcomes into points and hand the batch to a sink, then
// wait and repeat.
//
// Everything happens on the calling goroutine. A slow probe delays the
// whole cycle, and a failed write only costs that cycle's batch.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kylerisse/hostalive/pkg/check"
	"github.com/kylerisse/hostalive/pkg/host"
	"github.com/kylerisse/hostalive/pkg/point"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// Target pairs a configured host with the check used to probe it.
type Target struct {
	Host  host.Host
	Check check.Check
}

// ProbeResult is the outcome of probing one host during a cycle.
type ProbeResult struct {
	Host   host.Host
	Result check.Result
}

// Alive reports whether the host answered.
func (r ProbeResult) Alive() bool {
	return r.Result.Success
}

// Observer is notified of every probe and every write attempt.
// Implementations must not block.
type Observer interface {
	ObserveProbe(h host.Host, result check.Result)
	ObserveWrite(result sink.WriteResult)
}

// Poller drives the periodic probe-and-write cycle.
type Poller struct {
	targets  []Target
	sink     sink.Sink
	interval time.Duration
	logger   *logrus.Logger
	observer Observer
}

// Option is a functional option for configuring a Poller.
type Option func(*Poller)

// WithObserver registers an observer for probe and write outcomes.
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// New creates a Poller. Targets are probed in the order given.
func New(targets []Target, s sink.Sink, interval time.Duration, logger *logrus.Logger, opts ...Option) (*Poller, error) {
	if s == nil {
		return nil, fmt.Errorf("poller: sink must not be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poller: interval must be positive, got %v", interval)
	}
	for _, t := range targets {
		if t.Check == nil {
			return nil, fmt.Errorf("poller: host %s has no check", t.Host.Name)
		}
	}

	p := &Poller{
		targets:  targets,
		sink:     s,
		interval: interval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProbeAll runs every target's check sequentially and returns the
// outcomes in target order.
func ProbeAll(ctx context.Context, targets []Target, logger *logrus.Logger) []ProbeResult {
	results := make([]ProbeResult, 0, len(targets))
	for _, t := range targets {
		logger.Debugf("Send ping to %s (%s)", t.Host.Name, t.Host.Target())

		result := t.Check.Run(ctx)
		if result.Success {
			logger.Debugf("Host %s is alive", t.Host.Name)
		} else {
			logger.Debugf("Host %s is down (%v)", t.Host.Name, result.Err)
		}

		results = append(results, ProbeResult{Host: t.Host, Result: result})
	}
	return results
}

// Points converts probe outcomes into one point per host, in order.
func Points(results []ProbeResult) []point.Point {
	points := make([]point.Point, 0, len(results))
	for _, r := range results {
		points = append(points, point.Build(r.Host, r.Alive()))
	}
	return points
}

// Cycle probes every host once and writes the resulting batch.
// It returns false when the write failed. With no hosts configured the
// sink is not called.
func (p *Poller) Cycle(ctx context.Context) bool {
	results := ProbeAll(ctx, p.targets, p.logger)
	if p.observer != nil {
		for _, r := range results {
			p.observer.ObserveProbe(r.Host, r.Result)
		}
	}

	if len(results) == 0 {
		return true
	}

	// probes killed by shutdown would otherwise be recorded as down
	if ctx.Err() != nil {
		p.logger.Debug("Cycle interrupted, skipping write")
		return false
	}

	points := Points(results)
	res := p.sink.Write(ctx, points)
	if p.observer != nil {
		p.observer.ObserveWrite(res)
	}
	if !res.OK() {
		p.logger.WithError(res.Err).Errorf("Unable to write %d point(s)", len(points))
		return false
	}
	return true
}

// Run repeats Cycle every interval until ctx is cancelled. Failed cycles
// are logged and never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Infof("Polling %d host(s) every %v", len(p.targets), p.interval)

	for {
		if !p.Cycle(ctx) {
			p.logger.Warn("Error while updating data")
		}

		p.logger.Debugf("Waiting %v before next update", p.interval)
		select {
		case <-ctx.Done():
			p.logger.Info("Polling stopped.")
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
