package poller

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/kylerisse/hostalive/pkg/check"
	"github.com/kylerisse/hostalive/pkg/host"
	"github.com/kylerisse/hostalive/pkg/point"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// fakeCheck returns a fixed outcome and counts its runs.
type fakeCheck struct {
	alive bool
	runs  int
}

func (f *fakeCheck) Type() string { return "fake" }

func (f *fakeCheck) Run(_ context.Context) check.Result {
	f.runs++
	if f.alive {
		return check.Result{Timestamp: time.Now(), Success: true}
	}
	return check.Result{Timestamp: time.Now(), Err: errors.New("exit status 1")}
}

// fakeSink records every batch it receives.
type fakeSink struct {
	mu      sync.Mutex
	batches [][]point.Point
	err     error
	onWrite func(calls int)
}

func (f *fakeSink) Write(_ context.Context, points []point.Point) sink.WriteResult {
	f.mu.Lock()
	f.batches = append(f.batches, points)
	calls := len(f.batches)
	f.mu.Unlock()

	if f.onWrite != nil {
		f.onWrite(calls)
	}
	if f.err != nil {
		return sink.WriteResult{Err: &sink.WriteError{Points: len(points), Err: f.err}}
	}
	return sink.WriteResult{Written: len(points)}
}

func (f *fakeSink) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type recordingObserver struct {
	probes []string
	writes []sink.WriteResult
}

func (o *recordingObserver) ObserveProbe(h host.Host, _ check.Result) {
	o.probes = append(o.probes, h.Name)
}

func (o *recordingObserver) ObserveWrite(r sink.WriteResult) {
	o.writes = append(o.writes, r)
}

func quietLogger() *logrus.Logger {
	l, _ := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l
}

func target(name, address string, alive bool) Target {
	return Target{
		Host:  host.Host{Name: name, Address: address},
		Check: &fakeCheck{alive: alive},
	}
}

func TestNew_Validation(t *testing.T) {
	s := &fakeSink{}

	if _, err := New(nil, nil, time.Second, quietLogger()); err == nil {
		t.Error("expected error for nil sink")
	}
	if _, err := New(nil, s, 0, quietLogger()); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := New([]Target{{Host: host.Host{Name: "router"}}}, s, time.Second, quietLogger()); err == nil {
		t.Error("expected error for target without check")
	}
	if _, err := New(nil, s, time.Second, quietLogger()); err != nil {
		t.Errorf("unexpected error for empty target list: %v", err)
	}
}

func TestCycle_HostAlive(t *testing.T) {
	s := &fakeSink{}
	p, err := New([]Target{target("router", "10.0.0.1", true)}, s, time.Second, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !p.Cycle(context.Background()) {
		t.Fatal("expected successful cycle")
	}
	if s.calls() != 1 {
		t.Fatalf("expected 1 write, got %d", s.calls())
	}

	want := []point.Point{{
		Measurement: "ping",
		Tags:        map[string]string{"id": "router", "label": "router"},
		Fields:      map[string]any{"value": 1},
	}}
	if !reflect.DeepEqual(s.batches[0], want) {
		t.Errorf("expected batch %+v, got %+v", want, s.batches[0])
	}
}

func TestCycle_HostDown(t *testing.T) {
	s := &fakeSink{}
	p, _ := New([]Target{target("router", "10.0.0.1", false)}, s, time.Second, quietLogger())

	if !p.Cycle(context.Background()) {
		t.Fatal("a down host is not a failed cycle")
	}
	if got := s.batches[0][0].Fields["value"]; got != 0 {
		t.Errorf("expected value 0, got %v", got)
	}
}

func TestCycle_PreservesOrder(t *testing.T) {
	s := &fakeSink{}
	targets := []Target{
		target("router", "10.0.0.1", true),
		target("printer", "10.0.0.9", false),
		target("nas", "10.0.0.2", true),
	}
	p, _ := New(targets, s, time.Second, quietLogger())

	p.Cycle(context.Background())

	batch := s.batches[0]
	if len(batch) != 3 {
		t.Fatalf("expected 3 points, got %d", len(batch))
	}
	wantNames := []string{"router", "printer", "nas"}
	wantValues := []int{1, 0, 1}
	for i, pt := range batch {
		if pt.Tags["id"] != wantNames[i] || pt.Tags["label"] != wantNames[i] {
			t.Errorf("point %d: expected host %s, got %v", i, wantNames[i], pt.Tags)
		}
		if pt.Fields["value"] != wantValues[i] {
			t.Errorf("point %d: expected value %d, got %v", i, wantValues[i], pt.Fields["value"])
		}
	}
	for i, tg := range targets {
		if runs := tg.Check.(*fakeCheck).runs; runs != 1 {
			t.Errorf("target %d: expected 1 probe, got %d", i, runs)
		}
	}
}

func TestCycle_NoHostsSkipsSink(t *testing.T) {
	s := &fakeSink{}
	p, _ := New(nil, s, time.Second, quietLogger())

	if !p.Cycle(context.Background()) {
		t.Error("expected empty cycle to succeed")
	}
	if s.calls() != 0 {
		t.Errorf("expected sink not to be called, got %d calls", s.calls())
	}
}

func TestCycle_SinkFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := &fakeSink{err: errors.New("connection refused")}
	p, _ := New([]Target{target("router", "10.0.0.1", true)}, s, time.Second, logger)

	if p.Cycle(context.Background()) {
		t.Error("expected failed cycle when the sink fails")
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected an error log entry, got %+v", entry)
	}
	if entry.Data[logrus.ErrorKey] == nil {
		t.Error("expected the write error attached to the log entry")
	}
}

func TestCycle_CancelledSkipsWrite(t *testing.T) {
	s := &fakeSink{}
	p, _ := New([]Target{target("router", "10.0.0.1", false)}, s, time.Second, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if p.Cycle(ctx) {
		t.Error("expected interrupted cycle to report failure")
	}
	if s.calls() != 0 {
		t.Errorf("expected no write after cancellation, got %d", s.calls())
	}
}

func TestCycle_Observer(t *testing.T) {
	obs := &recordingObserver{}
	s := &fakeSink{}
	targets := []Target{
		target("router", "10.0.0.1", true),
		target("nas", "10.0.0.2", false),
	}
	p, _ := New(targets, s, time.Second, quietLogger(), WithObserver(obs))

	p.Cycle(context.Background())

	if !reflect.DeepEqual(obs.probes, []string{"router", "nas"}) {
		t.Errorf("expected probes [router nas], got %v", obs.probes)
	}
	if len(obs.writes) != 1 || obs.writes[0].Written != 2 {
		t.Errorf("expected one write of 2 points, got %+v", obs.writes)
	}
}

func TestRun_ContinuesAfterFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &fakeSink{err: errors.New("authorization failed")}
	s.onWrite = func(calls int) {
		if calls == 3 {
			cancel()
		}
	}

	p, _ := New([]Target{target("router", "10.0.0.1", true)}, s, time.Millisecond, logger)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if s.calls() != 3 {
		t.Errorf("expected 3 write attempts, got %d", s.calls())
	}

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 3 {
		t.Errorf("expected 3 warnings, got %d", warnings)
	}
}

func TestRun_WaitsBetweenCycles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &fakeSink{}
	p, _ := New([]Target{target("router", "10.0.0.1", true)}, s, time.Hour, quietLogger())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// the first cycle runs immediately, the second only after an hour
	deadline := time.Now().Add(5 * time.Second)
	for s.calls() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if s.calls() != 1 {
		t.Errorf("expected exactly 1 cycle before the interval elapsed, got %d", s.calls())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPoints(t *testing.T) {
	results := []ProbeResult{
		{Host: host.Host{Name: "a"}, Result: check.Result{Success: true}},
		{Host: host.Host{Name: "b"}, Result: check.Result{Success: false}},
	}

	points := Points(results)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	for i, pt := range points {
		v := pt.Fields["value"]
		if v != 0 && v != 1 {
			t.Errorf("point %d: value %v not in {0,1}", i, v)
		}
	}
	if points[0].Fields["value"] != 1 || points[1].Fields["value"] != 0 {
		t.Errorf("unexpected values: %v, %v", points[0].Fields, points[1].Fields)
	}
}
