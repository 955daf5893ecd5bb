// Package ping implements a liveness check on top of the system ping command.
//
// A single echo request is sent with a bounded hop count. The check
// succeeds if and only if the ping process exits with status zero; an
// unreachable host, a malformed address and a failure to launch the
// command are all reported the same way, as "not alive".
package ping

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kylerisse/hostalive/pkg/check"
)

const (
	// TypeName is the name reported by Ping.Type.
	TypeName = "ping"

	// DefaultTTL is the default hop limit for the echo request.
	DefaultTTL = 64

	// DefaultCommand is the ping executable looked up on PATH.
	DefaultCommand = "ping"
)

// Ping implements check.Check using the system ping command.
type Ping struct {
	target  string
	ttl     int
	timeout time.Duration // zero leaves the deadline to the ping command
	command string
}

// New creates a Ping check with the given target and options.
func New(target string, opts ...Option) (*Ping, error) {
	if target == "" {
		return nil, fmt.Errorf("ping: target must not be empty")
	}

	p := &Ping{
		target:  target,
		ttl:     DefaultTTL,
		command: DefaultCommand,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("ping: %w", err)
		}
	}

	return p, nil
}

// Option is a functional option for configuring a Ping check.
type Option func(*Ping) error

// WithTTL sets the hop limit of the echo request.
func WithTTL(ttl int) Option {
	return func(p *Ping) error {
		if ttl < 1 || ttl > 255 {
			return fmt.Errorf("ttl must be between 1 and 255, got %d", ttl)
		}
		p.ttl = ttl
		return nil
	}
}

// WithTimeout sets how long ping waits for the reply. Without it the ping
// command's own default applies.
func WithTimeout(d time.Duration) Option {
	return func(p *Ping) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		p.timeout = d
		return nil
	}
}

// WithCommand replaces the ping executable.
func WithCommand(command string) Option {
	return func(p *Ping) error {
		if command == "" {
			return fmt.Errorf("command must not be empty")
		}
		p.command = command
		return nil
	}
}

// Type returns the check type name.
func (p *Ping) Type() string {
	return TypeName
}

// Target returns the address this check pings.
func (p *Ping) Target() string {
	return p.target
}

// args builds the command line: one IPv4 echo request, quiet output.
func (p *Ping) args() []string {
	args := []string{"-4", "-c", "1", "-t", strconv.Itoa(p.ttl), "-q"}
	if p.timeout > 0 {
		args = append(args, "-W", strconv.FormatFloat(p.timeout.Seconds(), 'f', -1, 64))
	}
	return append(args, p.target)
}

// Run executes the ping command and returns a Result.
// Success is decided by the exit status alone; the round-trip time is
// attached as latency_us when the summary line can be parsed.
func (p *Ping) Run(ctx context.Context) check.Result {
	now := time.Now()

	cmd := exec.CommandContext(ctx, p.command, p.args()...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return check.Result{
			Timestamp: now,
			Success:   false,
			Err:       fmt.Errorf("ping %s: %w", p.target, err),
		}
	}

	result := check.Result{
		Timestamp: now,
		Success:   true,
	}
	if rtt, err := parseSummary(out.String()); err == nil {
		result.Metrics = map[string]float64{
			"latency_us": float64(rtt.Microseconds()),
		}
	}
	return result
}

// parseSummary extracts the average round-trip time from the statistics
// line printed by ping -q, e.g.
//
//	rtt min/avg/max/mdev = 0.042/0.042/0.042/0.000 ms
//	round-trip min/avg/max/stddev = 0.046/0.046/0.046/0.000 ms
func parseSummary(output string) (time.Duration, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "min/avg/max") {
			continue
		}

		eq := strings.Index(line, "=")
		if eq == -1 {
			return 0, fmt.Errorf("malformed summary %q", line)
		}
		fields := strings.Fields(line[eq+1:])
		if len(fields) < 2 {
			return 0, fmt.Errorf("malformed summary %q", line)
		}

		values := strings.Split(fields[0], "/")
		if len(values) < 2 {
			return 0, fmt.Errorf("malformed summary %q", line)
		}
		avg, err := strconv.ParseFloat(values[1], 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse RTT %q: %w", values[1], err)
		}

		switch unit := fields[1]; unit {
		case "ms":
			return time.Duration(avg * float64(time.Millisecond)), nil
		case "us", "µs":
			return time.Duration(avg * float64(time.Microsecond)), nil
		case "s":
			return time.Duration(avg * float64(time.Second)), nil
		default:
			return 0, fmt.Errorf("could not determine time unit from %q", unit)
		}
	}
	return 0, fmt.Errorf("RTT summary not found in ping output")
}
