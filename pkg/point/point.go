// Package point converts probe outcomes into time-series points.
package point

import "github.com/kylerisse/hostalive/pkg/host"

// Measurement is the measurement name every liveness point is written under.
const Measurement = "ping"

// Point is a single time-series record. It carries no timestamp; the
// database stamps it on receipt.
type Point struct {
	Measurement string            `json:"measurement"`
	Tags        map[string]string `json:"tags"`
	Fields      map[string]any    `json:"fields"`
}

// Build returns the liveness point for a host. The value field is 1 when
// the host answered and 0 otherwise.
func Build(h host.Host, alive bool) Point {
	value := 0
	if alive {
		value = 1
	}
	return Point{
		Measurement: Measurement,
		Tags: map[string]string{
			"id":    h.Name,
			"label": h.Name,
		},
		Fields: map[string]any{
			"value": value,
		},
	}
}
