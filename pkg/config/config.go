// Package config loads the JSON configuration file describing the hosts
// to probe and the InfluxDB database to write to.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/kylerisse/hostalive/pkg/host"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// DefaultPath is where the configuration is read from when no path is given.
const DefaultPath = "/etc/hostalive2influxdb.json"

// Config is the full runtime configuration.
type Config struct {
	Hosts    []host.Host    `mapstructure:"hosts"`
	InfluxDB InfluxDBConfig `mapstructure:"influxdb"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Listen   string         `mapstructure:"listen"`
}

// InfluxDBConfig holds the sink connection parameters.
type InfluxDBConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	User    string        `mapstructure:"user"`
	Pass    string        `mapstructure:"pass"`
	Base    string        `mapstructure:"base"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Sink converts the file representation into sink connection parameters.
func (c InfluxDBConfig) Sink() sink.InfluxDBConfig {
	return sink.InfluxDBConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.User,
		Password: c.Pass,
		Database: c.Base,
		Timeout:  c.Timeout,
	}
}

// ProbeConfig tunes the ping invocation.
type ProbeConfig struct {
	TTL     int           `mapstructure:"ttl"`
	Timeout time.Duration `mapstructure:"timeout"`
	Command string        `mapstructure:"command"`
}

// LoadError is returned when the configuration cannot be read, parsed or
// validated.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load configuration %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, &LoadError{Path: path, Err: errors.Wrap(err, "read")}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &LoadError{Path: path, Err: errors.Wrap(err, "decode")}
	}

	if err := validate(&cfg); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("influxdb.port", sink.DefaultPort)
	v.SetDefault("probe.ttl", 64)
	v.SetDefault("probe.command", "ping")
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Hosts))
	for i, h := range cfg.Hosts {
		if h.Name == "" {
			return errors.Errorf("hosts[%d]: name is required", i)
		}
		if seen[h.Name] {
			return errors.Errorf("hosts[%d]: duplicate name %q", i, h.Name)
		}
		seen[h.Name] = true
	}

	if len(cfg.Hosts) > 0 {
		if cfg.InfluxDB.Host == "" {
			return errors.New("influxdb.host is required")
		}
		if cfg.InfluxDB.Base == "" {
			return errors.New("influxdb.base is required")
		}
	}

	if cfg.InfluxDB.Port < 1 || cfg.InfluxDB.Port > 65535 {
		return errors.Errorf("influxdb.port out of range: %d", cfg.InfluxDB.Port)
	}
	if cfg.Probe.TTL < 1 || cfg.Probe.TTL > 255 {
		return errors.Errorf("probe.ttl must be between 1 and 255, got %d", cfg.Probe.TTL)
	}
	if cfg.Probe.Timeout < 0 {
		return errors.Errorf("probe.timeout must not be negative, got %v", cfg.Probe.Timeout)
	}
	return nil
}
