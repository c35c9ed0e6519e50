// Package config loads qrwlock's process-wide diagnostics settings:
// logging level/format, whether to wire a Prometheus sink, and a
// detector flag that Apply only warns about. The sync-over-async bounds
// are compile-time constants in package qrwlock and are not configured
// here. Grounded on the teacher's config/config.go YAML +
// env-tag convention.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mantisdb-labs/qrwlock"
)

// Config holds qrwlock's ambient configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Detector  DetectorConfig  `yaml:"detector"`
}

// LoggingConfig controls the logrus logger qrwlock warns through.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"QRWLOCK_LOG_LEVEL"`
	Format string `yaml:"format" env:"QRWLOCK_LOG_FORMAT"`
}

// TelemetryConfig controls whether guarded operations report to
// Prometheus.
type TelemetryConfig struct {
	Enabled   bool   `yaml:"enabled" env:"QRWLOCK_TELEMETRY_ENABLED"`
	Namespace string `yaml:"namespace" env:"QRWLOCK_TELEMETRY_NAMESPACE"`
}

// DetectorConfig documents the deadlock detector's behavior. Enabled
// exists for operators' reference: the detector cannot actually be
// disabled per-process without losing the guarantee every primitive's
// API promises, so Apply logs a warning rather than honoring false.
type DetectorConfig struct {
	Enabled bool `yaml:"enabled" env:"QRWLOCK_DETECTOR_ENABLED"`
}

// DefaultConfig returns qrwlock's out-of-the-box settings: info-level
// text logging, telemetry off, detector on.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Enabled:   false,
			Namespace: "qrwlock",
		},
		Detector: DetectorConfig{
			Enabled: true,
		},
	}
}

// LoadFromEnv overlays environment variables onto c.
func (c *Config) LoadFromEnv() error {
	if level := os.Getenv("QRWLOCK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("QRWLOCK_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if enabled := os.Getenv("QRWLOCK_TELEMETRY_ENABLED"); enabled != "" {
		c.Telemetry.Enabled = strings.ToLower(enabled) == "true"
	}
	if ns := os.Getenv("QRWLOCK_TELEMETRY_NAMESPACE"); ns != "" {
		c.Telemetry.Namespace = ns
	}
	if enabled := os.Getenv("QRWLOCK_DETECTOR_ENABLED"); enabled != "" {
		c.Detector.Enabled = strings.ToLower(enabled) == "true"
	}
	return nil
}

// Validate rejects settings Apply couldn't act on sensibly.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	return nil
}

// Apply wires c into the running process: it installs a logrus logger
// at the configured level/format as qrwlock's logger, and, if telemetry
// is enabled, registers a Prometheus sink as qrwlock's default sink.
func (c *Config) Apply(reg prometheus.Registerer) error {
	if !c.Detector.Enabled {
		logrus.Warn("qrwlock: detector.enabled=false has no effect; deadlock checking cannot be disabled per-process")
	}

	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	l := logrus.New()
	l.SetLevel(level)
	if strings.ToLower(c.Logging.Format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{})
	}
	qrwlock.SetLogger(l)

	if c.Telemetry.Enabled {
		qrwlock.DefaultSink = qrwlock.NewPrometheusSink(reg)
	}
	return nil
}
