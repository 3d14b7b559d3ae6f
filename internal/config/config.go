// Package config defines process configuration and its loading hooks.
//
// Conventions:
//   - New() builds a Config holding defaults.
//   - Load(ctx) layers a YAML file and MOVESTAT_* env vars over the defaults.
//   - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Time modes accepted by TimeMode.
const (
	TimeModeFrame  = "frame"
	TimeModeWindow = "window"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// DataDir is the root of the SkillCorner open-data tree (holds matches.json).
	DataDir string `koanf:"data_dir"`

	// MatchIDs restricts the run to these matches; empty means every indexed match.
	MatchIDs []int64 `koanf:"match_ids"`

	// Window is the number of frames spanned by one displacement estimate.
	Window int `koanf:"window"`

	// FrameDuration is the nominal seconds between consecutive frames.
	FrameDuration float64 `koanf:"frame_duration"`

	// ContinuitySlack is added to the nominal window duration before the
	// elapsed-time continuity predicate rejects a span.
	ContinuitySlack float64 `koanf:"continuity_slack"`

	// TimeMode selects the time credited per estimate: "window" (window
	// duration) or "frame" (one frame duration, only with window 1).
	TimeMode string `koanf:"time_mode"`

	// Tolerance bounds partition reconciliation discrepancies.
	Tolerance float64 `koanf:"tolerance"`

	// WorkerCount sets how many matches are processed concurrently.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the match job queue.
	QueueSize int `koanf:"queue_size"`

	// FailFast aborts the whole run on the first failed match.
	FailFast bool `koanf:"fail_fast"`

	// Output is an optional export path; the extension picks csv or json.
	Output string `koanf:"output"`

	// DBPath is an optional sqlite file for persisting records.
	DBPath string `koanf:"db_path"`

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsEnabled turns metric recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// Addr, when set, serves the read API after the run, e.g. ":9080".
	Addr string `koanf:"addr"`
}

// New creates a Config holding defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		DataDir:         "opendata/data",
		Window:          10,
		FrameDuration:   0.1,
		ContinuitySlack: 0.001,
		TimeMode:        TimeModeWindow,
		Tolerance:       1.0,
		WorkerCount:     runtime.NumCPU(),
		QueueSize:       64,

		MetricsNamespace: "movestat",
		MetricsEnabled:   true,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DataDir) == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.Window < 1:
		return fmt.Errorf("%w: window must be >= 1, got %d", ErrInvalidConfig, c.Window)
	case c.FrameDuration <= 0:
		return fmt.Errorf("%w: frame_duration must be > 0, got %g", ErrInvalidConfig, c.FrameDuration)
	case c.ContinuitySlack < 0:
		return fmt.Errorf("%w: continuity_slack must be >= 0, got %g", ErrInvalidConfig, c.ContinuitySlack)
	case strings.TrimSpace(c.MetricsNamespace) == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	case c.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must be >= 0, got %g", ErrInvalidConfig, c.Tolerance)
	}
	switch c.TimeMode {
	case TimeModeFrame, TimeModeWindow:
	default:
		return fmt.Errorf("%w: unknown time_mode %q", ErrInvalidConfig, c.TimeMode)
	}
	if c.TimeMode == TimeModeFrame && c.Window != 1 {
		return fmt.Errorf("%w: time_mode %q needs window 1, got %d", ErrInvalidConfig, c.TimeMode, c.Window)
	}
	return nil
}
