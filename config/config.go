// Package config loads and validates the recognized session
// configuration options, using a JSON-file-plus-struct-tags shape with
// validation added via go-playground/validator.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/swift-nav/gnss-converters-go/timetruth"
)

// MSMOutputMode selects which RTCM observation messages a session emits
// when translating SBP observations to RTCM.
type MSMOutputMode int

const (
	// MSMOutputLegacy emits 1001-1004/1010/1012 (the "UNKNOWN" default).
	MSMOutputLegacy MSMOutputMode = iota
	MSMOutputMSM4
	MSMOutputMSM5
)

var validate = validator.New()

// Config holds the recognized session options. Zero-valued fields take
// their documented defaults (MSMOutputLegacy, VerbosityQuiet, no time
// overrides).
type Config struct {
	// MSMOutputMode selects legacy/MSM4/MSM5 RTCM observation output.
	MSMOutputMode MSMOutputMode `json:"msm_output_mode" validate:"gte=0,lte=2"`

	// GPSWeekReference seeds WN-rollover disambiguation when no other
	// time source is available yet.
	GPSWeekReference uint16 `json:"gps_week_reference"`

	// UserGPSTime, if set, overrides every other time source (§4.6
	// priority 1).
	UserGPSTime *time.Time `json:"user_gps_time,omitempty"`

	// UserLeapSeconds, if set, overrides the built-in leap-second
	// table and RTCM-1013 for as long as it's set.
	UserLeapSeconds *int `json:"user_leap_seconds,omitempty" validate:"omitempty,gte=0,lte=40"`

	// UnixTimeFunc, if set, is the priority-2 time source (§4.6): polled
	// for a unix-epoch second count ahead of Time Truth fusion, behind
	// only UserGPSTime. Not part of the JSON file shape - a caller wires
	// it in after loading, the same way a serial port or socket is
	// wired in outside the config file.
	UnixTimeFunc func() (int64, bool) `json:"-"`

	// TimeTruthSourcesEnabled lists which Time Truth sources this
	// session allocates estimators for.
	TimeTruthSourcesEnabled []string `json:"time_truth_sources_enabled" validate:"dive,oneof=LOCAL REMOTE"`

	// VerbosityLevel controls per-observation debug logging.
	VerbosityLevel VerbosityLevel `json:"verbosity_level" validate:"gte=0,lte=2"`
}

// VerbosityLevel is the enumerated logging verbosity §6 names.
type VerbosityLevel int

const (
	VerbosityQuiet VerbosityLevel = iota
	VerbosityInfo
	VerbosityDebug
)

// Default returns the zero-value configuration with its documented
// defaults made explicit.
func Default() Config {
	return Config{
		MSMOutputMode:           MSMOutputLegacy,
		GPSWeekReference:        0,
		TimeTruthSourcesEnabled: []string{"LOCAL", "REMOTE"},
		VerbosityLevel:          VerbosityQuiet,
	}
}

// LoadFile reads and validates a Config from a JSON file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads and validates a Config from r.
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read configuration: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse configuration: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

// TimeTruthSources converts the configured source names into
// timetruth.Source values for Pool allocation.
func (c *Config) TimeTruthSources() []timetruth.Source {
	sources := make([]timetruth.Source, 0, len(c.TimeTruthSourcesEnabled))
	for _, name := range c.TimeTruthSourcesEnabled {
		switch name {
		case "LOCAL":
			sources = append(sources, timetruth.SourceLocal)
		case "REMOTE":
			sources = append(sources, timetruth.SourceRemote)
		}
	}
	return sources
}
