package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	cfg, err := Load(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MSMOutputMode != MSMOutputLegacy {
		t.Fatalf("got MSMOutputMode=%v, want MSMOutputLegacy", cfg.MSMOutputMode)
	}
	if len(cfg.TimeTruthSourcesEnabled) != 2 {
		t.Fatalf("got %d default sources, want 2", len(cfg.TimeTruthSourcesEnabled))
	}
}

func TestLoadParsesRecognizedFields(t *testing.T) {
	body := `{
		"msm_output_mode": 2,
		"gps_week_reference": 2300,
		"user_leap_seconds": 18,
		"time_truth_sources_enabled": ["LOCAL"],
		"verbosity_level": 1
	}`
	cfg, err := Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MSMOutputMode != MSMOutputMSM5 {
		t.Fatalf("got MSMOutputMode=%v, want MSMOutputMSM5", cfg.MSMOutputMode)
	}
	if cfg.GPSWeekReference != 2300 {
		t.Fatalf("got GPSWeekReference=%d, want 2300", cfg.GPSWeekReference)
	}
	if cfg.UserLeapSeconds == nil || *cfg.UserLeapSeconds != 18 {
		t.Fatalf("got UserLeapSeconds=%v, want 18", cfg.UserLeapSeconds)
	}
	if cfg.VerbosityLevel != VerbosityInfo {
		t.Fatalf("got VerbosityLevel=%v, want VerbosityInfo", cfg.VerbosityLevel)
	}
}

func TestLoadRejectsOutOfRangeMSMOutputMode(t *testing.T) {
	_, err := Load(strings.NewReader(`{"msm_output_mode": 9}`))
	if err == nil {
		t.Fatal("expected validation error for out-of-range msm_output_mode")
	}
}

func TestLoadRejectsUnknownTimeTruthSource(t *testing.T) {
	_, err := Load(strings.NewReader(`{"time_truth_sources_enabled": ["BOGUS"]}`))
	if err == nil {
		t.Fatal("expected validation error for unrecognized time truth source")
	}
}

func TestLoadRejectsOutOfRangeLeapSeconds(t *testing.T) {
	_, err := Load(strings.NewReader(`{"user_leap_seconds": 999}`))
	if err == nil {
		t.Fatal("expected validation error for out-of-range leap seconds")
	}
}

func TestTimeTruthSourcesConvertsNames(t *testing.T) {
	cfg := Default()
	cfg.TimeTruthSourcesEnabled = []string{"LOCAL", "REMOTE"}
	sources := cfg.TimeTruthSources()
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
}
