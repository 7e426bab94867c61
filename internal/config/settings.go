// Package config loads engine settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the tunable knobs of the reconciliation engine.
type Settings struct {
	ListenAddr   string `yaml:"listen_addr"`
	DBPath       string `yaml:"db_path"`
	ForecastAddr string `yaml:"forecast_addr"`

	PreviewDebounceMS int `yaml:"preview_debounce_ms"`
	SuggestDebounceMS int `yaml:"suggest_debounce_ms"`
	RequestTimeoutMS  int `yaml:"request_timeout_ms"`

	// DisplayLimit caps how many blocking issues are surfaced at once.
	DisplayLimit int `yaml:"display_limit"`

	Limits Limits `yaml:"limits"`
}

// Limits are the system-wide safety ceilings quick fixes clamp to.
type Limits struct {
	WeeklyTSSRampCeiling float64 `yaml:"weekly_tss_ramp_ceiling"`
	WeeklyCTLRampCeiling float64 `yaml:"weekly_ctl_ramp_ceiling"`
	MinPrepDays          int     `yaml:"min_prep_days"`
}

// Default returns the settings used when no file overrides them.
func Default() Settings {
	return Settings{
		ListenAddr:        ":8087",
		DBPath:            "plan_session.db",
		ForecastAddr:      "http://localhost:8090",
		PreviewDebounceMS: 350,
		SuggestDebounceMS: 500,
		RequestTimeoutMS:  10000,
		DisplayLimit:      3,
		Limits: Limits{
			WeeklyTSSRampCeiling: 50,
			WeeklyCTLRampCeiling: 5,
			MinPrepDays:          14,
		},
	}
}

// Load reads a YAML settings file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.PreviewDebounceMS <= 0 || s.SuggestDebounceMS <= 0 {
		return fmt.Errorf("debounce intervals must be positive")
	}
	if s.DisplayLimit <= 0 {
		return fmt.Errorf("display_limit must be positive")
	}
	if s.Limits.MinPrepDays < 0 {
		return fmt.Errorf("min_prep_days must not be negative")
	}
	return nil
}

// PreviewDebounce returns the preview debounce as a duration.
func (s Settings) PreviewDebounce() time.Duration {
	return time.Duration(s.PreviewDebounceMS) * time.Millisecond
}

// SuggestDebounce returns the suggestion debounce as a duration.
func (s Settings) SuggestDebounce() time.Duration {
	return time.Duration(s.SuggestDebounceMS) * time.Millisecond
}

// RequestTimeout returns the collaborator request timeout as a duration.
func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMS) * time.Millisecond
}
