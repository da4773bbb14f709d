package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/timecat/models"
)

// StandardValidator provides standard configuration validation
type StandardValidator struct{}

// NewStandardValidator creates a new standard validator
func NewStandardValidator() *StandardValidator {
	return &StandardValidator{}
}

// Validate validates the entire configuration
func (v *StandardValidator) Validate(cfg *Config) error {
	var errs []string

	if err := v.validateApp(&cfg.App); err != nil {
		errs = append(errs, fmt.Sprintf("app: %v", err))
	}
	if err := v.validateTracking(&cfg.Tracking); err != nil {
		errs = append(errs, fmt.Sprintf("tracking: %v", err))
	}
	if err := v.validateData(&cfg.Data); err != nil {
		errs = append(errs, fmt.Sprintf("data: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (v *StandardValidator) validateApp(app *AppConfig) error {
	switch strings.ToLower(app.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", app.LogLevel)
	}

	if app.LogFile != "" {
		dir := filepath.Dir(os.ExpandEnv(app.LogFile))
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return fmt.Errorf("log file directory %s is not a directory", dir)
		}
	}
	return nil
}

func (v *StandardValidator) validateTracking(t *TrackingConfig) error {
	if t.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if t.PollInterval < models.MinPollInterval || t.PollInterval > models.MaxPollInterval {
		return fmt.Errorf("poll interval %s outside [%s, %s]",
			t.PollInterval, models.MinPollInterval, models.MaxPollInterval)
	}
	if t.IdleThreshold <= 0 {
		return fmt.Errorf("idle threshold must be positive, got %v", t.IdleThreshold)
	}
	if t.ReplayFile != "" {
		if _, err := os.Stat(os.ExpandEnv(t.ReplayFile)); err != nil {
			return fmt.Errorf("replay file %s: %w", t.ReplayFile, err)
		}
	}
	return nil
}

func (v *StandardValidator) validateData(d *DataConfig) error {
	if d.BucketDir == "" {
		return fmt.Errorf("bucket_dir must not be empty")
	}
	if d.ReportsDir == "" {
		return fmt.Errorf("reports_dir must not be empty")
	}
	return nil
}
