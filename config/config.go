package config

import (
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/penwyp/timecat/models"
)

// Config represents the complete application configuration
type Config struct {
	// Application
	App AppConfig `yaml:"app" json:"app" mapstructure:"app"`

	// Tracking loop
	Tracking TrackingConfig `yaml:"tracking" json:"tracking" mapstructure:"tracking"`

	// Data locations
	Data DataConfig `yaml:"data" json:"data" mapstructure:"data"`

	// Merge ledger
	Ledger LedgerConfig `yaml:"ledger" json:"ledger" mapstructure:"ledger"`

	// Debug
	Debug DebugConfig `yaml:"debug" json:"debug" mapstructure:"debug"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Version  string `yaml:"version" json:"version" mapstructure:"version"`
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file" mapstructure:"log_file"`
	Verbose  bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// TrackingConfig contains poll-loop and segmentation settings
type TrackingConfig struct {
	User          string        `yaml:"user" json:"user" mapstructure:"user"`
	PollInterval  time.Duration `yaml:"poll_interval" json:"poll_interval" mapstructure:"poll_interval"`
	IdleThreshold float64       `yaml:"idle_threshold" json:"idle_threshold" mapstructure:"idle_threshold"` // seconds
	ReplayFile    string        `yaml:"replay_file" json:"replay_file" mapstructure:"replay_file"`
}

// DataConfig contains bucket and aggregate file locations
type DataConfig struct {
	BucketDir  string `yaml:"bucket_dir" json:"bucket_dir" mapstructure:"bucket_dir"`
	ReportsDir string `yaml:"reports_dir" json:"reports_dir" mapstructure:"reports_dir"`
}

// LedgerConfig controls the merge audit ledger
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" json:"path" mapstructure:"path"`
}

// DebugConfig contains debugging settings
type DebugConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// Format represents configuration file format
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

// ConfigPaths returns the default configuration file paths in order of precedence
func ConfigPaths() []string {
	return []string{
		"./timecat.yaml",
		"$HOME/.config/timecat/config.yaml",
		"$HOME/.timecat/config.yaml",
		"/etc/timecat/config.yaml",
	}
}

// Version will be set at build time
var Version = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "timecat",
			Version:  Version,
			LogLevel: "info",
			LogFile:  "",
		},
		Tracking: TrackingConfig{
			User:          currentUser(),
			PollInterval:  models.DefaultPollInterval,
			IdleThreshold: models.IdleThreshold,
		},
		Data: DataConfig{
			BucketDir:  ".",
			ReportsDir: defaultReportsDir(),
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    defaultLedgerPath(),
		},
		Debug: DebugConfig{
			Enabled: false,
		},
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return filepath.Base(u.Username) // strip DOMAIN\ prefixes
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return models.UnknownUser
}

func defaultReportsDir() string {
	return filepath.Join(".", "yearly_reports")
}

func defaultLedgerPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".timecat-ledger")
	}
	return filepath.Join(homeDir, ".cache", "timecat", "ledger")
}
