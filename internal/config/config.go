package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JairoTorregrosa/picopala/internal/cmdfilter"
)

// Config represents the complete picopala configuration
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Approval ApprovalConfig `mapstructure:"approval" yaml:"approval"`
	Reviewer ReviewerConfig `mapstructure:"reviewer" yaml:"reviewer"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

// LoggingConfig controls the debug log file
type LoggingConfig struct {
	// Enabled turns on logging to {Dir}/picopala.log (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum level written: debug, info, warn, error (default: info)
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory. Empty means {approval.state_dir}/logs.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the size at which the log is rotated; 0 disables rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is how many rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// ApprovalConfig controls the task completion gate
type ApprovalConfig struct {
	// StateDir holds one directory of approval markers per team
	// (default: ~/.claude/picopala-state)
	StateDir string `mapstructure:"state_dir" yaml:"state_dir"`
	// TeamPrefix selects the teams the gate applies to (default: "picopala-")
	TeamPrefix string `mapstructure:"team_prefix" yaml:"team_prefix"`
}

// ReviewerConfig controls the reviewer shell command filter
type ReviewerConfig struct {
	// AllowedPrefixes are the command prefixes a reviewer may run.
	AllowedPrefixes []string `mapstructure:"allowed_prefixes" yaml:"allowed_prefixes"`
}

// OutputConfig controls command output
type OutputConfig struct {
	// WavesFormat is the default format of the waves command: json or yaml (default: json)
	WavesFormat string `mapstructure:"waves_format" yaml:"waves_format"`
}

// WatchConfig controls the plan watcher
type WatchConfig struct {
	// DebounceMs coalesces bursts of file events (default: 200)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  5,
			MaxBackups: 3,
			Compress:   false,
		},
		Approval: ApprovalConfig{
			StateDir:   filepath.Join("~", ".claude", "picopala-state"),
			TeamPrefix: "picopala-",
		},
		Reviewer: ReviewerConfig{
			AllowedPrefixes: cmdfilter.DefaultPrefixes(),
		},
		Output: OutputConfig{
			WavesFormat: "json",
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// Debounce returns the watch debounce interval as a time.Duration
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ResolvedStateDir returns StateDir with a leading ~ expanded.
func (c *ApprovalConfig) ResolvedStateDir() string {
	return expandHome(c.StateDir)
}

// ResolvedLogDir returns the log directory, falling back to a logs directory
// inside the approval state directory.
func (c *Config) ResolvedLogDir() string {
	if c.Logging.Dir != "" {
		return expandHome(c.Logging.Dir)
	}
	return filepath.Join(c.Approval.ResolvedStateDir(), "logs")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// Approval defaults
	v.SetDefault("approval.state_dir", defaults.Approval.StateDir)
	v.SetDefault("approval.team_prefix", defaults.Approval.TeamPrefix)

	// Reviewer defaults
	v.SetDefault("reviewer.allowed_prefixes", defaults.Reviewer.AllowedPrefixes)

	// Output defaults
	v.SetDefault("output.waves_format", defaults.Output.WavesFormat)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// New returns a viper instance with defaults registered, environment
// overrides enabled under the PICOPALA_ prefix, and the config search path
// set. It does not read any file.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("PICOPALA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	return v
}

// ReadInConfig reads the config file into v. An explicit file must exist;
// without one the user config is tried, then ./.picopala.yaml. Finding no
// file at all is not an error.
func ReadInConfig(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
		return v.ReadInConfig()
	}

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
		return err
	}

	if _, statErr := os.Stat(LocalConfigFile); statErr != nil {
		return nil
	}
	v.SetConfigFile(LocalConfigFile)
	return v.ReadInConfig()
}

// LocalConfigFile is the per-project config file name.
const LocalConfigFile = ".picopala.yaml"

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "picopala")
	}
	// Fall back to ~/.config/picopala
	home, err := os.UserHomeDir()
	if err != nil {
		return ".picopala"
	}
	return filepath.Join(home, ".config", "picopala")
}

// ConfigFile returns the path to the user config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
