package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/pfrederiksen/gigmerge/internal/dedupe"
	"github.com/pfrederiksen/gigmerge/internal/logger"
	"github.com/pfrederiksen/gigmerge/internal/venue"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "GIGMERGE_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"gigmerge.yaml",
	"gigmerge.yml",
	"~/.config/gigmerge/config.yaml",
}

// Config holds every setting of a run.
type Config struct {
	// DataDir holds the raw input, the processed catalog and the snapshot.
	DataDir string `koanf:"data_dir" validate:"required"`

	// RawFile is the scraper output, relative to DataDir unless absolute.
	RawFile string `koanf:"raw_file" validate:"required"`

	// RegistryPath replaces the embedded venue registry when set.
	RegistryPath string `koanf:"registry_path"`

	Workers        int  `koanf:"workers" validate:"gte=0,lte=256"`
	DropPastEvents bool `koanf:"drop_past_events"`

	Logging LoggingConfig        `koanf:"logging"`
	Detect  dedupe.DetectOptions `koanf:"detect"`
	Merge   dedupe.MergeOptions  `koanf:"merge"`
	Venues  VenuesConfig         `koanf:"venues"`
	Metrics MetricsConfig        `koanf:"metrics"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// VenuesConfig tunes venue display.
type VenuesConfig struct {
	// DefaultState is omitted from formatted locations.
	DefaultState string `koanf:"default_state" validate:"len=2,alpha"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written after each run when set.
	Textfile string `koanf:"textfile"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:        "data",
		RawFile:        "raw_concerts.json",
		Workers:        4,
		DropPastEvents: true,
		Logging: LoggingConfig{
			Level:  string(logger.LevelInfo),
			Format: logger.FormatJSON,
		},
		Detect: dedupe.DefaultDetectOptions(),
		Merge:  dedupe.DefaultMergeOptions(),
		Venues: VenuesConfig{
			DefaultState: venue.DefaultState,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load layers the defaults, an optional YAML file and GIGMERGE_*
// environment variables, in that order of precedence. An empty path
// searches GIGMERGE_CONFIG and then DefaultConfigPaths; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(expandHome(path)); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(expandHome(path)), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(expandHome(envPath)); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(expandHome(path)); err == nil {
			return path
		}
	}
	return ""
}

var validate = validator.New()

// Validate checks field constraints and the log level.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// RawPath is RawFile resolved against DataDir.
func (c *Config) RawPath() string {
	if filepath.IsAbs(c.RawFile) {
		return c.RawFile
	}
	return filepath.Join(expandHome(c.DataDir), c.RawFile)
}

// LoggerConfig converts the logging section for logger.NewWithConfig.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Logging.Level, Format: c.Logging.Format}
}

var envMappings = map[string]string{
	"data_dir":         "data_dir",
	"raw_file":         "raw_file",
	"registry_path":    "registry_path",
	"workers":          "workers",
	"drop_past_events": "drop_past_events",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"venue_threshold":     "detect.venue_threshold",
	"headliner_threshold": "detect.headliner_threshold",
	"support_threshold":   "detect.support_threshold",
	"time_tolerance":      "detect.time_tolerance",
	"min_checks":          "detect.min_checks",

	"act_threshold": "merge.act_threshold",

	"default_state": "venues.default_state",

	"metrics_textfile": "metrics.textfile",
}

// envTransformFunc maps GIGMERGE_LOG_LEVEL to logging.level and so on.
// Unknown variables are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
