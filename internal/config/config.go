package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Groups    []GroupConfig   `yaml:"groups" ignored:"true" validate:"required,min=1,dive"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourceConfig describes the measurement table and how to read it.
type SourceConfig struct {
	Path            string   `yaml:"path" envconfig:"CSV_PATH" validate:"required"`
	FirstDataRow    int      `yaml:"first_data_row" envconfig:"FIRST_DATA_ROW" validate:"gte=0"`
	FirstDataColumn int      `yaml:"first_data_column" envconfig:"FIRST_DATA_COLUMN" validate:"gte=5"`
	DateLayout      string   `yaml:"date_layout" envconfig:"DATE_LAYOUT" validate:"required"`
	NAValues        []string `yaml:"na_values" envconfig:"NA_VALUES"`
}

// ChartConfig holds presentation settings for rendered charts
type ChartConfig struct {
	Width       int     `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height      int     `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
	StrokeWidth float64 `yaml:"stroke_width" envconfig:"STROKE_WIDTH" validate:"gte=0"`
	DotWidth    float64 `yaml:"dot_width" envconfig:"DOT_WIDTH" validate:"gte=0"`
	XAxisLabel  string  `yaml:"x_axis_label" envconfig:"X_AXIS_LABEL"`
	YAxisLabel  string  `yaml:"y_axis_label" envconfig:"Y_AXIS_LABEL"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// GroupConfig declares one chart group. Kind is one of "all", "sex" or
// "lineage"; Aliases lists extra source values that map onto Key.
type GroupConfig struct {
	Key     string   `yaml:"key" validate:"required"`
	Title   string   `yaml:"title" validate:"required"`
	Kind    string   `yaml:"kind" validate:"required,oneof=all sex lineage"`
	Aliases []string `yaml:"aliases"`
}

// EnvPrefix is the prefix for all environment overrides.
const EnvPrefix = "FAMILYMETER"

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of increasing precedence. An empty
// path falls back to the well-known locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML settings on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// A groups section in the file replaces the default set instead of
	// being merged element by element.
	var probe struct {
		Groups []GroupConfig `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if len(probe.Groups) > 0 {
		cfg.Groups = nil
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the group set invariants.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]string)
	keys := make(map[string]bool)
	allGroups := 0
	for _, g := range c.Groups {
		if keys[g.Key] {
			return fmt.Errorf("group key %q declared twice", g.Key)
		}
		keys[g.Key] = true
		if g.Kind == "all" {
			allGroups++
		}
		for _, name := range append([]string{g.Key}, g.Aliases...) {
			if prev, ok := seen[g.Kind+"/"+name]; ok {
				return fmt.Errorf("group value %q declared twice (%s, %s)", name, prev, g.Key)
			}
			seen[g.Kind+"/"+name] = g.Key
		}
	}
	if allGroups != 1 {
		return fmt.Errorf("exactly one group of kind \"all\" is required, got %d", allGroups)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(DefaultLogsDir, "app.log")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"familymeter.yaml",
		"configs/familymeter.yaml",
		"../configs/familymeter.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, "app.log"),
		},
		Source: SourceConfig{
			Path:            DefaultSourceFile,
			FirstDataRow:    0,
			FirstDataColumn: IdentityColumns,
			DateLayout:      DateLayout,
			NAValues:        DefaultNAValues(),
		},
		Chart: ChartConfig{
			Width:       1000,
			Height:      600,
			StrokeWidth: 2,
			DotWidth:    4,
			XAxisLabel:  "age",
			YAxisLabel:  "height",
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricsEnabled: true,
			SampleRatio:    1.0,
		},
		Groups: DefaultGroups(),
	}
}

// DefaultGroups returns the built-in chart groups in display order.
func DefaultGroups() []GroupConfig {
	return []GroupConfig{
		{Key: "all", Title: "Všetci", Kind: "all"},
		{Key: "female", Title: "Ženy", Kind: "sex", Aliases: []string{"žena"}},
		{Key: "male", Title: "Muži", Kind: "sex", Aliases: []string{"muž"}},
		{Key: "Elena", Title: "Potomkovia - Elena Vanochová", Kind: "lineage"},
		{Key: "Štefan", Title: "Potomkovia - Štefan Porubčanský", Kind: "lineage"},
		{Key: "Jozef", Title: "Potomkovia - Jozef Porubčanský", Kind: "lineage"},
		{Key: "Miro", Title: "Potomkovia - Miro Porubčanský", Kind: "lineage"},
		{Key: "Mariena", Title: "Potomkovia - Mariena Porubčanská", Kind: "lineage"},
	}
}

// DefaultNAValues lists the cell values read as missing.
func DefaultNAValues() []string {
	return []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}
}
