// Package config loads the scraper configuration from environment
// variables, with an optional config.yaml overlay for local overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces the environment variables, e.g. LF_EXPORT_OUTPUT_FILE.
const envPrefix = "LF"

// configFile is looked up in the working directory; absence is fine.
const configFile = "config.yaml"

// Config is the complete application configuration.
type Config struct {
	Littlefield LittlefieldConfig `yaml:"littlefield" envconfig:"LITTLEFIELD"`
	Export      ExportConfig      `yaml:"export" envconfig:"EXPORT"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LittlefieldConfig locates the simulation site and paces requests to it.
type LittlefieldConfig struct {
	EntryURL          string        `yaml:"entry_url" envconfig:"ENTRY_URL" default:"https://op.responsive.net/lt/oneill/entry.html" validate:"required,url"`
	PlotURL           string        `yaml:"plot_url" envconfig:"PLOT_URL" default:"http://op.responsive.net/Littlefield/Plot" validate:"required,url"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" default:"30s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" default:"2" validate:"gt=0"`
}

// ExportConfig controls the output workbook.
type ExportConfig struct {
	OutputFile string `yaml:"output_file" envconfig:"OUTPUT_FILE" default:"data.xlsx" validate:"required"`
	SheetName  string `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"data" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/scraper.log"`
}

// TelemetryConfig controls trace export; disabled unless asked for.
type TelemetryConfig struct {
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0" validate:"gte=0,lte=1"`
}

// Load builds the configuration: struct-tag defaults and environment
// variables first, then the optional config file on top, then validation.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
