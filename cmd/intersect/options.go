package main

import (
	"time"

	"github.com/kbukum/consensus/config"
)

const serviceName = "intersect"

// Options is the command configuration, loaded from an optional config file,
// INTERSECT_* environment variables and flags.
type Options struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Root is the directory source paths are resolved against.
	Root string `mapstructure:"root" validate:"required"`
	// Sources are JSON files, each holding one array of items.
	Sources []string `mapstructure:"sources" validate:"dive,required"`
	// MaxConcurrency bounds how many sources are read at once (0 = all).
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"gte=0"`
	// RetryAttempts is the number of attempts per source read.
	RetryAttempts int `mapstructure:"retry_attempts" validate:"min=1,max=10"`
	// Timeout bounds the whole invocation (0 = none).
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// Pretty indents the JSON output.
	Pretty bool `mapstructure:"pretty"`

	Telemetry TelemetryOptions `mapstructure:"telemetry"`
}

// TelemetryOptions configures OTLP export. An empty endpoint disables it.
type TelemetryOptions struct {
	Endpoint   string  `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func defaults() map[string]any {
	return map[string]any{
		"name":                  serviceName,
		"root":                  ".",
		"retry_attempts":        1,
		"telemetry.insecure":    true,
		"telemetry.sample_rate": 1.0,
	}
}
