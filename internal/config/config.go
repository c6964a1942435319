// Package config loads the service configuration from the environment.
//
// Every key has a default, so the server starts with no environment at all.
// The loaded Config is a plain value: it is read once in main and passed
// down explicitly.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Stage names accepted in ANALYSIS_STAGES.
const (
	StageColors    = "colors"
	StageBoxes     = "boxes"
	StageSharpness = "sharpness"
	StageOCR       = "ocr"
)

// KnownStages lists every analysis stage the server can build.
var KnownStages = []string{StageColors, StageBoxes, StageSharpness, StageOCR}

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Analysis AnalysisConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64

	// GinMode is one of gin's modes: "release", "debug" or "test".
	GinMode string
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CORSConfig holds the cross-origin policy. "*" in AllowedOrigins accepts any
// origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// AllowAll reports whether any origin is accepted.
func (c CORSConfig) AllowAll() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// AnalysisConfig selects the analysis stages and tunes OCR.
type AnalysisConfig struct {
	// Stages are run in order after the brightness measurement.
	Stages []string

	OCRLanguage       string
	OCRTessdataPrefix string

	// OCRPerBox restricts OCR to detected package regions.
	OCRPerBox bool
}

// LogConfig holds the zap level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Load reads the configuration from environment variables, applies defaults
// and validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MAX_UPLOAD_BYTES", 10*1024*1024) // 10MB
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "*")
	v.SetDefault("CORS_ALLOWED_HEADERS", "*")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("ANALYSIS_STAGES", "")
	v.SetDefault("OCR_LANGUAGE", "eng")
	v.SetDefault("OCR_TESSDATA_PREFIX", "")
	v.SetDefault("OCR_PER_BOX", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
			MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
			GinMode:         strings.ToLower(strings.TrimSpace(v.GetString("GIN_MODE"))),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		Analysis: AnalysisConfig{
			Stages:            splitList(strings.ToLower(v.GetString("ANALYSIS_STAGES"))),
			OCRLanguage:       strings.TrimSpace(v.GetString("OCR_LANGUAGE")),
			OCRTessdataPrefix: v.GetString("OCR_TESSDATA_PREFIX"),
			OCRPerBox:         v.GetBool("OCR_PER_BOX"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("SERVER_READ_TIMEOUT must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("SERVER_WRITE_TIMEOUT must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes))
	}
	switch c.Server.GinMode {
	case "release", "debug", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be release, debug or test, got %q", c.Server.GinMode))
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not be empty"))
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("CORS origin %q must be * or start with http:// or https://", o))
		}
	}

	seen := make(map[string]bool, len(c.Analysis.Stages))
	for _, s := range c.Analysis.Stages {
		if !isKnownStage(s) {
			errs = append(errs, fmt.Errorf("unknown analysis stage %q (known: %s)", s, strings.Join(KnownStages, ", ")))
		}
		if seen[s] {
			errs = append(errs, fmt.Errorf("analysis stage %q listed twice", s))
		}
		seen[s] = true
	}

	return errors.Join(errs...)
}

func isKnownStage(name string) bool {
	for _, s := range KnownStages {
		if s == name {
			return true
		}
	}
	return false
}

// splitList splits a comma separated value, trimming blanks and dropping
// empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
