package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Server.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr: got %q, want 0.0.0.0:8000", got)
	}
	if cfg.Server.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes: got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Server.ReadTimeout != 30*time.Second || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("timeouts: got read %v shutdown %v", cfg.Server.ReadTimeout, cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.GinMode != "release" {
		t.Errorf("GinMode: got %q", cfg.Server.GinMode)
	}
	if !cfg.CORS.AllowAll() {
		t.Errorf("CORS should allow all origins by default, got %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.Analysis.Stages) != 0 {
		t.Errorf("no stages should be enabled by default, got %v", cfg.Analysis.Stages)
	}
	if cfg.Analysis.OCRLanguage != "eng" {
		t.Errorf("OCRLanguage: got %q", cfg.Analysis.OCRLanguage)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.meditime.io, http://localhost:3000")
	t.Setenv("ANALYSIS_STAGES", "Colors, boxes,,sharpness")
	t.Setenv("OCR_PER_BOX", "true")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Server.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("Addr: got %q", got)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout: got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes: got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.CORS.AllowAll() || len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins: got %q", cfg.CORS.AllowedOrigins)
	}
	if got := strings.Join(cfg.Analysis.Stages, ","); got != "colors,boxes,sharpness" {
		t.Errorf("Stages: got %q", got)
	}
	if !cfg.Analysis.OCRPerBox {
		t.Error("OCRPerBox should be true")
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format: got %q", cfg.Log.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port too large", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"port not a number", "SERVER_PORT", "http", "SERVER_PORT"},
		{"zero upload limit", "MAX_UPLOAD_BYTES", "0", "MAX_UPLOAD_BYTES"},
		{"negative timeout", "SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"unknown stage", "ANALYSIS_STAGES", "colors,faces", `unknown analysis stage "faces"`},
		{"duplicate stage", "ANALYSIS_STAGES", "ocr,ocr", "listed twice"},
		{"bad origin", "CORS_ALLOWED_ORIGINS", "meditime.io", "CORS origin"},
		{"bad gin mode", "GIN_MODE", "verbose", "GIN_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, GinMode: "release"},
		CORS:   CORSConfig{AllowedOrigins: []string{"*"}},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT", "MAX_UPLOAD_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{" , ,", 0},
		{"*", 1},
		{"GET, POST ,OPTIONS", 3},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); len(got) != tt.want {
			t.Errorf("splitList(%q): got %q, want %d items", tt.in, got, tt.want)
		}
	}
}
