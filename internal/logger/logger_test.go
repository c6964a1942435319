package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		want    zapcore.Level
		wantErr bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"default format", "debug", "", zapcore.DebugLevel, false},
		{"console warn", "WARN", "console", zapcore.WarnLevel, false},
		{"padded level", " error ", "json", zapcore.ErrorLevel, false},
		{"bad level", "loud", "json", 0, true},
		{"bad format", "info", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !log.Core().Enabled(tt.want) {
				t.Errorf("level %v should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("level %v should be disabled", tt.want-1)
			}
		})
	}
}
