package config

import (
	"testing"

	"go.uber.org/zap"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"ERROR", "error"},
		{"", "info"},
		{"nonsense", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input).String(); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "error"} {
		logger, err := InitLogger(level)
		if err != nil {
			t.Fatalf("InitLogger(%q) returned error: %v", level, err)
		}
		if logger == nil {
			t.Fatalf("InitLogger(%q) returned nil logger", level)
		}
		logger.Sync()
	}
}

func TestInitLoggerHonorsConfiguredLevel(t *testing.T) {
	logger, err := InitLogger("error")
	if err != nil {
		t.Fatal(err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("error-level logger should not enable info")
	}
	if !logger.Core().Enabled(zap.ErrorLevel) {
		t.Error("error-level logger should enable error")
	}
}
