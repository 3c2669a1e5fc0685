package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/xmwMing/daily-stock-analysis/pkg/config"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"}

	log := New(cfg)
	if log == nil {
		t.Fatal("Expected logger to be created")
	}
}

func TestNewConsoleFormat(t *testing.T) {
	cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}

	log := New(cfg)
	if log == nil {
		t.Fatal("Expected console logger to be created")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithField(t *testing.T) {
	log := NewNop()

	derived := log.WithField("module", "test")
	if derived == nil {
		t.Fatal("Expected derived logger")
	}
	if derived == log {
		t.Error("WithField should return a new logger")
	}
}

func TestWithFields(t *testing.T) {
	log := NewNop()

	derived := log.WithFields(map[string]interface{}{
		"module": "test",
		"count":  3,
	})
	if derived == nil {
		t.Fatal("Expected derived logger")
	}
}
