package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", level, err)
		}
		if !logger.Core().Enabled(mustLevel(t, level)) {
			t.Errorf("Expected level %s to be enabled", level)
		}
	}

	if _, err := New("verbose"); err == nil {
		t.Error("Expected error for an unknown level")
	}
}

func mustLevel(t *testing.T, level string) zapcore.Level {
	t.Helper()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		t.Fatal(err)
	}
	return lvl
}
