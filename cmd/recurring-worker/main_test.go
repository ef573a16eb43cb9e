package main

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"moneymanager/internal/logger"
)

func TestRun_ConfiguresLoggerFromConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "sqlite")

	err := run(true, "31/01/2024")
	if err == nil || !strings.Contains(err.Error(), "invalid -date") {
		t.Fatalf("expected invalid date error, got %v", err)
	}

	core := logger.Get().Desugar().Core()
	if core.Enabled(zapcore.WarnLevel) {
		t.Error("expected LOG_LEVEL=error from config to disable warnings")
	}
	if !core.Enabled(zapcore.ErrorLevel) {
		t.Error("expected errors to be logged")
	}
}
