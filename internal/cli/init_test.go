package cli

import (
	"context"
	"log/slog"
	"testing"

	"hisab/internal/config"
	applog "hisab/internal/log"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug level should be enabled")
	}
}
