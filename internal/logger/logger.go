package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the process-wide slog handler. Development gets colored
// tint output, everything else gets JSON.
func Setup(appEnv string) *slog.Logger {
	var handler slog.Handler
	if appEnv == "development" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
