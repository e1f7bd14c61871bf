package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the process-wide default slog logger from the
// logging.format and logging.level config values.
//
// A "json" format selects the JSONHandler; any other value falls back to the
// human-readable TextHandler for local development. Debug level also enables
// source annotations so storage and upload failures can be traced to a call
// site.
//
// The logger is installed as the slog default, so handlers and storage
// backends log through the package-level slog functions without carrying a
// *slog.Logger around.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}

// parseLevel maps a config level string to a slog.Level. Unknown or empty
// values mean info, matching the config default.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
