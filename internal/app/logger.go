package app

import (
	"fmt"
	"io"
	"log/slog"
)

// parseLevel accepts the slog level names in any case, with an optional
// offset such as "debug+2". An empty string is info.
func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: must be one of %v", s, logLevels)
	}
	return level, nil
}

// newLogger builds the App's own logger from cfg. The global slog logger is
// left alone so several Apps can run side by side in tests.
func newLogger(cfg *Config, outW io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(outW, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(outW, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, logFormats)
	}
}
