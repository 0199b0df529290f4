package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level is shared by every logger built through New so the level can be
// changed at runtime from the settings panel.
var Level = new(slog.LevelVar)

func New(w io.Writer) *slog.Logger {
	return slog.New(NewPrettyHandler(w, &slog.HandlerOptions{Level: Level}))
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// SetLevel parses raw and applies it to Level.
func SetLevel(raw string) error {
	level, err := ParseLevel(raw)
	if err != nil {
		return err
	}
	Level.Set(level)
	return nil
}

func LevelName(level slog.Level) string {
	return strings.ToLower(level.String())
}
