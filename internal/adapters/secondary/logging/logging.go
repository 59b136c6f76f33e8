// Package logging builds the application logger from the logging
// configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// Logger is a configured slog logger together with the file it writes to
type Logger struct {
	*slog.Logger
	// Session identifies one run of the program in the log
	Session string
	file    *os.File
}

// New creates a logger. Logs go to config.File when set, otherwise to
// fallback; a nil fallback discards them. The presenter owns the terminal,
// so callers pass nil while presenting.
func New(config entities.LoggingConfig, fallback io.Writer) (*Logger, error) {
	out := fallback
	if out == nil {
		out = io.Discard
	}

	var file *os.File
	if config.File != "" {
		var err error
		file, err = os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 - path from validated config
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = file
	}

	options := &slog.HandlerOptions{Level: Level(config.GetLevel())}
	var handler slog.Handler
	if config.JSONFormat {
		handler = slog.NewJSONHandler(out, options)
	} else {
		handler = slog.NewTextHandler(out, options)
	}

	session := uuid.NewString()
	return &Logger{
		Logger:  slog.New(handler).With(slog.String("session", session)),
		Session: session,
		file:    file,
	}, nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}

// Level maps a configured level to a slog level
func Level(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
