// Package logging builds the enginectl logger and carries it on a context.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/patrick-jessen/enginectl/internal/storage"
)

// Config selects where log lines go and which engine they describe.
type Config struct {
	// Writer receives log lines. When nil they go to the rotated log file
	// under the state directory.
	Writer io.Writer
	// Engine is the engine URL stamped on every line.
	Engine string
	// Level is a zerolog level name such as "debug" or "warn". Empty means info.
	Level string
}

// New attaches a logger built from config to ctx. Every line carries a
// timestamp and the engine it concerns.
func New(ctx context.Context, fs afero.Fs, config Config) (context.Context, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		parsed, err := zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
		level = parsed
	}

	out := config.Writer
	if out == nil {
		if fs == nil {
			return nil, errors.New("filesystem required when no writer provided")
		}
		path, err := storage.New(fs).GetLogPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get log path: %w", err)
		}
		// 10MB per file, three old files, kept for a month.
		out = &lumberjack.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 30}
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("engine", config.Engine).
		Logger()
	return logger.WithContext(ctx), nil
}

// Get returns the logger attached to ctx, or a disabled logger.
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
