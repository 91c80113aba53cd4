// Package cli implements the enginectl commands on top of the sync layer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/patrick-jessen/enginectl/internal/config"
	"github.com/patrick-jessen/enginectl/internal/database"
	"github.com/patrick-jessen/enginectl/internal/logging"
	"github.com/patrick-jessen/enginectl/internal/remote"
	"github.com/patrick-jessen/enginectl/internal/settingsync"
	"github.com/patrick-jessen/enginectl/internal/storage"
)

// ErrHistoryDisabled is returned by History when the journal is turned off.
var ErrHistoryDisabled = errors.New("history is disabled in config")

// Options controls how an App is assembled. Zero values select production
// behavior: the OS filesystem, stdout and a rotated log file.
type Options struct {
	Fs          afero.Fs
	Out         io.Writer
	LogWriter   io.Writer
	ConfigPath  string
	DatabaseDSN string
}

type App struct {
	out     io.Writer
	cfg     *config.Config
	client  *remote.Client
	db      *database.Manager
	journal *database.Journal
}

// Open loads the configuration and wires the app. The returned context
// carries the logger.
func Open(ctx context.Context, opts Options) (context.Context, *App, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return ctx, nil, err
	}

	ctx, err = logging.New(ctx, fs, logging.Config{
		Writer: opts.LogWriter,
		Engine: cfg.Engine.URL,
		Level:  cfg.Logging.Level,
	})
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	client, err := remote.New(cfg.Engine.URL, remote.WithTimeout(cfg.Engine.Timeout))
	if err != nil {
		return ctx, nil, err
	}

	a := &App{out: out, cfg: cfg, client: client}

	if cfg.History.Enabled {
		dsn := opts.DatabaseDSN
		if dsn == "" {
			dsn, err = storage.New(fs).GetDatabasePath()
			if err != nil {
				return ctx, nil, fmt.Errorf("failed to get database path: %w", err)
			}
		}
		a.db, err = database.NewManager(ctx, dsn)
		if err != nil {
			return ctx, nil, err
		}
		a.journal = database.NewJournal(a.db)
	}

	logging.Get(ctx).Debug().
		Str("config", opts.ConfigPath).
		Bool("history", cfg.History.Enabled).
		Msg("app ready")
	return ctx, a, nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) sessionOptions() []settingsync.SessionOption {
	opts := []settingsync.SessionOption{settingsync.WithEngine(a.client.BaseURL())}
	if a.journal != nil {
		opts = append(opts, settingsync.WithRecorder(a.journal))
	}
	return opts
}

// InitConfig writes the default configuration to path unless a file exists.
func InitConfig(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := config.DefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
