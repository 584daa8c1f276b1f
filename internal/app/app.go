package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pkt.systems/pslog"

	"github.com/five82/logscope/internal/config"
	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/logx"
	"github.com/five82/logscope/internal/prefs"
	"github.com/five82/logscope/internal/session"
	"github.com/five82/logscope/internal/state"
	"github.com/five82/logscope/internal/ui"
)

// Options configure the logscope application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/logscope/prefs.toml
	Server     string // overrides the configured server when set
	Debug      bool
}

// LoadConfig reads the config file and applies command line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}
	return cfg, nil
}

// NewClient builds the log server client described by cfg.
func NewClient(cfg config.Config) (*logapi.Client, error) {
	client, err := logapi.NewClient(logapi.Options{
		Server:      cfg.Server,
		Timeout:     cfg.RequestTimeout,
		Compression: cfg.Compression,
	})
	if err != nil {
		return nil, fmt.Errorf("init log client: %w", err)
	}
	return client, nil
}

// Run boots the logscope TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logx.NewFileLogger(logFile, opts.Debug)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())

	client, err := NewClient(cfg)
	if err != nil {
		return err
	}
	logger.Info("logscope starting", "server", client.BaseURL(), "tail_limit", cfg.TailLimit)

	store := &state.Store{}
	ctrl := session.NewController(ctx, session.Options{
		Dialer:   client,
		Searcher: client,
		Limit:    cfg.TailLimit,
		OnChange: store.UpdateSession,
	})
	defer ctrl.Close()

	loader := NewStreamLoader(client, store)
	// Populate the picker before the first frame; a failure is shown as a banner.
	_ = loader.Load(ctx)

	return ui.Run(ctx, ui.Options{
		Store:      store,
		Controller: ctrl,
		Reload:     loader.Load,
		Server:     client.BaseURL(),
		LogPath:    cfg.LogFile,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
