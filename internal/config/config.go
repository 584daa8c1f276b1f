package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures logscope's settings.
type Config struct {
	Server         string
	TailLimit      int
	RequestTimeout time.Duration
	Compression    bool
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/logscope/config.toml"
	defaultServer         = "127.0.0.1:5000"
	defaultTailLimit      = 50
	defaultRequestTimeout = 10 * time.Second
	defaultLogFile        = "~/.local/state/logscope/logscope.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:         defaultServer,
		TailLimit:      defaultTailLimit,
		RequestTimeout: defaultRequestTimeout,
		Compression:    true,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the logscope config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Server                string `toml:"server"`
		TailLimit             *int   `toml:"tail_limit"`
		RequestTimeoutSeconds *int   `toml:"request_timeout_seconds"`
		Compression           *bool  `toml:"compression"`
		LogFile               string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if server := strings.TrimSpace(raw.Server); server != "" {
		cfg.Server = server
	}
	if raw.TailLimit != nil {
		if *raw.TailLimit < 1 {
			return Config{}, fmt.Errorf("tail_limit must be at least 1, got %d", *raw.TailLimit)
		}
		cfg.TailLimit = *raw.TailLimit
	}
	if raw.RequestTimeoutSeconds != nil {
		if *raw.RequestTimeoutSeconds < 1 {
			return Config{}, fmt.Errorf("request_timeout_seconds must be positive, got %d", *raw.RequestTimeoutSeconds)
		}
		cfg.RequestTimeout = time.Duration(*raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.Compression != nil {
		cfg.Compression = *raw.Compression
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
