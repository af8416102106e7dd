// Package config loads server configuration from YAML with environment
// overrides. MANABI_* variables win over the file, which wins over defaults.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	GitHub  GitHubConfig  `yaml:"github"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type GitHubConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	Branch     string `yaml:"branch"`
	// RatePerSec and Burst throttle outbound API calls per client.
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
	// CacheGrace delays tree-cache invalidation after a write, letting the
	// remote's own indexing settle before the refetch.
	CacheGrace time.Duration `yaml:"cache_grace"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("MANABI_JWT_SECRET must be set to a non-default value")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("MANABI_JWT_SECRET must be at least 16 characters (current length: %d)", len(c.Auth.JWTSecret))
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must be configured")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a config level string onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		GitHub: GitHubConfig{
			APIBaseURL: "https://api.github.com",
			Branch:     "main",
			RatePerSec: 5,
			Burst:      10,
			CacheGrace: 2 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000",
		},
		Auth: AuthConfig{
			JWTSecret: "change-me-in-production",
			TokenTTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (optional) over the defaults, then applies environment
// overrides. Validation is the caller's call; a config used only for tooling
// need not pass Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MANABI_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MANABI_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("MANABI_GITHUB_API_URL"); v != "" {
		cfg.GitHub.APIBaseURL = v
	}
	if v := os.Getenv("MANABI_GITHUB_BRANCH"); v != "" {
		cfg.GitHub.Branch = v
	}
	if v := os.Getenv("MANABI_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("MANABI_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MANABI_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("MANABI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// WatchLogLevel re-reads path whenever it changes and pushes the new log
// level into lvl, so verbosity can be raised on a live server. Stops when ctx
// is done. No-op (nil error) when path is empty.
func WatchLogLevel(ctx context.Context, path string, lvl *slog.LevelVar) error {
	if path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file, which drops a watch on
	// the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					slog.WarnContext(ctx, "Config reload failed", "err", err)
					continue
				}
				level, err := ParseLevel(cfg.Log.Level)
				if err != nil {
					slog.WarnContext(ctx, "Config reload failed", "err", err)
					continue
				}
				if lvl.Level() != level {
					lvl.Set(level)
					slog.InfoContext(ctx, "Log level changed", "level", level)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching config", "err", err)
			}
		}
	}()
	return nil
}
