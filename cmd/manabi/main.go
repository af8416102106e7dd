// Command manabi serves the learning-record API backed by each user's GitHub
// repository.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/yotsuba-lab/manabi/internal/config"
	"github.com/yotsuba-lab/manabi/internal/ghrepo"
	"github.com/yotsuba-lab/manabi/internal/recordapi"
	"github.com/yotsuba-lab/manabi/internal/server"
	"github.com/yotsuba-lab/manabi/internal/server/handlers"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "manabi: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to YAML config file (optional; MANABI_* env vars override it)")
	httpAddr := flag.String("http", "", "Address to listen on, overriding the config (e.g., localhost:8080, :8080)")
	logLevel := flag.String("log-level", "", "Log level overriding the config (debug, info, warn, error)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		fmt.Printf("manabi %s\n", buildVersion())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ll := &slog.LevelVar{}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	ll.Set(level)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// Log level can be raised on a live server by editing the config file.
	if err := config.WatchLogLevel(ctx, *configPath, ll); err != nil {
		slog.WarnContext(ctx, "Config watch disabled", "err", err)
	}

	svc := handlers.NewServices(
		recordapi.New(cfg.Backend.BaseURL),
		cfg.GitHub.CacheGrace,
		ghrepo.WithBaseURL(cfg.GitHub.APIBaseURL),
		ghrepo.WithBranch(cfg.GitHub.Branch),
		ghrepo.WithRateLimit(cfg.GitHub.RatePerSec, cfg.GitHub.Burst),
	)
	defer svc.Close()

	addr := cfg.Addr()
	if *httpAddr != "" {
		addr = *httpAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, []byte(cfg.Auth.JWTSecret), buildVersion()),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "backend", cfg.Backend.BaseURL, "version", buildVersion())
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
