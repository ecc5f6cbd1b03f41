package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tributolabs/fiscalgw/internal/advisor"
	"github.com/tributolabs/fiscalgw/internal/api"
	"github.com/tributolabs/fiscalgw/internal/cache"
	"github.com/tributolabs/fiscalgw/internal/config"
	"github.com/tributolabs/fiscalgw/internal/mcp"
)

func cmdServe(args []string) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	cfg := loadConfig()
	applyFlags(cfg, args)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	settings := config.Default()
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err == nil {
			fileCfg, err := config.LoadFile(cfg.ConfigFile)
			if err != nil {
				return err
			}
			settings.Apply(fileCfg)
			logger.Info("loaded config", "file", cfg.ConfigFile)
		}
	}
	// Environment wins over the file for the upstream URL.
	if cfg.UpstreamURL != "" {
		settings.UpstreamURL = cfg.UpstreamURL
	}

	client := mcp.NewClient(mcp.Config{
		BaseURL: settings.UpstreamURL,
		Timeout: settings.UpstreamTimeout,
	})
	prompts := cache.NewPromptCache(settings.PromptCacheEntries, settings.PromptCacheTTL)
	svc := advisor.NewService(client, settings.Tools, prompts)

	router := api.NewRouter(api.RouterDeps{
		Service:     svc,
		Version:     version,
		UpstreamURL: settings.UpstreamURL,
		DevMode:     cfg.DevMode,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must outlast the upstream call timeout or slow tool calls get
		// their responses cut off mid-write.
		WriteTimeout:      settings.UpstreamTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening",
			"addr", cfg.HTTPAddr, "upstream", settings.UpstreamURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}

// applyFlags parses --addr=X style flags from the args list.
func applyFlags(cfg *Config, args []string) {
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--addr="); ok {
			cfg.HTTPAddr = v
		}
		if v, ok := strings.CutPrefix(arg, "--upstream="); ok {
			cfg.UpstreamURL = v
		}
		if arg == "--dev" {
			cfg.DevMode = true
		}
	}
}
