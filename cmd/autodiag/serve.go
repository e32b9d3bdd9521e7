package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tjfontaine/autodiag/internal/api"
	"github.com/tjfontaine/autodiag/internal/auth"
	"github.com/tjfontaine/autodiag/internal/config"
	"github.com/tjfontaine/autodiag/internal/controlplane"
	"github.com/tjfontaine/autodiag/internal/events"
	"github.com/tjfontaine/autodiag/internal/server"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/storage/memory"
	"github.com/tjfontaine/autodiag/internal/storage/sqlite"
	"github.com/tjfontaine/autodiag/internal/telemetry"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, newLogger(os.Stdout, cfg.Logging.Level))
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdown, err := telemetry.InitTracer(telemetry.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	client, err := newOracle(ctx, cfg.Oracle, cfg.Conversation.MaxTurns, logger)
	if err != nil {
		return fmt.Errorf("configure oracle: %w", err)
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	publisher, err := openPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("connect events: %w", err)
	}
	defer publisher.Close()

	manager := workspace.NewManager(client, store, workspace.Options{
		IdleTTL:       cfg.Workspace.IdleTTL,
		SweepInterval: cfg.Workspace.SweepInterval,
		MaxTurns:      cfg.Conversation.MaxTurns,
		Events:        publisher,
		Logger:        logger,
	})

	srv := server.New(server.Options{
		Port:           cfg.Server.Port,
		RequestTimeout: cfg.Server.RequestTimeout,
		ServiceName:    cfg.Telemetry.ServiceName,
	}, logger)

	var middlewares []func(http.Handler) http.Handler
	sources := controlplane.Sources{Workspaces: manager}
	authn := auth.NewAuthenticator(apiKeys(cfg.Server.APIKeys))
	if len(cfg.Server.APIKeys) > 0 {
		middlewares = append(middlewares, server.AuthMiddleware(authn))
		sources.APIKeys = authn
		logger.Info("api key authentication enabled", slog.Int("keys", authn.Len()))
	}
	if cfg.Server.RateLimit > 0 {
		limiter := server.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		middlewares = append(middlewares, limiter.Middleware)
		sources.RateLimited = limiter
	}
	api.NewHandler(manager, logger).Routes(srv.Router, middlewares...)

	// Mount control plane
	srv.Router.With(middlewares...).Mount("/admin", controlplane.NewServer(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return manager.Run(ctx) })
	if len(cfg.Server.APIKeys) > 0 {
		g.Go(func() error {
			return config.Watch(ctx, configPath, logger, func(next *config.Config) {
				reloadKeys(authn, next, logger)
			})
		})
	}
	return g.Wait()
}

func openStore(cfg config.StorageConfig) (storage.HistoryStore, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.New(cfg.SQLite.Path)
	default:
		return memory.New(), nil
	}
}

func openPublisher(cfg config.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Type {
	case "nats":
		return events.DialNATS(cfg.NATSURL, cfg.Subject)
	case "none":
		return events.Discard{}, nil
	default:
		return events.NewLogPublisher(logger), nil
	}
}

// reloadKeys replaces the accepted api keys from a reloaded config. An empty
// key list is ignored: authentication can only be turned off by a restart.
func reloadKeys(authn *auth.Authenticator, next *config.Config, logger *slog.Logger) bool {
	if len(next.Server.APIKeys) == 0 {
		logger.Warn("reloaded config has no api keys, keeping current keys; restart to disable authentication",
			slog.Int("keys", authn.Len()))
		return false
	}
	authn.SetKeys(apiKeys(next.Server.APIKeys))
	logger.Info("api keys reloaded", slog.Int("keys", authn.Len()))
	return true
}

func apiKeys(cfgs []config.APIKeyConfig) []auth.Key {
	keys := make([]auth.Key, 0, len(cfgs))
	for _, k := range cfgs {
		keys = append(keys, auth.Key{Name: k.Name, KeyHash: k.KeyHash})
	}
	return keys
}
