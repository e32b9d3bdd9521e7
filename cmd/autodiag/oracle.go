package main

import (
	"context"
	"log/slog"

	"github.com/tjfontaine/autodiag/internal/config"
	"github.com/tjfontaine/autodiag/internal/oracle"
	"github.com/tjfontaine/autodiag/internal/safehttp"
)

// newOracle builds the oracle client. Without an API key every operation
// answers with its fallback; a malformed key is an error.
func newOracle(ctx context.Context, cfg config.OracleConfig, totalSteps int, logger *slog.Logger) (*oracle.Client, error) {
	gen := oracle.Unconfigured()
	if cfg.APIKey == "" {
		logger.Warn("no Gemini API key configured, all diagnoses will use fallbacks",
			slog.String("env", config.GeminiKeyEnv))
	} else {
		cred, err := oracle.NewCredential(cfg.APIKey)
		if err != nil {
			return nil, err
		}
		g, err := oracle.NewGenAIGenerator(ctx, cred, oracle.GenAIConfig{
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
			HTTPClient:  safehttp.NewClient(safehttp.Options{AllowPrivate: cfg.AllowPrivateNetworks}),
		})
		if err != nil {
			return nil, err
		}
		logger.Info("oracle configured",
			slog.String("model", g.Model()),
			slog.Any("api_key", cred))
		gen = g
	}

	return oracle.NewClient(gen, oracle.Options{
		Rate:            cfg.Rate,
		Burst:           cfg.Burst,
		MaxPromptTokens: cfg.MaxPromptTokens,
		Timeout:         cfg.Timeout,
		TotalSteps:      totalSteps,
		Logger:          logger,
	}), nil
}
