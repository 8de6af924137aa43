// Package app wires configuration, clients and services into a runnable
// application core.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bobmcallan/tickerlens/internal/clients/alphavantage"
	"github.com/bobmcallan/tickerlens/internal/clients/gemini"
	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/services/analysis"
	"github.com/bobmcallan/tickerlens/internal/services/marketdata"
	"github.com/bobmcallan/tickerlens/internal/services/orchestrator"
	"github.com/bobmcallan/tickerlens/internal/services/ticker"
)

// App holds all initialized clients and services.
type App struct {
	Config *common.Config
	Logger *common.Logger

	MarketClient interfaces.MarketClient
	LLMClient    interfaces.LLMClient

	TickerResolver interfaces.TickerResolver
	MarketData     interfaces.MarketDataService
	Analysis       interfaces.AnalysisService
	Query          interfaces.QueryService

	StartupTime time.Time
}

// NewApp initializes configuration, logging, clients and services.
// configPath may be empty, in which case TICKERLENS_CONFIG and defaults are
// consulted. A missing Alpha Vantage API key is a fatal startup condition;
// a missing Gemini key only degrades the LLM-dependent operations.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("TICKERLENS_CONFIG")
	}
	if configPath == "" {
		configPath = "tickerlens.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	avKey := config.Clients.AlphaVantage.APIKey
	if avKey == "" {
		return nil, fmt.Errorf("Alpha Vantage API key not found in config or environment")
	}

	marketClient := alphavantage.NewClient(avKey,
		alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
		alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
	)

	// A missing Gemini key degrades the LLM-dependent operations at request
	// time rather than failing startup.
	var llmClient interfaces.LLMClient
	if geminiKey := config.Clients.Gemini.APIKey; geminiKey == "" {
		logger.Warn().Msg("Gemini API key not configured - classification, ticker resolution and analysis will be unavailable")
		llmClient = gemini.Disabled()
	} else {
		llmClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
	}

	resolver := ticker.NewResolver(llmClient, logger)
	marketData := marketdata.NewService(marketClient, logger)
	analysisService := analysis.NewService(llmClient, marketData, logger)
	query := orchestrator.NewService(llmClient, resolver, marketData, analysisService, logger)

	return &App{
		Config:         config,
		Logger:         logger,
		MarketClient:   marketClient,
		LLMClient:      llmClient,
		TickerResolver: resolver,
		MarketData:     marketData,
		Analysis:       analysisService,
		Query:          query,
		StartupTime:    time.Now(),
	}, nil
}
