package interfaces

import (
	"context"

	"github.com/bobmcallan/tickerlens/internal/models"
)

// TickerResolver maps free text (a company name or an existing symbol) to
// its most common ticker symbol via the language model.
type TickerResolver interface {
	// Resolve returns a validated ticker symbol, or
	// models.ErrUnresolvedTicker when the model output fails validation
	Resolve(ctx context.Context, text string) (string, error)
}

// MarketDataService exposes the three market data operations the
// orchestrator dispatches to.
type MarketDataService interface {
	// CurrentPrice retrieves the instantaneous price for a ticker
	CurrentPrice(ctx context.Context, ticker string) (float64, error)

	// News retrieves up to max recent news items for a ticker.
	// Returns models.ErrNoNews when the provider found no articles.
	News(ctx context.Context, ticker string, max int) ([]*models.NewsItem, error)

	// PriceChange computes the price movement over a timeframe.
	// Returns models.ErrUnsupportedTimeframe for anything outside the
	// supported set, without issuing any HTTP request.
	PriceChange(ctx context.Context, ticker string, tf models.Timeframe) (*models.PriceChange, error)
}

// AnalysisService produces a narrative explanation of a price movement from
// news and price-change data.
type AnalysisService interface {
	// Analyze returns the trimmed model narrative, or
	// models.ErrInsufficientData when either input fetch failed
	Analyze(ctx context.Context, ticker string, tf models.Timeframe) (string, error)
}

// QueryService answers natural-language stock queries.
type QueryService interface {
	// ProcessQuery always returns a human-readable answer; it never
	// propagates an error or panic to the caller
	ProcessQuery(ctx context.Context, query string) string
}
