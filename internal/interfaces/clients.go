// Package interfaces defines client and service contracts for tickerlens
package interfaces

import (
	"context"

	"github.com/bobmcallan/tickerlens/internal/models"
)

// LLMClient provides access to a text-completion language model.
// The boundary is deliberately unstructured: a single free-text prompt in,
// a single free-text completion out. All structure is imposed by prompt
// engineering and lenient response parsing on the caller's side.
type LLMClient interface {
	// GenerateContent generates a completion for a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// MarketClient provides access to the Alpha Vantage market data API
type MarketClient interface {
	// GetGlobalQuote retrieves the real-time quote snapshot for a ticker
	GetGlobalQuote(ctx context.Context, ticker string) (*models.GlobalQuote, error)

	// GetNewsSentiment retrieves up to limit news items with sentiment,
	// preserving provider order
	GetNewsSentiment(ctx context.Context, ticker string, limit int) ([]*models.NewsItem, error)

	// GetDailySeries retrieves the full daily close-price history,
	// sorted by date descending (most recent first)
	GetDailySeries(ctx context.Context, ticker string) ([]models.DailyBar, error)
}
