// Package ticker resolves free-text company references to ticker symbols
package ticker

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/models"
)

// resolvePrompt is the few-shot prompt instructing the model to map free
// text to its most common ticker symbol, one line of output.
const resolvePrompt = `You are a helpful agent designed to identify the stock ticker symbol
from the user's query. If the query clearly mentions a stock, extract its
ticker symbol. If the query mentions a company name, try to identify its
most common ticker symbol. Respond with the ticker symbol only.

Examples:
User: What's the latest on Apple stock?
Ticker: AAPL

User: Tell me about Google.
Ticker: GOOGL

User: Price of Microsoft today?
Ticker: MSFT

User: How is Amazon doing?
Ticker: AMZN

User: Any news about Berkshire Hathaway?
Ticker: BRK.A

User Query: %s
Ticker: `

// Resolver implements the TickerResolver interface on top of a language
// model. Ambiguous company names (share classes etc.) are resolved however
// the model resolves them; no disambiguation logic exists.
type Resolver struct {
	llm    interfaces.LLMClient
	logger *common.Logger
}

// NewResolver creates a new ticker resolver.
func NewResolver(llm interfaces.LLMClient, logger *common.Logger) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Resolver{llm: llm, logger: logger}
}

// Resolve maps free text to a validated ticker symbol. Model failures and
// output failing ticker validation both yield models.ErrUnresolvedTicker.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(resolvePrompt, text)

	response, err := r.llm.GenerateContent(ctx, prompt)
	if err != nil {
		r.logger.Warn().Err(err).Str("text", text).Msg("Ticker resolution model call failed")
		return "", fmt.Errorf("%w: %s", models.ErrUnresolvedTicker, text)
	}

	symbol := strings.TrimSpace(response)
	if !models.ValidTicker(symbol) {
		r.logger.Warn().Str("text", text).Str("response", symbol).Msg("Model output failed ticker validation")
		return "", fmt.Errorf("%w: %s", models.ErrUnresolvedTicker, text)
	}

	r.logger.Debug().Str("text", text).Str("ticker", symbol).Msg("Resolved ticker")
	return symbol, nil
}

// Ensure Resolver implements TickerResolver
var _ interfaces.TickerResolver = (*Resolver)(nil)
