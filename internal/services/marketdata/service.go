// Package marketdata exposes the quote, news and price-change operations
// used by the query orchestrator.
package marketdata

import (
	"context"
	"fmt"

	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/models"
)

// DefaultMaxArticles caps a news fetch when the caller does not specify one.
const DefaultMaxArticles = 5

// Service implements MarketDataService on top of a MarketClient.
type Service struct {
	client interfaces.MarketClient
	logger *common.Logger
}

// NewService creates a new market data service.
func NewService(client interfaces.MarketClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{client: client, logger: logger}
}

// CurrentPrice retrieves the instantaneous price for a ticker.
func (s *Service) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	quote, err := s.client.GetGlobalQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Current price fetch failed")
		return 0, err
	}
	return quote.Price, nil
}

// News retrieves up to max recent news items for a ticker, preserving
// provider order. Items with missing optional fields are returned as-is.
func (s *Service) News(ctx context.Context, ticker string, max int) ([]*models.NewsItem, error) {
	if max <= 0 {
		max = DefaultMaxArticles
	}

	news, err := s.client.GetNewsSentiment(ctx, ticker, max)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News fetch failed")
		return nil, err
	}
	return news, nil
}

// PriceChange computes the price movement over a timeframe. The timeframe is
// validated before any HTTP request is issued.
func (s *Service) PriceChange(ctx context.Context, ticker string, tf models.Timeframe) (*models.PriceChange, error) {
	switch {
	case tf == models.TimeframeToday:
		return s.todayChange(ctx, ticker)
	case tf.Historical():
		return s.historicalChange(ctx, ticker, tf)
	}

	s.logger.Warn().Str("ticker", ticker).Str("timeframe", string(tf)).Msg("Invalid timeframe for price change")
	return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedTimeframe, tf)
}

// todayChange computes today's movement from the real-time quote against the
// previous close. A zero previous close yields a 0.0 percentage rather than
// an error.
func (s *Service) todayChange(ctx context.Context, ticker string) (*models.PriceChange, error) {
	quote, err := s.client.GetGlobalQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote fetch failed for today change")
		return nil, err
	}

	if !quote.PreviousCloseValid {
		s.logger.Warn().Str("ticker", ticker).Msg("Quote missing previous close")
		return nil, fmt.Errorf("no previous close for %s: %w", ticker, models.ErrNoData)
	}

	change := quote.Price - quote.PreviousClose
	percent := 0.0
	if quote.PreviousClose != 0 {
		percent = change / quote.PreviousClose * 100
	}

	return &models.PriceChange{
		Ticker:       ticker,
		Timeframe:    models.TimeframeToday,
		Absolute:     change,
		Percent:      percent,
		PercentValid: true,
	}, nil
}

// historicalChange computes the movement between the most recent close and
// the close on the first date at or before (end date - lookback days). The
// lookback is a fixed calendar-day approximation.
func (s *Service) historicalChange(ctx context.Context, ticker string, tf models.Timeframe) (*models.PriceChange, error) {
	bars, err := s.client.GetDailySeries(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Str("timeframe", string(tf)).Msg("Daily series fetch failed")
		return nil, err
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("empty daily series for %s: %w", ticker, models.ErrNoData)
	}

	// Bars arrive sorted descending; the first is the end of the window.
	end := bars[0]
	target := end.Date.AddDate(0, 0, -tf.LookbackDays())

	var start *models.DailyBar
	for i := range bars {
		if !bars[i].Date.After(target) {
			start = &bars[i]
			break
		}
	}

	if start == nil {
		s.logger.Warn().Str("ticker", ticker).Str("timeframe", string(tf)).Time("target", target).Msg("No history at or before window start")
		return nil, fmt.Errorf("no start price for %s %s: %w", ticker, tf, models.ErrNoData)
	}

	change := &models.PriceChange{
		Ticker:    ticker,
		Timeframe: tf,
		Absolute:  end.Close - start.Close,
	}

	if start.Close == 0 {
		// Percentage is explicitly unavailable, not an error.
		s.logger.Warn().Str("ticker", ticker).Str("timeframe", string(tf)).Msg("Start price was zero, percentage unavailable")
		return change, nil
	}

	change.Percent = change.Absolute / start.Close * 100
	change.PercentValid = true
	return change, nil
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
