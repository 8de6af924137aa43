// Package orchestrator routes natural-language stock queries through intent
// classification, ticker resolution and the market data operations, and
// formats a plain-text answer.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/models"
)

// classifyPrompt asks the model for a (Intent, Ticker, Timeframe) triple.
// The intent must come from the closed label set so dispatch is a single
// deterministic mapping rather than free-text matching.
const classifyPrompt = `You are an expert at understanding user queries related to stock analysis.
Identify the main intent of the query and any relevant entities like stock tickers and timeframes.
The intent must be exactly one of:
investigate price drop reason, get recent news, get price change, get current price, get general information, analyze price change direction.

Examples:
User: Why did Tesla stock drop today?
Intent: investigate price drop reason
Ticker: TSLA
Timeframe: today

User: What's happening with Palantir stock recently?
Intent: get recent news
Ticker: PLTR
Timeframe: recently

User: How has Nvidia stock changed in the last 7 days?
Intent: get price change
Ticker: NVDA
Timeframe: last week

User: What is the current price of Apple?
Intent: get current price
Ticker: AAPL

User: Tell me something about Google's stock.
Intent: get general information
Ticker: GOOGL

User: Did Amazon's price go up last month?
Intent: analyze price change direction
Ticker: AMZN
Timeframe: last month

User Query: %s
Intent:
Ticker:
Timeframe:`

// Service implements QueryService. It holds no state across calls; every
// ProcessQuery invocation is an independent classify, resolve, dispatch,
// format transaction.
type Service struct {
	llm      interfaces.LLMClient
	resolver interfaces.TickerResolver
	market   interfaces.MarketDataService
	analysis interfaces.AnalysisService
	logger   *common.Logger
}

// NewService creates a new query orchestrator.
func NewService(llm interfaces.LLMClient, resolver interfaces.TickerResolver, market interfaces.MarketDataService, analysis interfaces.AnalysisService, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		llm:      llm,
		resolver: resolver,
		market:   market,
		analysis: analysis,
		logger:   logger,
	}
}

// classification is the parsed output of the intent-classification step.
type classification struct {
	Intent    models.Intent
	Ticker    string
	Timeframe string // normalized period word: today, week, month, year, ...
}

// parseClassification splits the model response into lines and each line
// once on the first colon, collecting key/value pairs. Later duplicate keys
// overwrite earlier ones. A missing Timeframe defaults to "today".
func parseClassification(text string) classification {
	parts := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		parts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	timeframe, ok := parts["Timeframe"]
	if !ok || timeframe == "" {
		timeframe = "today"
	}

	return classification{
		Intent:    models.ParseIntent(parts["Intent"]),
		Ticker:    parts["Ticker"],
		Timeframe: models.NormalizeTimeframe(timeframe),
	}
}

// ProcessQuery answers a natural-language stock query. It always returns a
// human-readable string; any failure along the way is converted to text.
func (s *Service) ProcessQuery(ctx context.Context, query string) (answer string) {
	log := &common.Logger{Logger: s.logger.With().Str("query_id", uuid.NewString()).Logger()}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", query).Msg("Query processing panicked")
			answer = fmt.Sprintf("An error occurred: %v", r)
		}
	}()

	response, err := s.llm.GenerateContent(ctx, fmt.Sprintf(classifyPrompt, query))
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Intent classification failed")
		return fmt.Sprintf("An error occurred: %v", err)
	}

	c := parseClassification(response)
	log.Debug().
		Str("intent", string(c.Intent)).
		Str("ticker_text", c.Ticker).
		Str("timeframe", c.Timeframe).
		Msg("Classified query")

	if c.Ticker == "" {
		return "Could not identify the stock ticker in your query."
	}

	symbol, err := s.resolver.Resolve(ctx, c.Ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker_text", c.Ticker).Msg("Ticker resolution failed")
		return fmt.Sprintf("Could not resolve the ticker for '%s'.", c.Ticker)
	}

	switch c.Intent {
	case models.IntentPriceDropReason:
		return s.answerPriceDropReason(ctx, log, symbol)
	case models.IntentRecentNews:
		return s.answerRecentNews(ctx, symbol)
	case models.IntentPriceChange:
		return s.answerPriceChange(ctx, symbol, c.Timeframe)
	case models.IntentCurrentPrice:
		return s.answerCurrentPrice(ctx, symbol)
	case models.IntentGeneralInformation:
		return s.answerGeneralInformation(ctx, symbol)
	case models.IntentPriceDirection:
		return s.answerPriceDirection(ctx, symbol, c.Timeframe)
	}

	return "Sorry, I'm not sure how to handle that query."
}

// answerPriceDropReason verifies both inputs exist, then delegates to the
// narrative analyzer. The two fetches run sequentially; both must succeed or
// the combined result is unavailable.
func (s *Service) answerPriceDropReason(ctx context.Context, log *common.Logger, symbol string) string {
	_, changeErr := s.market.PriceChange(ctx, symbol, models.TimeframeToday)
	_, newsErr := s.market.News(ctx, symbol, 0)
	if changeErr != nil || newsErr != nil {
		return "Could not retrieve enough information for analysis."
	}

	narrative, err := s.analysis.Analyze(ctx, symbol, models.TimeframeToday)
	if err != nil {
		log.Warn().Err(err).Str("ticker", symbol).Msg("Narrative analysis failed")
		return "Could not retrieve enough information for analysis."
	}
	return narrative
}

func (s *Service) answerRecentNews(ctx context.Context, symbol string) string {
	news, err := s.market.News(ctx, symbol, 0)
	if err != nil || len(news) == 0 {
		return fmt.Sprintf("No recent news found for %s.", symbol)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent news for %s:", symbol)
	for _, item := range news {
		fmt.Fprintf(&sb, "\n- %s", item.Title)
	}
	return sb.String()
}

func (s *Service) answerPriceChange(ctx context.Context, symbol, period string) string {
	tf, ok := models.TimeframeFromPeriod(period)
	if !ok {
		return "Sorry, I cannot handle that specific timeframe for price change."
	}

	change, err := s.market.PriceChange(ctx, symbol, tf)
	if tf == models.TimeframeToday {
		if err != nil {
			return fmt.Sprintf("Could not retrieve price change information for %s for today.", symbol)
		}
		return fmt.Sprintf("Price change for %s for today: %s", symbol, change)
	}

	if err != nil {
		return fmt.Sprintf("Could not retrieve price change information for %s for the %s.", symbol, tf)
	}
	return fmt.Sprintf("Price change for %s over the %s: %s", symbol, tf, change)
}

func (s *Service) answerCurrentPrice(ctx context.Context, symbol string) string {
	price, err := s.market.CurrentPrice(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("Could not retrieve the current price for %s.", symbol)
	}
	return fmt.Sprintf("The current price of %s is: $%.2f", symbol, price)
}

func (s *Service) answerGeneralInformation(ctx context.Context, symbol string) string {
	news, err := s.market.News(ctx, symbol, 0)
	if err != nil || len(news) == 0 {
		return fmt.Sprintf("No recent information found for %s.", symbol)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's some recent information about %s:", symbol)
	for _, item := range news {
		summary := item.Summary
		if summary == "" {
			summary = "No summary available."
		}
		fmt.Fprintf(&sb, "\n- %s: %s", item.Title, summary)
	}
	return sb.String()
}

// answerPriceDirection classifies the movement direction over a historical
// timeframe from the structured price change.
func (s *Service) answerPriceDirection(ctx context.Context, symbol, period string) string {
	tf, ok := models.TimeframeFromPeriod(period)
	if !ok || tf == models.TimeframeToday {
		return "Sorry, I can only analyze price change direction for 'last week', 'last month', or 'last year'."
	}

	change, err := s.market.PriceChange(ctx, symbol, tf)
	if err != nil {
		return fmt.Sprintf("Could not retrieve price change information for %s for %s.", symbol, tf)
	}

	switch change.Direction() {
	case models.DirectionUp:
		return fmt.Sprintf("%s's price went up %s.", symbol, tf)
	case models.DirectionDown:
		return fmt.Sprintf("%s's price went down %s.", symbol, tf)
	}
	return fmt.Sprintf("%s's price remained relatively unchanged %s.", symbol, tf)
}

// Ensure Service implements QueryService
var _ interfaces.QueryService = (*Service)(nil)
