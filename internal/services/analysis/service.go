// Package analysis produces narrative explanations of price movements by
// combining news and price-change data into a single analyst prompt.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/models"
)

// analysisPrompt instructs the model to produce a structured explanatory
// narrative: price/volume context, per-item news impact, correlation versus
// causation, broader market context, and a prioritized summary of drivers.
const analysisPrompt = `You are a senior financial analyst tasked with providing a detailed explanation of the recent price movements
of the stock with ticker '%s' over the last %s. Your analysis should integrate recent news,
price changes, and potential market factors.

**1. Price and Volume Context:**
Briefly state the observed price change: '%s'. If volume data is available, also mention any significant changes in trading volume during this period.

**2. Recent News Analysis:**
Review the following recent news items related to '%s':
News:
%s

For each significant news item, consider its potential impact on the stock price. Note the sentiment (positive, negative, neutral) and the source's credibility if possible.

**3. Correlation and Causation:**
Analyze the relationship between the observed price change and the recent news. Are there any apparent correlations? Discuss potential causal links, being careful not to assume direct causation without strong evidence. Consider:
- Did positive news coincide with price increases?
- Did negative news coincide with price decreases?
- Were there any major news events without a corresponding price reaction, and why might that be?

**4. Broader Market Context (If Applicable):**
If you have access to information about broader market trends or sector-specific news during this period, briefly consider if these factors might have influenced the stock's movement independently of company-specific news.

**5. Summary of Key Drivers:**
Based on your analysis, provide a detailed summary of the most likely reasons behind the observed price movement. Prioritize the most significant factors and explain your reasoning. If the price movement seems uncorrelated with the available news, state this and suggest potential reasons (e.g., broader market forces, technical trading, information not yet publicly available).

Your detailed analysis summary:`

// Service implements AnalysisService.
type Service struct {
	llm    interfaces.LLMClient
	market interfaces.MarketDataService
	logger *common.Logger
}

// NewService creates a new analysis service.
func NewService(llm interfaces.LLMClient, market interfaces.MarketDataService, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{llm: llm, market: market, logger: logger}
}

// Analyze fetches news and the price change for the ticker/timeframe and
// asks the model for a narrative. Analysis is never attempted on partial
// data: if either fetch fails, models.ErrInsufficientData is returned.
func (s *Service) Analyze(ctx context.Context, tickerSym string, tf models.Timeframe) (string, error) {
	news, newsErr := s.market.News(ctx, tickerSym, 0)
	change, changeErr := s.market.PriceChange(ctx, tickerSym, tf)

	if newsErr != nil || changeErr != nil {
		s.logger.Warn().
			Str("ticker", tickerSym).
			Str("timeframe", string(tf)).
			AnErr("news_err", newsErr).
			AnErr("change_err", changeErr).
			Msg("Insufficient data to analyze")
		return "", fmt.Errorf("%w: %s %s", models.ErrInsufficientData, tickerSym, tf)
	}

	prompt := buildPrompt(tickerSym, tf, change, news)

	response, err := s.llm.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", tickerSym).Str("timeframe", string(tf)).Msg("Analysis model call failed")
		return "", fmt.Errorf("analysis failed for %s: %w", tickerSym, err)
	}

	return strings.TrimSpace(response), nil
}

// buildPrompt assembles the analyst prompt. News items without a title are
// skipped.
func buildPrompt(tickerSym string, tf models.Timeframe, change *models.PriceChange, news []*models.NewsItem) string {
	lines := make([]string, 0, len(news))
	for _, item := range news {
		if item.Title == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (Sentiment: %s, Score: %.4f)", item.Title, item.SentimentLabel, item.SentimentScore))
	}

	newsBlock := "No significant news found."
	if len(lines) > 0 {
		newsBlock = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(analysisPrompt, tickerSym, tf, change.String(), tickerSym, newsBlock)
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
