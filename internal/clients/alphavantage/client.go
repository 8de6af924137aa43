// Package alphavantage provides a client for the Alpha Vantage API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
	"github.com/bobmcallan/tickerlens/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co/query"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per minute (free tier)
)

// Client implements the MarketClient interface against the Alpha Vantage
// query endpoint. All operations are query-parameter GET requests against a
// single endpoint, differentiated by the "function" parameter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit in requests per minute
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a transport-level API failure (non-2xx status)
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// ProviderError represents a provider-reported error body: the HTTP call
// succeeded but the JSON carried an "Error Message" (or rate-limit note)
// instead of data.
type ProviderError struct {
	Function string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Alpha Vantage provider error: %s (function: %s)", e.Message, e.Function)
}

// errorBody holds the provider-side error keys every response may carry.
type errorBody struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (e *errorBody) providerError(function string) error {
	switch {
	case e.ErrorMessage != "":
		return &ProviderError{Function: function, Message: e.ErrorMessage}
	case e.Note != "":
		return &ProviderError{Function: function, Message: e.Note}
	case e.Information != "":
		return &ProviderError{Function: function, Message: e.Information}
	}
	return nil
}

// get performs a rate-limited GET request for the given function.
func (c *Client) get(ctx context.Context, function string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Function:   function,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// globalQuoteResponse represents the GLOBAL_QUOTE response shape.
type globalQuoteResponse struct {
	errorBody
	GlobalQuote map[string]string `json:"Global Quote"`
}

// GetGlobalQuote retrieves the real-time quote snapshot for a ticker.
func (c *Client) GetGlobalQuote(ctx context.Context, ticker string) (*models.GlobalQuote, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var resp globalQuoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", params, &resp); err != nil {
		return nil, err
	}

	if err := resp.providerError("GLOBAL_QUOTE"); err != nil {
		return nil, err
	}

	// An invalid symbol yields an empty "Global Quote" block, not an error.
	if len(resp.GlobalQuote) == 0 {
		return nil, fmt.Errorf("empty Global Quote for %s: %w", ticker, models.ErrNoData)
	}

	priceStr, ok := resp.GlobalQuote["05. price"]
	if !ok || priceStr == "" {
		return nil, fmt.Errorf("no price field in Global Quote for %s: %w", ticker, models.ErrNoData)
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable price %q for %s: %w", priceStr, ticker, models.ErrNoData)
	}

	quote := &models.GlobalQuote{
		Symbol: strings.TrimSpace(resp.GlobalQuote["01. symbol"]),
		Price:  price,
	}
	if quote.Symbol == "" {
		quote.Symbol = ticker
	}

	if prevStr, ok := resp.GlobalQuote["08. previous close"]; ok && prevStr != "" {
		if prev, err := strconv.ParseFloat(prevStr, 64); err == nil {
			quote.PreviousClose = prev
			quote.PreviousCloseValid = true
		}
	}

	return quote, nil
}

// newsSentiment is the nested per-item sentiment block. The score may arrive
// as either a JSON number or a string.
type newsSentiment struct {
	Label string    `json:"label"`
	Score flexFloat `json:"score"`
}

type newsFeedItem struct {
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Source    string        `json:"source"`
	Summary   string        `json:"summary"`
	Sentiment newsSentiment `json:"sentiment"`
}

// newsResponse represents the NEWS_SENTIMENT response shape. Feed is a
// pointer so an absent key (no news) is distinguishable from an empty list.
type newsResponse struct {
	errorBody
	Feed *[]newsFeedItem `json:"feed"`
}

// GetNewsSentiment retrieves up to limit news items with sentiment,
// preserving provider order. Returns models.ErrNoNews when the feed key is
// absent entirely.
func (c *Client) GetNewsSentiment(ctx context.Context, ticker string, limit int) ([]*models.NewsItem, error) {
	params := url.Values{}
	params.Set("tickers", ticker)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp newsResponse
	if err := c.get(ctx, "NEWS_SENTIMENT", params, &resp); err != nil {
		return nil, err
	}

	if err := resp.providerError("NEWS_SENTIMENT"); err != nil {
		return nil, err
	}

	if resp.Feed == nil {
		return nil, fmt.Errorf("no news feed for %s: %w", ticker, models.ErrNoNews)
	}

	feed := *resp.Feed
	// The provider does not always honor the limit parameter.
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}

	news := make([]*models.NewsItem, len(feed))
	for i, item := range feed {
		news[i] = &models.NewsItem{
			Title:          item.Title,
			URL:            item.URL,
			Source:         item.Source,
			Summary:        item.Summary,
			SentimentLabel: item.Sentiment.Label,
			SentimentScore: float64(item.Sentiment.Score),
		}
	}

	return news, nil
}

// dailySeriesResponse represents the TIME_SERIES_DAILY response shape.
type dailySeriesResponse struct {
	errorBody
	TimeSeries map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// GetDailySeries retrieves the full daily close-price history, sorted by
// date descending (most recent first).
func (c *Client) GetDailySeries(ctx context.Context, ticker string) ([]models.DailyBar, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("outputsize", "full")

	var resp dailySeriesResponse
	if err := c.get(ctx, "TIME_SERIES_DAILY", params, &resp); err != nil {
		return nil, err
	}

	if err := resp.providerError("TIME_SERIES_DAILY"); err != nil {
		return nil, err
	}

	if resp.TimeSeries == nil {
		return nil, fmt.Errorf("no daily time series for %s: %w", ticker, models.ErrNoData)
	}

	bars := make([]models.DailyBar, 0, len(resp.TimeSeries))
	for dateStr, day := range resp.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.logger.Warn().Str("ticker", ticker).Str("date", dateStr).Msg("Skipping unparseable series date")
			continue
		}
		closePrice, err := strconv.ParseFloat(day.Close, 64)
		if err != nil {
			c.logger.Warn().Str("ticker", ticker).Str("date", dateStr).Str("close", day.Close).Msg("Skipping unparseable close price")
			continue
		}
		bars = append(bars, models.DailyBar{Date: date, Close: closePrice})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.After(bars[j].Date)
	})

	return bars, nil
}

// flexFloat handles JSON values that may be either a number or a string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Ensure Client implements MarketClient
var _ interfaces.MarketClient = (*Client)(nil)
