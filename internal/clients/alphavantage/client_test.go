package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/tickerlens/internal/models"
)

// newTestClient points a client at a test server with the rate limiter
// effectively disabled.
func newTestClient(url string) *Client {
	return NewClient("test-key", WithBaseURL(url), WithRateLimit(600000))
}

func TestGetGlobalQuote_ParsesResponse(t *testing.T) {
	mockResp := map[string]interface{}{
		"Global Quote": map[string]string{
			"01. symbol":         "AAPL",
			"05. price":          "172.5000",
			"08. previous close": "170.0000",
		},
	}

	var capturedQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = map[string]string{
			"function": r.URL.Query().Get("function"),
			"symbol":   r.URL.Query().Get("symbol"),
			"apikey":   r.URL.Query().Get("apikey"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	quote, err := client.GetGlobalQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetGlobalQuote failed: %v", err)
	}

	if capturedQuery["function"] != "GLOBAL_QUOTE" {
		t.Errorf("expected function GLOBAL_QUOTE, got %s", capturedQuery["function"])
	}
	if capturedQuery["symbol"] != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", capturedQuery["symbol"])
	}
	if capturedQuery["apikey"] != "test-key" {
		t.Errorf("expected apikey test-key, got %s", capturedQuery["apikey"])
	}
	if quote.Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %s", quote.Symbol)
	}
	if quote.Price != 172.50 {
		t.Errorf("expected price 172.50, got %.4f", quote.Price)
	}
	if !quote.PreviousCloseValid || quote.PreviousClose != 170.00 {
		t.Errorf("expected previous close 170.00 (valid), got %.4f (valid=%v)", quote.PreviousClose, quote.PreviousCloseValid)
	}
}

func TestGetGlobalQuote_EmptyBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"Global Quote": map[string]string{}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetGlobalQuote(context.Background(), "NOTREAL")
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("expected ErrNoData for empty quote block, got %v", err)
	}
}

func TestGetGlobalQuote_MissingPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]string{"01. symbol": "AAPL"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetGlobalQuote(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("expected ErrNoData for missing price, got %v", err)
	}
}

func TestGetGlobalQuote_UnparseablePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]string{"05. price": "not-a-number"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetGlobalQuote(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("expected ErrNoData for unparseable price, got %v", err)
	}
}

func TestGetGlobalQuote_MissingPreviousClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]string{"05. price": "50.00"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	quote, err := client.GetGlobalQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetGlobalQuote failed: %v", err)
	}
	if quote.PreviousCloseValid {
		t.Error("expected PreviousCloseValid=false when field is absent")
	}
	if quote.Price != 50.00 {
		t.Errorf("expected price 50.00, got %.2f", quote.Price)
	}
}

func TestGetGlobalQuote_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"Error Message": "Invalid API call. Please retry or visit the documentation.",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetGlobalQuote(context.Background(), "AAPL")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Function != "GLOBAL_QUOTE" {
		t.Errorf("expected function GLOBAL_QUOTE, got %s", provErr.Function)
	}
}

func TestGet_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetGlobalQuote(context.Background(), "AAPL")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
}

func TestGetNewsSentiment_ParsesFeed(t *testing.T) {
	mockResp := map[string]interface{}{
		"feed": []map[string]interface{}{
			{
				"title":   "Apple Announces New Chip",
				"url":     "https://example.com/apple-chip",
				"source":  "Reuters",
				"summary": "Apple unveiled its next-generation silicon.",
				"sentiment": map[string]interface{}{
					"label": "positive",
					"score": 0.62,
				},
			},
			{
				// missing optional fields
				"title":  "Apple Faces Lawsuit",
				"url":    "https://example.com/apple-suit",
				"source": "Bloomberg",
			},
		},
	}

	var capturedQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = map[string]string{
			"function": r.URL.Query().Get("function"),
			"tickers":  r.URL.Query().Get("tickers"),
			"limit":    r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	news, err := client.GetNewsSentiment(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatalf("GetNewsSentiment failed: %v", err)
	}

	if capturedQuery["function"] != "NEWS_SENTIMENT" {
		t.Errorf("expected function NEWS_SENTIMENT, got %s", capturedQuery["function"])
	}
	if capturedQuery["tickers"] != "AAPL" {
		t.Errorf("expected tickers AAPL, got %s", capturedQuery["tickers"])
	}
	if capturedQuery["limit"] != "5" {
		t.Errorf("expected limit 5, got %s", capturedQuery["limit"])
	}

	if len(news) != 2 {
		t.Fatalf("expected 2 items, got %d", len(news))
	}
	if news[0].Title != "Apple Announces New Chip" {
		t.Errorf("unexpected first title %q", news[0].Title)
	}
	if news[0].SentimentLabel != "positive" || news[0].SentimentScore != 0.62 {
		t.Errorf("unexpected sentiment %q %.2f", news[0].SentimentLabel, news[0].SentimentScore)
	}
	if news[1].Summary != "" || news[1].SentimentLabel != "" {
		t.Errorf("missing optional fields should stay empty, got %q %q", news[1].Summary, news[1].SentimentLabel)
	}
	if news[1].Source != "Bloomberg" {
		t.Errorf("unexpected source %q", news[1].Source)
	}
}

func TestGetNewsSentiment_StringScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"feed": []map[string]interface{}{
				{
					"title":     "Headline",
					"url":       "https://example.com/a",
					"source":    "AP",
					"sentiment": map[string]interface{}{"label": "neutral", "score": "0.1250"},
				},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	news, err := client.GetNewsSentiment(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatalf("GetNewsSentiment failed: %v", err)
	}
	if news[0].SentimentScore != 0.125 {
		t.Errorf("expected string score parsed to 0.125, got %v", news[0].SentimentScore)
	}
}

func TestGetNewsSentiment_AbsentFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"items": "0"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	news, err := client.GetNewsSentiment(context.Background(), "OBSCURE", 5)
	if !errors.Is(err, models.ErrNoNews) {
		t.Errorf("expected ErrNoNews for absent feed, got %v", err)
	}
	if news != nil {
		t.Errorf("expected nil news, got %v", news)
	}
}

func TestGetNewsSentiment_EmptyFeedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"feed": []interface{}{}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	news, err := client.GetNewsSentiment(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatalf("GetNewsSentiment failed: %v", err)
	}
	if len(news) != 0 {
		t.Errorf("expected empty slice, got %d items", len(news))
	}
}

func TestGetNewsSentiment_TruncatesToLimit(t *testing.T) {
	feed := make([]map[string]interface{}, 8)
	for i := range feed {
		feed[i] = map[string]interface{}{"title": "t", "url": "u", "source": "s"}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"feed": feed})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	news, err := client.GetNewsSentiment(context.Background(), "AAPL", 3)
	if err != nil {
		t.Fatalf("GetNewsSentiment failed: %v", err)
	}
	if len(news) != 3 {
		t.Errorf("expected 3 items after truncation, got %d", len(news))
	}
}

func TestGetDailySeries_SortedDescending(t *testing.T) {
	mockResp := map[string]interface{}{
		"Time Series (Daily)": map[string]map[string]string{
			"2026-08-25": {"4. close": "101.00"},
			"2026-08-28": {"4. close": "103.00"},
			"2026-08-26": {"4. close": "102.00"},
		},
	}

	var capturedQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = map[string]string{
			"function":   r.URL.Query().Get("function"),
			"outputsize": r.URL.Query().Get("outputsize"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	bars, err := client.GetDailySeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetDailySeries failed: %v", err)
	}

	if capturedQuery["function"] != "TIME_SERIES_DAILY" {
		t.Errorf("expected function TIME_SERIES_DAILY, got %s", capturedQuery["function"])
	}
	if capturedQuery["outputsize"] != "full" {
		t.Errorf("expected outputsize full, got %s", capturedQuery["outputsize"])
	}

	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	wantCloses := []float64{103.00, 102.00, 101.00}
	for i, want := range wantCloses {
		if bars[i].Close != want {
			t.Errorf("bars[%d].Close = %.2f, want %.2f", i, bars[i].Close, want)
		}
	}
	if !bars[0].Date.After(bars[1].Date) || !bars[1].Date.After(bars[2].Date) {
		t.Error("expected bars sorted by date descending")
	}
}

func TestGetDailySeries_AbsentSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"Meta Data": map[string]string{}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetDailySeries(context.Background(), "NOTREAL")
	if !errors.Is(err, models.ErrNoData) {
		t.Errorf("expected ErrNoData for absent series, got %v", err)
	}
}

func TestGetDailySeries_SkipsMalformedBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Time Series (Daily)": map[string]map[string]string{
				"2026-08-28": {"4. close": "103.00"},
				"not-a-date": {"4. close": "1.00"},
				"2026-08-27": {"4. close": "oops"},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	bars, err := client.GetDailySeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetDailySeries failed: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 usable bar, got %d", len(bars))
	}
	if bars[0].Close != 103.00 {
		t.Errorf("expected close 103.00, got %.2f", bars[0].Close)
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`0.25`, 0.25},
		{`"0.25"`, 0.25},
		{`""`, 0},
		{`"N/A"`, 0},
		{`"garbage"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f flexFloat
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if float64(f) != tt.want {
				t.Errorf("flexFloat(%s) = %v, want %v", tt.raw, float64(f), tt.want)
			}
		})
	}
}
