// Package models defines the data types shared across tickerlens
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// GlobalQuote holds the real-time snapshot returned by the GLOBAL_QUOTE
// endpoint. Only the fields the query pipeline consumes are retained.
type GlobalQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	// PreviousCloseValid is false when the provider omitted the previous
	// close or it failed to parse; the price itself may still be usable.
	PreviousCloseValid bool `json:"previous_close_valid"`
}

// NewsItem represents a single article from the news-and-sentiment feed.
// Summary, SentimentLabel and SentimentScore are best-effort: the provider
// may omit any of them.
type NewsItem struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	Summary        string  `json:"summary,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
}

// DailyBar is one day of the daily close-price history.
type DailyBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Timeframe is the lookback window for a price-change query.
type Timeframe string

const (
	TimeframeToday     Timeframe = "today"
	TimeframeLastWeek  Timeframe = "last week"
	TimeframeLastMonth Timeframe = "last month"
	TimeframeLastYear  Timeframe = "last year"
)

// NormalizeTimeframe lowercases and trims the raw classifier value and strips
// a single occurrence of "last " so "last week" and "week" normalize alike.
func NormalizeTimeframe(raw string) string {
	tf := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(tf, "last") {
		tf = strings.Replace(tf, "last ", "", 1)
	}
	return tf
}

// TimeframeFromPeriod maps a bare period word onto its Timeframe.
// Returns false for anything outside {today, week, month, year}.
func TimeframeFromPeriod(period string) (Timeframe, bool) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "today":
		return TimeframeToday, true
	case "week":
		return TimeframeLastWeek, true
	case "month":
		return TimeframeLastMonth, true
	case "year":
		return TimeframeLastYear, true
	}
	return "", false
}

// Valid reports whether the timeframe is one of the supported windows.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeToday, TimeframeLastWeek, TimeframeLastMonth, TimeframeLastYear:
		return true
	}
	return false
}

// Historical reports whether the timeframe requires the daily history
// series rather than the real-time quote.
func (t Timeframe) Historical() bool {
	return t == TimeframeLastWeek || t == TimeframeLastMonth || t == TimeframeLastYear
}

// LookbackDays returns the calendar-day span for a historical timeframe.
// This is a fixed approximation, not a trading-day-aware calculation.
func (t Timeframe) LookbackDays() int {
	switch t {
	case TimeframeLastWeek:
		return 7
	case TimeframeLastMonth:
		return 30
	case TimeframeLastYear:
		return 365
	}
	return 0
}

// PriceChange holds a computed price movement over a timeframe.
// PercentValid is false when the start price was zero and no percentage
// could be computed.
type PriceChange struct {
	Ticker       string    `json:"ticker"`
	Timeframe    Timeframe `json:"timeframe"`
	Absolute     float64   `json:"absolute"`
	Percent      float64   `json:"percent"`
	PercentValid bool      `json:"percent_valid"`
}

// String renders the movement in the fixed human-readable form, e.g.
// "$1.23 (1.23%) for today" or "$-4.10 (N/A%) last month".
func (p *PriceChange) String() string {
	label := string(p.Timeframe)
	if p.Timeframe == TimeframeToday {
		label = "for today"
	}
	if !p.PercentValid {
		return fmt.Sprintf("$%.2f (N/A%%) %s", p.Absolute, label)
	}
	return fmt.Sprintf("$%.2f (%.2f%%) %s", p.Absolute, p.Percent, label)
}

// Direction classifies the movement of a PriceChange.
type Direction int

const (
	DirectionFlat Direction = iota
	DirectionUp
	DirectionDown
)

// Direction classifies the movement from the structured numbers: a
// percentage that rounds to 0.00% is flat, otherwise the sign of the
// absolute change decides.
func (p *PriceChange) Direction() Direction {
	if p.PercentValid && math.Abs(p.Percent) < 0.005 {
		return DirectionFlat
	}
	switch {
	case p.Absolute > 0:
		return DirectionUp
	case p.Absolute < 0:
		return DirectionDown
	}
	return DirectionFlat
}

// Intent is the closed set of query intents the orchestrator dispatches on.
type Intent string

const (
	IntentPriceDropReason    Intent = "price_drop_reason"
	IntentRecentNews         Intent = "recent_news"
	IntentPriceChange        Intent = "price_change"
	IntentCurrentPrice       Intent = "current_price"
	IntentGeneralInformation Intent = "general_information"
	IntentPriceDirection     Intent = "price_direction"
	IntentUnknown            Intent = "unknown"
)

// intentFallbacks is the priority-ordered substring table used when the
// classifier emits a free-text label instead of one from the closed set.
// First match wins.
var intentFallbacks = []struct {
	needle string
	intent Intent
}{
	{"price drop reason", IntentPriceDropReason},
	{"recent news", IntentRecentNews},
	{"price change direction", IntentPriceDirection},
	{"get price change", IntentPriceChange},
	{"current price", IntentCurrentPrice},
	{"general information", IntentGeneralInformation},
	{"price change", IntentPriceChange},
}

// ParseIntent maps a classifier label onto the closed intent set. Exact
// labels are matched first; free-text labels fall back to priority-ordered
// substring matching. Anything unmatched is IntentUnknown.
func ParseIntent(raw string) Intent {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch label {
	case "price_drop_reason", "investigate price drop reason":
		return IntentPriceDropReason
	case "recent_news", "get recent news":
		return IntentRecentNews
	case "price_change", "get price change":
		return IntentPriceChange
	case "current_price", "get current price":
		return IntentCurrentPrice
	case "general_information", "get general information":
		return IntentGeneralInformation
	case "price_direction", "analyze price change direction":
		return IntentPriceDirection
	}

	for _, f := range intentFallbacks {
		if strings.Contains(label, f.needle) {
			return f.intent
		}
	}
	return IntentUnknown
}

// ValidTicker reports whether a resolved symbol looks like a real ticker:
// 1-10 characters and either fully uppercase or containing a "." separator
// (class-share tickers such as BRK.A).
func ValidTicker(ticker string) bool {
	if n := utf8.RuneCountInString(ticker); n < 1 || n > 10 {
		return false
	}
	if strings.Contains(ticker, ".") {
		return true
	}
	hasUpper := false
	for _, r := range ticker {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
