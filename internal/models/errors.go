package models

import "errors"

// Sentinel errors distinguishing failure kinds across the query pipeline.
// Every operation that previously collapsed failures into a null result now
// returns one of these (possibly wrapped), so callers and tests can tell
// "provider had no data" from "provider call failed".
var (
	// ErrNoData means the provider responded but carried no usable data
	// (empty quote block, missing price field, no history window).
	ErrNoData = errors.New("no data available")

	// ErrNoNews means the news feed key was absent: the provider found no
	// articles for the ticker. Distinct from a transport failure.
	ErrNoNews = errors.New("no news found")

	// ErrUnresolvedTicker means the language model produced nothing that
	// passes ticker validation.
	ErrUnresolvedTicker = errors.New("ticker could not be resolved")

	// ErrUnsupportedTimeframe means the timeframe is outside
	// {today, last week, last month, last year}.
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")

	// ErrInsufficientData means a dependent sub-fetch failed, so a combined
	// operation (such as narrative analysis) could not be attempted.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)
