package service

import "context"

// TrendSource reports the 24h percent change of a reference market index.
// Implementations own their timeouts and must return an error rather than hang.
type TrendSource interface {
	MarketTrend(ctx context.Context) (float64, error)
}
