package market

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	domsvc "MarketPulse/internal/domain/service"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
)

// HTTPTrendSource reads the 24h percent change of a reference index from a
// Finnhub-style quote endpoint. Transient failures are retried with bounded
// exponential backoff; callers treat a final error as "trend unavailable".
type HTTPTrendSource struct {
	client *xhttp.Client
	url    string
	symbol string
	apiKey string
}

func NewHTTPTrendSource(cfg *config.Config) *HTTPTrendSource {
	timeout := cfg.Market.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPTrendSource{
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		url:    cfg.Market.QuoteURL,
		symbol: cfg.Market.IndexSymbol,
		apiKey: cfg.Market.APIKey,
	}
}

type quoteResp struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
}

func (s *HTTPTrendSource) MarketTrend(ctx context.Context) (float64, error) {
	if s.url == "" {
		return 0, fmt.Errorf("market quote url not configured")
	}

	var q quoteResp
	fetch := func() error {
		return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    s.url,
			QueryParams: map[string][]string{
				"symbol": {s.symbol},
				"token":  {s.apiKey},
			},
		}, &q)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(fetch, bo); err != nil {
		return 0, fmt.Errorf("fetch market trend: %w", err)
	}
	return q.PercentChange, nil
}

var _ domsvc.TrendSource = (*HTTPTrendSource)(nil)
