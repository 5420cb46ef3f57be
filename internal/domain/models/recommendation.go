package models

import (
	"math"
	"time"
)

// Action is the discrete per-asset trading-style decision.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Confidence bounds for recommendations and trend predictions, in percent.
const (
	MinConfidencePercent = 50
	MaxConfidencePercent = 95
)

// Recommendation is one decision for one asset. TargetPrice is set only for
// BUY, StopLoss only for BUY/SELL. A new batch supersedes the previous active
// batch wholesale.
type Recommendation struct {
	ID                string    `json:"id"`
	BatchID           string    `json:"batch_id"`
	AssetSymbol       string    `json:"asset_symbol"`
	Action            Action    `json:"action"`
	ConfidencePercent float64   `json:"confidence_percent"`
	Reasoning         []string  `json:"reasoning"`
	TargetPrice       *float64  `json:"target_price,omitempty"`
	StopLoss          *float64  `json:"stop_loss,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	IsActive          bool      `json:"is_active"`
}

// TrendDirection is the market-wide directional call.
type TrendDirection string

const (
	TrendPositive TrendDirection = "positive"
	TrendNeutral  TrendDirection = "neutral"
	TrendNegative TrendDirection = "negative"
)

// TrendPrediction is one market-wide call. History is append-only.
type TrendPrediction struct {
	ID                 string         `json:"id"`
	PredictionType     TrendDirection `json:"prediction_type"`
	ConfidencePercent  float64        `json:"confidence_percent"`
	Reasoning          string         `json:"reasoning"`
	AveragePriceChange float64        `json:"average_price_change"`
	BullishCount       int            `json:"bullish_count"`
	BearishCount       int            `json:"bearish_count"`
	NeutralCount       int            `json:"neutral_count"`
	NewsSentimentScore float64        `json:"news_sentiment_score"`
	MacroEventsSummary string         `json:"macro_events_summary"`
	PredictedAt        time.Time      `json:"predicted_at"`
}

// ClampPercent bounds a confidence percentage to [50, 95].
func ClampPercent(v float64) float64 {
	return math.Min(math.Max(v, MinConfidencePercent), MaxConfidencePercent)
}
