package models

// Requests for engine HTTP endpoints. Defined in domain for consistency and reuse.

type CorrelationsRequest struct {
	Category      string  `query:"category" json:"category" validate:"required,oneof=tariff regulation adoption security fed_policy political tech market"`
	MinConfidence float64 `query:"min_confidence" json:"min_confidence" default:"0.7" validate:"gte=0,lte=1"`
	Limit         int     `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

type PredictImpactRequest struct {
	Category       string  `json:"category" validate:"required,oneof=tariff regulation adoption security fed_policy political tech market"`
	SentimentScore float64 `json:"sentiment_score" validate:"gte=-1,lte=1"`
	ImpactLevel    string  `json:"impact_level" default:"medium" validate:"oneof=low medium high"`
}

type TrendHistoryRequest struct {
	N int `query:"n" json:"n" default:"10" validate:"gte=1,lte=500"`
}
