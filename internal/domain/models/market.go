package models

import "time"

// EventCategory classifies a news/macro event. Categorization itself happens
// upstream; the engines only rely on this stable enum.
type EventCategory string

const (
	CategoryTariff     EventCategory = "tariff"
	CategoryRegulation EventCategory = "regulation"
	CategoryAdoption   EventCategory = "adoption"
	CategorySecurity   EventCategory = "security"
	CategoryFedPolicy  EventCategory = "fed_policy"
	CategoryPolitical  EventCategory = "political"
	CategoryTech       EventCategory = "tech"
	CategoryMarket     EventCategory = "market"
)

// Categories lists all supported event categories.
var Categories = []EventCategory{
	CategoryTariff, CategoryRegulation, CategoryAdoption, CategorySecurity,
	CategoryFedPolicy, CategoryPolitical, CategoryTech, CategoryMarket,
}

// IsValid reports whether c is a known category.
func (c EventCategory) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ImpactLevel grades the expected market impact of an event.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Weight returns the sentiment-averaging weight for the level (high=3, medium=2, low=1).
func (l ImpactLevel) Weight() float64 {
	switch l {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	default:
		return 1
	}
}

// PriceTick is a single observed price point for an asset. Ticks are immutable
// once written; the engines only read them.
type PriceTick struct {
	Symbol    string    `json:"asset_symbol"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	MarketCap float64   `json:"market_cap"`
}

// NewsEvent is a categorized news/macro event with sentiment metadata.
type NewsEvent struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Category       EventCategory `json:"category"`
	SentimentScore float64       `json:"sentiment_score"` // in [-1, 1]
	ImpactLevel    ImpactLevel   `json:"impact_level"`
	PublishedAt    time.Time     `json:"published_at"`
}
