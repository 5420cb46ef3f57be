package usecase

import (
	"time"

	"MarketPulse/internal/domain/models"
)

// momentumTolerance is how far a reference tick may sit from the exact
// lookback moment and still be used for a momentum calculation.
const momentumTolerance = 3 * time.Hour

// priceAt returns the price of the tick nearest to target within
// momentumTolerance, searching a most-recent-first history.
func priceAt(history []models.PriceTick, target time.Time) (float64, bool) {
	best := -1
	var bestDist time.Duration
	for i, t := range history {
		d := t.Timestamp.Sub(target)
		if d < 0 {
			d = -d
		}
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 || bestDist > momentumTolerance {
		return 0, false
	}
	return history[best].Price, true
}

// percentChange computes the percent change between the most recent tick and
// the tick nearest to now-lookback.
func percentChange(history []models.PriceTick, now time.Time, lookback time.Duration) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	current := history[0].Price
	past, ok := priceAt(history, now.Add(-lookback))
	if !ok || past == 0 {
		return 0, false
	}
	return (current - past) / past * 100, true
}

// weightedSentiment averages news sentiment with each item weighted by its
// impact level (high=3, medium=2, low=1).
func weightedSentiment(news []models.NewsEvent) float64 {
	var sum, weights float64
	for _, n := range news {
		w := n.ImpactLevel.Weight()
		sum += n.SentimentScore * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// meanSentiment is the unweighted average sentiment, 0 when there is no news.
func meanSentiment(news []models.NewsEvent) float64 {
	if len(news) == 0 {
		return 0
	}
	var sum float64
	for _, n := range news {
		sum += n.SentimentScore
	}
	return sum / float64(len(news))
}
