package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

const eventTable = "marketpulse.news_events"

// CHEventStore implements EventStore backed by ClickHouse.
type CHEventStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHEventStore(ch *pkgch.Client) *CHEventStore {
	return &CHEventStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHEventStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHEventStore) GetEvents(ctx context.Context, from, to time.Time) ([]models.NewsEvent, error) {
	const q = `
        SELECT id, title, category, sentiment_score, impact_level, published_at
        FROM ` + eventTable + `
        WHERE published_at >= ? AND published_at <= ?
        ORDER BY published_at DESC
    `
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_events query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get events: %w", err)
	}
	defer rows.Close()

	out := make([]models.NewsEvent, 0, 64)
	for rows.Next() {
		var e models.NewsEvent
		var category, impact string
		if err := rows.Scan(&e.ID, &e.Title, &category, &e.SentimentScore, &impact, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Category = models.EventCategory(category)
		e.ImpactLevel = models.ImpactLevel(impact)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.EventStore = (*CHEventStore)(nil)
