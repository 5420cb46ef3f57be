package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

const patternTable = "marketpulse.correlation_patterns"

// CHPatternStore implements PatternStore on a ReplacingMergeTree keyed by
// (event_id, symbol, lag_hours). Upsert inserts a new version row; reads use
// FINAL so the latest version wins. Patterns are never deleted here.
type CHPatternStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPatternStore(ch *pkgch.Client) *CHPatternStore {
	return &CHPatternStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPatternStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPatternStore) Get(ctx context.Context, key models.PatternKey) (models.CorrelationPattern, bool, error) {
	const q = `
        SELECT event_type, event_id, symbol, change_pct, lag_hours, confidence, occurrences, event_ts
        FROM ` + patternTable + ` FINAL
        WHERE event_id = ? AND symbol = ? AND lag_hours = ?
    `
	var p models.CorrelationPattern
	var eventType string
	row := s.db.QueryRowContext(ctx, q, key.EventID, key.AssetSymbol, key.TimeLagHours)
	if err := row.Scan(&eventType, &p.EventID, &p.AssetSymbol, &p.PriceChangePercent,
		&p.TimeLagHours, &p.ConfidenceScore, &p.OccurrenceCount, &p.EventTimestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CorrelationPattern{}, false, nil
		}
		return models.CorrelationPattern{}, false, fmt.Errorf("get pattern: %w", err)
	}
	p.EventType = models.EventCategory(eventType)
	return p, true, nil
}

func (s *CHPatternStore) Upsert(ctx context.Context, p models.CorrelationPattern) error {
	const q = `
        INSERT INTO ` + patternTable + `
            (event_type, event_id, symbol, change_pct, lag_hours, confidence, occurrences, event_ts, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		string(p.EventType),
		p.EventID,
		p.AssetSymbol,
		p.PriceChangePercent,
		p.TimeLagHours,
		p.ConfidenceScore,
		p.OccurrenceCount,
		p.EventTimestamp,
		uint64(time.Now().UnixNano()),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse pattern upsert error",
				applogger.String("event_id", p.EventID),
				applogger.String("symbol", p.AssetSymbol),
				applogger.Int("lag_hours", p.TimeLagHours),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("upsert pattern: %w", err)
	}
	return nil
}

func (s *CHPatternStore) Query(ctx context.Context, f domrepo.PatternFilter) ([]models.CorrelationPattern, error) {
	var sb strings.Builder
	sb.WriteString(`
        SELECT event_type, event_id, symbol, change_pct, lag_hours, confidence, occurrences, event_ts
        FROM ` + patternTable + ` FINAL
        WHERE 1 = 1
    `)
	args := make([]interface{}, 0, 3)
	if f.Category != "" {
		sb.WriteString(" AND event_type = ?")
		args = append(args, string(f.Category))
	}
	if f.MinConfidence > 0 {
		sb.WriteString(" AND confidence >= ?")
		args = append(args, f.MinConfidence)
	}
	sb.WriteString(" ORDER BY confidence DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse pattern query error",
				applogger.String("category", string(f.Category)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	out := make([]models.CorrelationPattern, 0, 64)
	for rows.Next() {
		var p models.CorrelationPattern
		var eventType string
		if err := rows.Scan(&eventType, &p.EventID, &p.AssetSymbol, &p.PriceChangePercent,
			&p.TimeLagHours, &p.ConfidenceScore, &p.OccurrenceCount, &p.EventTimestamp); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p.EventType = models.EventCategory(eventType)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.PatternStore = (*CHPatternStore)(nil)
