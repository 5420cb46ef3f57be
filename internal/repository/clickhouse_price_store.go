package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
	applogger "MarketPulse/pkg/logger"
)

const priceTable = "marketpulse.price_ticks"

// CHPriceStore implements PriceStore backed by ClickHouse.
type CHPriceStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client) *CHPriceStore {
	return &CHPriceStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceStore) GetPriceNear(ctx context.Context, symbol string, at time.Time, tolerance time.Duration) (models.PriceTick, bool, error) {
	const q = `
        SELECT symbol, ts, price, volume, market_cap
        FROM ` + priceTable + `
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY abs(toInt64(ts) - toInt64(toDateTime(?)))
        LIMIT 1
    `
	var t models.PriceTick
	row := s.db.QueryRowContext(ctx, q, symbol, at.Add(-tolerance), at.Add(tolerance), at)
	if err := row.Scan(&t.Symbol, &t.Timestamp, &t.Price, &t.Volume, &t.MarketCap); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PriceTick{}, false, nil
		}
		if s.l != nil {
			s.l.Error("clickhouse price_near query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return models.PriceTick{}, false, fmt.Errorf("get price near: %w", err)
	}
	return t, true, nil
}

func (s *CHPriceStore) GetPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceTick, error) {
	start := time.Now()
	const q = `
        SELECT symbol, ts, price, volume, market_cap
        FROM ` + priceTable + `
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse price_history query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get price history: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceTick, 0, 256)
	for rows.Next() {
		var t models.PriceTick
		if err := rows.Scan(&t.Symbol, &t.Timestamp, &t.Price, &t.Volume, &t.MarketCap); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse price_history ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.PriceStore = (*CHPriceStore)(nil)
