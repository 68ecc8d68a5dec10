package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Resona/internal/domain/models"
	pkgch "Resona/pkg/clickhouse"
	applogger "Resona/pkg/logger"
)

// matchEventsTable holds every recorded match keyed by event time.
const matchEventsTable = "resona.match_events"

// CHMatchSource implements MatchSource backed by ClickHouse.
type CHMatchSource struct {
	db *sql.DB
	l  *applogger.Logger

	// lookback bounds GetAll so a long-lived deployment does not
	// pull the full table into memory on every insight request.
	lookback time.Duration
}

func NewCHMatchSource(ch *pkgch.Client) *CHMatchSource {
	return &CHMatchSource{db: ch.DB(), lookback: 90 * 24 * time.Hour}
}

// SetLogger injects a structured logger.
func (s *CHMatchSource) SetLogger(l *applogger.Logger) { s.l = l }

// SetLookback overrides the GetAll horizon.
func (s *CHMatchSource) SetLookback(d time.Duration) {
	if d > 0 {
		s.lookback = d
	}
}

func (s *CHMatchSource) GetAll(ctx context.Context) ([]models.MatchRecord, error) {
	start := time.Now()
	since := time.Now().Add(-s.lookback)
	const qtpl = `
        SELECT chosen, matched, ts
        FROM %s
        WHERE ts >= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, matchEventsTable)
	rows, err := s.db.QueryContext(ctx, q, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_all query error",
				applogger.String("table", matchEventsTable),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get matches: %w", err)
	}
	defer rows.Close()

	out := make([]models.MatchRecord, 0, 1024)
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.ChosenNumber, &m.MatchedNumber, &m.Timestamp); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_all scan error",
					applogger.String("table", matchEventsTable),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_all rows error",
				applogger.String("table", matchEventsTable),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_all ok",
			applogger.String("table", matchEventsTable),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMatchSource) GetMatches(ctx context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT chosen, matched, ts
        FROM %s
        WHERE ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, matchEventsTable)
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_matches query error",
				applogger.String("table", matchEventsTable),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get matches: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.MatchRecord, 0, limit)
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.ChosenNumber, &m.MatchedNumber, &m.Timestamp); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_matches scan error",
					applogger.String("table", matchEventsTable),
					applogger.Int("limit", limit),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan match: %w", err)
		}
		tmp = append(tmp, m)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_matches rows error",
				applogger.String("table", matchEventsTable),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse get_matches ok",
			applogger.String("table", matchEventsTable),
			applogger.Int("limit", limit),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}
