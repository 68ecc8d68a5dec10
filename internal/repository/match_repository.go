package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"Resona/internal/domain/models"
	"Resona/internal/domain/repository"
	pkgkafka "Resona/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, m *models.MatchRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, chosen, matched, event_id) VALUES (?, ?, ?, ?)", s.table)
	// Idempotency placeholder: event_id derived from number+timestamp
	eventID := fmt.Sprintf("%d-%d", m.ChosenNumber, m.Timestamp.Unix())
	_, err := s.db.ExecContext(ctx, q,
		m.Timestamp,
		m.ChosenNumber,
		m.MatchedNumber,
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, records []*models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, m := range records[start:end] {
			if m == nil || m.Timestamp.IsZero() {
				continue
			}
			eventID := fmt.Sprintf("%d-%d", m.ChosenNumber, m.Timestamp.Unix())
			values = append(values, "(?, ?, ?, ?)")
			args = append(args,
				m.Timestamp,
				m.ChosenNumber,
				m.MatchedNumber,
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, chosen, matched, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	q := fmt.Sprintf("SELECT chosen, matched, ts FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.ChosenNumber, &m.MatchedNumber, &m.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, m *models.MatchRecord) error {
	return p.producer.Publish(ctx, p.topic, matchKey(m), map[string]interface{}{
		"chosen":  m.ChosenNumber,
		"matched": m.MatchedNumber,
		"t":       m.Timestamp.Unix(),
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, records []*models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(records))
	for i, m := range records {
		msgs[i] = pkgkafka.Message{
			Key: matchKey(m),
			Value: map[string]interface{}{
				"chosen":  m.ChosenNumber,
				"matched": m.MatchedNumber,
				"t":       m.Timestamp.Unix(),
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// matchKey partitions by chosen number so per-number ordering holds.
func matchKey(m *models.MatchRecord) []byte {
	return []byte{byte('0' + m.ChosenNumber)}
}
