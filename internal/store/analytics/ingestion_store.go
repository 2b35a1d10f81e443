package analytics

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/pkg/errors"
)

const DefaultListLimit = 50

type IngestionStore interface {
	RecordIngestion(ctx context.Context, event models.IngestionEvent) error
	GetIngestions(ctx context.Context, channelID string, limit int) ([]models.IngestionEvent, error)
}

type ClickhouseIngestionStore struct {
	conn driver.Conn
}

func NewClickhouseIngestionStore(conn driver.Conn) *ClickhouseIngestionStore {
	return &ClickhouseIngestionStore{conn: conn}
}

func (c *ClickhouseIngestionStore) RecordIngestion(ctx context.Context, event models.IngestionEvent) error {
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO ingestion_events")
	if err != nil {
		return errors.Wrap(err, "failed to prepare ingestion batch")
	}

	if err := batch.AppendStruct(&event); err != nil {
		_ = batch.Abort()
		return errors.Wrap(err, "failed to append ingestion event")
	}

	return errors.Wrap(batch.Send(), "failed to send ingestion batch")
}

// GetIngestions lists the most recent events, newest first. An empty
// channelID lists events for every channel.
func (c *ClickhouseIngestionStore) GetIngestions(ctx context.Context, channelID string, limit int) ([]models.IngestionEvent, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, identifier, channel_id, status, video_count, started_at, duration_ms
		FROM ingestion_events
	`
	args := []any{}
	if channelID != "" {
		query += " WHERE channel_id = ?"
		args = append(args, channelID)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ingestion events")
	}
	defer rows.Close()

	events := []models.IngestionEvent{}
	for rows.Next() {
		var event models.IngestionEvent
		if err := rows.ScanStruct(&event); err != nil {
			return nil, errors.Wrap(err, "failed to scan ingestion event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over ingestion rows")
	}

	return events, nil
}
