// Package syncx records an append-only log of marking events for
// downstream consumers.
package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types.
const (
	JobSaved       = "JobSaved"
	DocumentMarked = "DocumentMarked"
)

type Event struct {
	ID        int64
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Append stores one event. Payload is marshalled to JSON.
func (r *EventRepo) Append(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}

// Since returns events with an id greater than after, oldest first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, typ, key, data, created_at FROM event_log WHERE id > $1 ORDER BY id LIMIT $2`,
		after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
