package store

import (
	"context"
	"time"
)

// Event is one served request.
type Event struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	ChatID     int64     `json:"chat_id,omitempty"`
	Language   string    `json:"language,omitempty"`
	Tier       string    `json:"tier,omitempty"`
	Theme      string    `json:"theme,omitempty"`
	Format     string    `json:"format,omitempty"`
	Bytes      int       `json:"bytes,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	ErrorKind  string    `json:"error_kind,omitempty"`
}

type EventRepo struct{ DB *DB }

func NewEventRepo(db *DB) *EventRepo { return &EventRepo{DB: db} }

// Insert stores e; a zero CreatedAt becomes now. Times are kept in UTC.
func (r *EventRepo) Insert(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	const q = `
insert into render_events(created_at, source, kind, chat_id, language, tier, theme, format, bytes, duration_ms, error_kind)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.DB.ExecContext(ctx, r.DB.rebind(q),
		e.CreatedAt.UTC(), e.Source, e.Kind, e.ChatID, e.Language, e.Tier,
		e.Theme, e.Format, e.Bytes, e.DurationMS, e.ErrorKind)
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
select id, created_at, source, kind, chat_id, language, tier, theme, format, bytes, duration_ms, error_kind
from render_events
order by created_at desc, id desc
limit $1`
	rows, err := r.DB.QueryContext(ctx, r.DB.rebind(q), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Source, &e.Kind, &e.ChatID, &e.Language,
			&e.Tier, &e.Theme, &e.Format, &e.Bytes, &e.DurationMS, &e.ErrorKind); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes events older than age and reports how many went.
func (r *EventRepo) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UTC()
	res, err := r.DB.ExecContext(ctx, r.DB.rebind(`delete from render_events where created_at < $1`), cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
