package store

import (
	"context"
	"time"
)

// PrefRepo keeps the theme each Telegram chat picked.
type PrefRepo struct{ DB *DB }

func NewPrefRepo(db *DB) *PrefRepo { return &PrefRepo{DB: db} }

// Theme returns ErrNotFound when the chat never picked one.
func (r *PrefRepo) Theme(ctx context.Context, chatID int64) (string, error) {
	var theme string
	err := r.DB.QueryRowContext(ctx, r.DB.rebind(`select theme from chat_prefs where chat_id=$1`), chatID).Scan(&theme)
	return theme, err
}

// SetTheme upserts the chat's theme. PK: chat_id.
func (r *PrefRepo) SetTheme(ctx context.Context, chatID int64, theme string) error {
	const q = `
insert into chat_prefs(chat_id, theme, updated_at)
values ($1,$2,$3)
on conflict (chat_id)
do update set theme=excluded.theme, updated_at=excluded.updated_at`
	_, err := r.DB.ExecContext(ctx, r.DB.rebind(q), chatID, theme, time.Now().UTC())
	return err
}
