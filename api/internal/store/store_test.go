package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite:"+filepath.Join(t.TempDir(), "inkify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect Dialect
		source  string
	}{
		{"postgres://u:p@db:5432/inkify", Postgres, "postgres://u:p@db:5432/inkify"},
		{"postgresql://db/inkify", Postgres, "postgresql://db/inkify"},
		{"sqlite:/tmp/x.db", SQLite, "/tmp/x.db"},
		{"sqlite:///tmp/x.db", SQLite, "/tmp/x.db"},
		{"events.db", SQLite, "events.db"},
	}
	for _, tt := range tests {
		d, s := DialectFor(tt.dsn)
		assert.Equal(t, tt.dialect, d, tt.dsn)
		assert.Equal(t, tt.source, s, tt.dsn)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: Postgres}
	lite := &DB{Dialect: SQLite}
	q := "select 1 where a=$1 and b=$12"
	assert.Equal(t, q, pg.rebind(q))
	assert.Equal(t, "select 1 where a=?1 and b=?12", lite.rebind(q))
}

func TestSafeDSNSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=inkify user=u", SafeDSNSummary("postgres://u:secret@db:5432/inkify"))
	assert.Equal(t, "sqlite /tmp/x.db", SafeDSNSummary("sqlite:/tmp/x.db"))
}

func TestEventRepo(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	require.NoError(t, db.EnsureSchema(ctx), "schema creation is idempotent")
	repo := NewEventRepo(db)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Insert(ctx, Event{CreatedAt: old, Source: "http", Kind: "generate", Language: "Go"}))
	require.NoError(t, repo.Insert(ctx, Event{Source: "telegram", Kind: "detect", ChatID: 42, Tier: "classifier", DurationMS: 12}))

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "telegram", got[0].Source)
	assert.Equal(t, int64(42), got[0].ChatID)
	assert.Equal(t, "Go", got[1].Language)
	assert.WithinDuration(t, old, got[1].CreatedAt, time.Second)

	n, err := repo.PurgeOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPrefRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewPrefRepo(openTest(t))

	_, err := repo.Theme(ctx, 7)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	require.NoError(t, repo.SetTheme(ctx, 7, "monokai"))
	require.NoError(t, repo.SetTheme(ctx, 7, "dracula"))
	theme, err := repo.Theme(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "dracula", theme)
}
