// Package store persists render events and per-chat preferences in
// Postgres (pgx) or SQLite (modernc).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"             // sqlite driver
)

var ErrNotFound = sql.ErrNoRows

type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

// DB is a *sql.DB that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor picks the driver for a DSN: postgres URLs go to pgx, anything
// else ("sqlite:path", "file:path", a bare path) to sqlite.
func DialectFor(dsn string) (Dialect, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Postgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return SQLite, strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		return SQLite, strings.TrimPrefix(dsn, "sqlite:")
	default:
		return SQLite, dsn
	}
}

// Open connects, pings and creates the schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	dialect, source := DialectFor(strings.TrimSpace(dsn))
	if source == "" {
		return nil, fmt.Errorf("store: empty DSN")
	}
	sqldb, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if dialect == SQLite {
		// single writer
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(10)
		sqldb.SetMaxIdleConns(10)
		sqldb.SetConnMaxLifetime(1 * time.Hour)
	}

	db := &DB{DB: sqldb, Dialect: dialect}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	stmts := postgresSchema
	if db.Dialect == SQLite {
		stmts = sqliteSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`create table if not exists render_events(
	id          bigserial primary key,
	created_at  timestamptz not null,
	source      text not null,
	kind        text not null,
	chat_id     bigint not null default 0,
	language    text not null default '',
	tier        text not null default '',
	theme       text not null default '',
	format      text not null default '',
	bytes       integer not null default 0,
	duration_ms integer not null default 0,
	error_kind  text not null default ''
)`,
	`create index if not exists render_events_created_at on render_events(created_at)`,
	`create table if not exists chat_prefs(
	chat_id    bigint primary key,
	theme      text not null,
	updated_at timestamptz not null
)`,
}

var sqliteSchema = []string{
	`create table if not exists render_events(
	id          integer primary key autoincrement,
	created_at  timestamp not null,
	source      text not null,
	kind        text not null,
	chat_id     integer not null default 0,
	language    text not null default '',
	tier        text not null default '',
	theme       text not null default '',
	format      text not null default '',
	bytes       integer not null default 0,
	duration_ms integer not null default 0,
	error_kind  text not null default ''
)`,
	`create index if not exists render_events_created_at on render_events(created_at)`,
	`create table if not exists chat_prefs(
	chat_id    integer primary key,
	theme      text not null,
	updated_at timestamp not null
)`,
}

var rePlaceholder = regexp.MustCompile(`\$(\d+)`)

// rebind rewrites $N placeholders into sqlite's ?N form.
func (db *DB) rebind(q string) string {
	if db.Dialect != SQLite {
		return q
	}
	return rePlaceholder.ReplaceAllString(q, "?$1")
}

// SafeDSNSummary describes a DSN without credentials, for logs.
func SafeDSNSummary(dsn string) string {
	dialect, source := DialectFor(dsn)
	if dialect == SQLite {
		return "sqlite " + source
	}
	u, err := url.Parse(source)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
