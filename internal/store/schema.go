package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Tables are created in dependency order. Timestamps are stored as
// RFC 3339 text in UTC.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id          TEXT PRIMARY KEY,
		slug        TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		unit        TEXT NOT NULL DEFAULT '',
		ordinal     INTEGER NOT NULL,
		level       TEXT NOT NULL,
		xp_reward   INTEGER NOT NULL DEFAULT 0,
		content     TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS lessons_ordinal ON lessons (ordinal)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id            TEXT PRIMARY KEY,
		lesson_id     TEXT NOT NULL REFERENCES lessons (id),
		position      INTEGER NOT NULL,
		type          TEXT NOT NULL,
		prompt        TEXT NOT NULL,
		options       TEXT NOT NULL DEFAULT '[]',
		blocks        TEXT NOT NULL DEFAULT '[]',
		code_template TEXT NOT NULL DEFAULT '',
		solution      TEXT NOT NULL,
		concepts      TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS questions_lesson ON questions (lesson_id, position)`,
	`CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		username       TEXT NOT NULL DEFAULT '',
		xp             INTEGER NOT NULL DEFAULT 0,
		streak         INTEGER NOT NULL DEFAULT 0,
		last_active_at TEXT,
		version        INTEGER NOT NULL DEFAULT 1,
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_xp ON users (xp DESC)`,
	`CREATE TABLE IF NOT EXISTS concept_mastery (
		user_id        TEXT NOT NULL REFERENCES users (id),
		concept        TEXT NOT NULL,
		mastery_level  INTEGER NOT NULL DEFAULT 0,
		interval_days  INTEGER NOT NULL,
		repetition     INTEGER NOT NULL,
		ease_factor    REAL NOT NULL,
		next_review_at TEXT NOT NULL,
		PRIMARY KEY (user_id, concept)
	)`,
	`CREATE TABLE IF NOT EXISTS question_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL REFERENCES users (id),
		question_id TEXT NOT NULL,
		answered_at TEXT NOT NULL,
		correct     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS question_history_user ON question_history (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS progress (
		user_id         TEXT NOT NULL REFERENCES users (id),
		lesson_id       TEXT NOT NULL,
		status          TEXT NOT NULL,
		best_score      INTEGER NOT NULL DEFAULT 0,
		attempts        INTEGER NOT NULL DEFAULT 0,
		last_attempt_at TEXT,
		PRIMARY KEY (user_id, lesson_id)
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
