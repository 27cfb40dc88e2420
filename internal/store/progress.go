package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/codepath/internal/learner"
)

var progressColumns = []string{"user_id", "lesson_id", "status", "best_score", "attempts", "last_attempt_at"}

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) Get(ctx context.Context, userID, lessonID string) (*learner.Progress, error) {
	query, args := sqlite().Select(progressColumns...).
		From(entsql.Table("progress")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("lesson_id", lessonID))).
		Query()
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress %s/%s: %w", userID, lessonID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query progress %s/%s: %w", userID, lessonID, err)
	}
	return p, nil
}

func (r *progressRepo) ListByUser(ctx context.Context, userID string) ([]learner.Progress, error) {
	query, args := sqlite().Select(progressColumns...).
		From(entsql.Table("progress")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("lesson_id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []learner.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *progressRepo) Complete(ctx context.Context, done, next *learner.Progress) (bool, error) {
	var unlocked bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := upsertProgress(ctx, tx, done); err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		var err error
		unlocked, err = insertProgressIfAbsent(ctx, tx, next)
		return err
	})
	if err != nil {
		return false, err
	}
	return unlocked, nil
}

func upsertProgress(ctx context.Context, q querier, p *learner.Progress) error {
	query, args := progressInsert(p).
		OnConflict(entsql.ConflictColumns("user_id", "lesson_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress %s/%s: %w", p.UserID, p.LessonID, err)
	}
	return nil
}

// insertProgressIfAbsent never overwrites an existing record.
func insertProgressIfAbsent(ctx context.Context, q querier, p *learner.Progress) (bool, error) {
	query, args := progressInsert(p).
		OnConflict(entsql.ConflictColumns("user_id", "lesson_id"), entsql.DoNothing()).
		Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert progress %s/%s: %w", p.UserID, p.LessonID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert progress %s/%s: %w", p.UserID, p.LessonID, err)
	}
	return n > 0, nil
}

func progressInsert(p *learner.Progress) *entsql.InsertBuilder {
	return sqlite().Insert("progress").
		Columns(progressColumns...).
		Values(p.UserID, p.LessonID, string(p.Status), p.BestScore, p.Attempts, nullTime(p.LastAttemptAt))
}

func scanProgress(row rowScanner) (*learner.Progress, error) {
	var (
		p      learner.Progress
		status string
		last   sql.NullString
		err    error
	)
	if err = row.Scan(&p.UserID, &p.LessonID, &status, &p.BestScore, &p.Attempts, &last); err != nil {
		return nil, err
	}
	if p.Status, err = learner.ParseStatus(status); err != nil {
		return nil, err
	}
	if p.LastAttemptAt, err = parseNullTime(last); err != nil {
		return nil, err
	}
	return &p, nil
}
