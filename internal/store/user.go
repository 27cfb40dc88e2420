package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/spacedrep"
)

var userColumns = []string{"id", "username", "xp", "streak", "last_active_at", "version", "created_at"}

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Create(ctx context.Context, u *learner.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Version = 1
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := sqlite().Insert("users").
			Columns(userColumns...).
			Values(u.ID, u.Username, u.XP, u.Streak, nullTime(u.LastActiveAt), u.Version, formatTime(u.CreatedAt)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
		if err := replaceConcepts(ctx, tx, u); err != nil {
			return err
		}
		return appendHistory(ctx, tx, u, 0)
	})
}

func (r *userRepo) Get(ctx context.Context, id string) (*learner.User, error) {
	u, err := getUser(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if u.Concepts, err = loadConcepts(ctx, r.db, id); err != nil {
		return nil, err
	}
	if u.History, err = loadHistory(ctx, r.db, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) Save(ctx context.Context, u *learner.User) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := sqlite().Update("users").
			Set("username", u.Username).
			Set("xp", u.XP).
			Set("streak", u.Streak).
			Set("last_active_at", nullTime(u.LastActiveAt)).
			Set("version", u.Version+1).
			Where(entsql.And(entsql.EQ("id", u.ID), entsql.EQ("version", u.Version))).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update user %s: %w", u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update user %s: %w", u.ID, err)
		}
		if n == 0 {
			if _, err := getUser(ctx, tx, u.ID); err != nil {
				return err
			}
			return fmt.Errorf("save user %s at version %d: %w", u.ID, u.Version, ErrConflict)
		}

		if err := replaceConcepts(ctx, tx, u); err != nil {
			return err
		}
		stored, err := countRows(ctx, tx, "question_history", entsql.EQ("user_id", u.ID))
		if err != nil {
			return err
		}
		return appendHistory(ctx, tx, u, stored)
	})
	if err != nil {
		return err
	}
	u.Version++
	return nil
}

func (r *userRepo) Top(ctx context.Context, n int) ([]learner.User, error) {
	query, args := sqlite().Select(userColumns...).
		From(entsql.Table("users")).
		OrderBy(entsql.Desc("xp"), entsql.Asc("created_at"), entsql.Asc("id")).
		Limit(n).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}
	defer rows.Close()

	var users []learner.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) CountAbove(ctx context.Context, xp int) (int, error) {
	return countRows(ctx, r.db, "users", entsql.GT("xp", xp))
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "users", nil)
}

func (r *userRepo) Reset(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := getUser(ctx, tx, id); err != nil {
			return err
		}
		for _, table := range []string{"concept_mastery", "question_history", "progress"} {
			query, args := sqlite().Delete(table).Where(entsql.EQ("user_id", id)).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		query, args := sqlite().Update("users").
			Set("xp", 0).
			Set("streak", 0).
			SetNull("last_active_at").
			Add("version", 1).
			Where(entsql.EQ("id", id)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset user %s: %w", id, err)
		}
		return nil
	})
}

func getUser(ctx context.Context, q querier, id string) (*learner.User, error) {
	query, args := sqlite().Select(userColumns...).
		From(entsql.Table("users")).
		Where(entsql.EQ("id", id)).
		Query()
	u, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*learner.User, error) {
	var (
		u          learner.User
		lastActive sql.NullString
		createdAt  string
		err        error
	)
	if err = row.Scan(&u.ID, &u.Username, &u.XP, &u.Streak, &lastActive, &u.Version, &createdAt); err != nil {
		return nil, err
	}
	if u.LastActiveAt, err = parseNullTime(lastActive); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func loadConcepts(ctx context.Context, q querier, userID string) ([]learner.ConceptMastery, error) {
	query, args := sqlite().Select("concept", "mastery_level", "interval_days", "repetition", "ease_factor", "next_review_at").
		From(entsql.Table("concept_mastery")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("concept").
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()

	var out []learner.ConceptMastery
	for rows.Next() {
		var (
			cm   learner.ConceptMastery
			next string
		)
		if err := rows.Scan(&cm.Concept, &cm.MasteryLevel, &cm.Interval, &cm.Repetition, &cm.EaseFactor, &next); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		if cm.NextReviewAt, err = parseTime(next); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func loadHistory(ctx context.Context, q querier, userID string) ([]learner.QuestionHistory, error) {
	query, args := sqlite().Select("question_id", "answered_at", "correct").
		From(entsql.Table("question_history")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("id").
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []learner.QuestionHistory
	for rows.Next() {
		var (
			h  learner.QuestionHistory
			at string
		)
		if err := rows.Scan(&h.QuestionID, &at, &h.Correct); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if h.AnsweredAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// replaceConcepts rewrites the user's concept rows from u.Concepts.
func replaceConcepts(ctx context.Context, tx *sql.Tx, u *learner.User) error {
	query, args := sqlite().Delete("concept_mastery").Where(entsql.EQ("user_id", u.ID)).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear concepts: %w", err)
	}
	if len(u.Concepts) == 0 {
		return nil
	}

	ins := sqlite().Insert("concept_mastery").
		Columns("user_id", "concept", "mastery_level", "interval_days", "repetition", "ease_factor", "next_review_at")
	for _, cm := range u.Concepts {
		ins.Values(u.ID, cm.Concept, cm.MasteryLevel, cm.Interval, cm.Repetition, clampEase(cm.EaseFactor), formatTime(cm.NextReviewAt))
	}
	query, args = ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert concepts: %w", err)
	}
	return nil
}

// appendHistory inserts u.History[stored:]. History is append-only, so a
// user holding fewer entries than are stored is rejected.
func appendHistory(ctx context.Context, tx *sql.Tx, u *learner.User, stored int) error {
	if len(u.History) < stored {
		return fmt.Errorf("user %s history has %d entries, %d stored: history is append-only", u.ID, len(u.History), stored)
	}
	fresh := u.History[stored:]
	if len(fresh) == 0 {
		return nil
	}

	ins := sqlite().Insert("question_history").Columns("user_id", "question_id", "answered_at", "correct")
	for _, h := range fresh {
		ins.Values(u.ID, h.QuestionID, formatTime(h.AnsweredAt), h.Correct)
	}
	query, args := ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func countRows(ctx context.Context, q querier, table string, p *entsql.Predicate) (int, error) {
	sel := sqlite().Select(entsql.Count("*")).From(entsql.Table(table))
	if p != nil {
		sel.Where(p)
	}
	query, args := sel.Query()
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func clampEase(ef float64) float64 {
	if ef < spacedrep.MinEaseFactor {
		return spacedrep.MinEaseFactor
	}
	return ef
}
