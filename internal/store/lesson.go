package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/codepath/internal/answer"
	"github.com/abhisek/codepath/internal/curriculum"
)

const versionKey = "curriculum_version"

var lessonColumns = []string{"id", "slug", "title", "description", "unit", "ordinal", "level", "xp_reward", "content"}

var questionColumns = []string{"id", "lesson_id", "type", "prompt", "options", "blocks", "code_template", "solution", "concepts"}

type lessonRepo struct {
	db *sql.DB
}

func (r *lessonRepo) ByID(ctx context.Context, id string) (*curriculum.Lesson, error) {
	return r.one(ctx, entsql.EQ("id", id), "id "+id)
}

func (r *lessonRepo) BySlug(ctx context.Context, slug string) (*curriculum.Lesson, error) {
	return r.one(ctx, entsql.EQ("slug", slug), "slug "+slug)
}

func (r *lessonRepo) ByOrdinal(ctx context.Context, ordinal int) (*curriculum.Lesson, error) {
	return r.one(ctx, entsql.EQ("ordinal", ordinal), fmt.Sprintf("ordinal %d", ordinal))
}

func (r *lessonRepo) one(ctx context.Context, p *entsql.Predicate, desc string) (*curriculum.Lesson, error) {
	query, args := sqlite().Select(lessonColumns...).
		From(entsql.Table("lessons")).
		Where(p).
		Limit(1).
		Query()
	l, err := scanLesson(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %s: %w", desc, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query lesson %s: %w", desc, err)
	}
	return l, nil
}

func (r *lessonRepo) List(ctx context.Context) ([]curriculum.Lesson, error) {
	query, args := sqlite().Select(lessonColumns...).
		From(entsql.Table("lessons")).
		OrderBy("ordinal").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []curriculum.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*curriculum.Lesson, error) {
	var (
		l       curriculum.Lesson
		level   string
		content string
	)
	if err := row.Scan(&l.ID, &l.Slug, &l.Title, &l.Description, &l.Unit, &l.Ordinal, &level, &l.XPReward, &content); err != nil {
		return nil, err
	}
	l.Level = curriculum.Level(level)
	if err := decodeList(content, &l.Content); err != nil {
		return nil, fmt.Errorf("decode content of lesson %s: %w", l.ID, err)
	}
	return &l, nil
}

type questionRepo struct {
	db *sql.DB
}

func (r *questionRepo) ByID(ctx context.Context, id string) (*curriculum.Question, error) {
	query, args := sqlite().Select(questionColumns...).
		From(entsql.Table("questions")).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query question %s: %w", id, err)
	}
	return q, nil
}

func (r *questionRepo) ByLesson(ctx context.Context, lessonID string) ([]curriculum.Question, error) {
	query, args := sqlite().Select(questionColumns...).
		From(entsql.Table("questions")).
		Where(entsql.EQ("lesson_id", lessonID)).
		OrderBy("position").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var qs []curriculum.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qs = append(qs, *q)
	}
	return qs, rows.Err()
}

func scanQuestion(row rowScanner) (*curriculum.Question, error) {
	var (
		q                                   curriculum.Question
		typ                                 string
		options, blocks, solution, concepts string
	)
	if err := row.Scan(&q.ID, &q.LessonID, &typ, &q.Prompt, &options, &blocks, &q.CodeTemplate, &solution, &concepts); err != nil {
		return nil, err
	}
	q.Type = answer.Type(typ)
	for _, f := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"options", options, &q.Options},
		{"blocks", blocks, &q.Blocks},
		{"solution", solution, &q.Solution},
		{"concepts", concepts, &q.Concepts},
	} {
		if err := decodeList(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s of question %s: %w", f.name, q.ID, err)
		}
	}
	return &q, nil
}

type curriculumRepo struct {
	db *sql.DB
}

func (r *curriculumRepo) Import(ctx context.Context, c *curriculum.Curriculum) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		keep := make([]any, 0, len(c.Lessons))
		for i := range c.Lessons {
			if err := upsertLesson(ctx, tx, &c.Lessons[i]); err != nil {
				return err
			}
			keep = append(keep, c.Lessons[i].ID)
		}
		if err := pruneLessons(ctx, tx, keep); err != nil {
			return err
		}

		position := make(map[string]int)
		for i := range c.Questions {
			q := &c.Questions[i]
			if err := upsertQuestion(ctx, tx, q, position[q.LessonID]); err != nil {
				return err
			}
			position[q.LessonID]++
		}
		if err := pruneQuestions(ctx, tx, c.Questions); err != nil {
			return err
		}

		query, args := sqlite().Insert("meta").
			Columns("key", "value").
			Values(versionKey, c.Version).
			OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("record curriculum version: %w", err)
		}
		return nil
	})
}

func (r *curriculumRepo) Version(ctx context.Context) (string, error) {
	query, args := sqlite().Select("value").
		From(entsql.Table("meta")).
		Where(entsql.EQ("key", versionKey)).
		Query()
	var v string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query curriculum version: %w", err)
	}
	return v, nil
}

func upsertLesson(ctx context.Context, tx *sql.Tx, l *curriculum.Lesson) error {
	content, err := json.Marshal(nonNil(l.Content))
	if err != nil {
		return fmt.Errorf("encode content of lesson %s: %w", l.Slug, err)
	}
	query, args := sqlite().Insert("lessons").
		Columns(lessonColumns...).
		Values(l.ID, l.Slug, l.Title, l.Description, l.Unit, l.Ordinal, string(l.Level), l.XPReward, string(content)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert lesson %s: %w", l.Slug, err)
	}
	return nil
}

func upsertQuestion(ctx context.Context, tx *sql.Tx, q *curriculum.Question, position int) error {
	encoded := make([]any, 0, 4)
	for _, v := range []any{nonNil(q.Options), nonNil(q.Blocks), q.Solution, nonNil(q.Concepts)} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode question %s: %w", q.ID, err)
		}
		encoded = append(encoded, string(b))
	}
	query, args := sqlite().Insert("questions").
		Columns("id", "lesson_id", "position", "type", "prompt", "options", "blocks", "code_template", "solution", "concepts").
		Values(q.ID, q.LessonID, position, string(q.Type), q.Prompt, encoded[0], encoded[1], q.CodeTemplate, encoded[2], encoded[3]).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert question %s: %w", q.ID, err)
	}
	return nil
}

// pruneLessons deletes lessons not in keep, together with their questions.
func pruneLessons(ctx context.Context, tx *sql.Tx, keep []any) error {
	stale := sqlite().Select("id").From(entsql.Table("lessons"))
	if len(keep) > 0 {
		stale.Where(entsql.NotIn("id", keep...))
	}
	query, args := stale.Query()
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query stale lessons: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan stale lesson: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query stale lessons: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	for _, table := range []struct{ name, column string }{
		{"questions", "lesson_id"},
		{"progress", "lesson_id"},
		{"lessons", "id"},
	} {
		query, args := sqlite().Delete(table.name).Where(entsql.In(table.column, ids...)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete stale %s: %w", table.name, err)
		}
	}
	return nil
}

// pruneQuestions deletes questions that were dropped from kept lessons.
func pruneQuestions(ctx context.Context, tx *sql.Tx, keep []curriculum.Question) error {
	del := sqlite().Delete("questions")
	if len(keep) > 0 {
		ids := make([]any, len(keep))
		for i := range keep {
			ids[i] = keep[i].ID
		}
		del.Where(entsql.NotIn("id", ids...))
	}
	query, args := del.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete stale questions: %w", err)
	}
	return nil
}

// decodeList decodes a JSON column, leaving dst untouched for an empty list
// so that absent slices read back as nil.
func decodeList(raw string, dst any) error {
	if raw == "" || raw == "[]" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// nonNil keeps empty slices encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
