package store

import (
	"context"
	"errors"

	"github.com/abhisek/codepath/internal/curriculum"
	"github.com/abhisek/codepath/internal/learner"
)

var (
	// ErrNotFound is returned, wrapped, when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a user was modified after it was loaded.
	ErrConflict = errors.New("concurrent modification")
)

// LessonRepo reads the lesson catalog.
type LessonRepo interface {
	ByID(ctx context.Context, id string) (*curriculum.Lesson, error)
	BySlug(ctx context.Context, slug string) (*curriculum.Lesson, error)
	ByOrdinal(ctx context.Context, ordinal int) (*curriculum.Lesson, error)

	// List returns all lessons ordered by ordinal.
	List(ctx context.Context) ([]curriculum.Lesson, error)
}

// QuestionRepo reads questions.
type QuestionRepo interface {
	ByID(ctx context.Context, id string) (*curriculum.Question, error)

	// ByLesson returns a lesson's questions in curriculum file order.
	ByLesson(ctx context.Context, lessonID string) ([]curriculum.Question, error)
}

// CurriculumRepo replaces the catalog from a curriculum file.
type CurriculumRepo interface {
	// Import upserts every lesson and question and removes catalog entries
	// the curriculum no longer contains, then records its version.
	Import(ctx context.Context, c *curriculum.Curriculum) error

	// Version returns the imported curriculum version, or "" if none.
	Version(ctx context.Context) (string, error)
}

// UserRepo persists the learner aggregate.
type UserRepo interface {
	Create(ctx context.Context, u *learner.User) error

	// Get loads a user with history and concept mastery.
	Get(ctx context.Context, id string) (*learner.User, error)

	// Save writes the user, its concept mastery and any history entries
	// appended since it was loaded, as one transaction. It fails with
	// ErrConflict if the stored version no longer matches u.Version.
	Save(ctx context.Context, u *learner.User) error

	// Top returns up to n users by XP descending, without history or
	// concepts.
	Top(ctx context.Context, n int) ([]learner.User, error)

	// CountAbove counts users with strictly more XP than xp.
	CountAbove(ctx context.Context, xp int) (int, error)
	Count(ctx context.Context) (int, error)

	// Reset clears XP, streak, history, mastery and lesson progress.
	Reset(ctx context.Context, id string) error
}

// ProgressRepo persists per-lesson progress.
type ProgressRepo interface {
	Get(ctx context.Context, userID, lessonID string) (*learner.Progress, error)
	ListByUser(ctx context.Context, userID string) ([]learner.Progress, error)

	// Complete stores done, replacing any record for its key, and inserts
	// next if no record exists for next's key, as one transaction. next may
	// be nil. It reports whether next was inserted.
	Complete(ctx context.Context, done, next *learner.Progress) (bool, error)
}
