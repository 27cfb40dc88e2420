package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/codepath/internal/curriculum"
	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/leaderboard"
	"github.com/abhisek/codepath/internal/spacedrep"
	"github.com/abhisek/codepath/internal/store"
)

// ErrInvalidUserID is returned for a user id that is neither known nor a
// well-formed UUID.
var ErrInvalidUserID = errors.New("invalid user id")

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// LessonSummary is a curriculum entry as seen by one user.
type LessonSummary struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Level       curriculum.Level `json:"level"`
	Order       int              `json:"order"`
	XPReward    int              `json:"xpReward"`
	Status      learner.Status   `json:"status"`
	BestScore   int              `json:"bestScore"`
}

// Curriculum lists every lesson in order with the user's status for it.
func (s *Service) Curriculum(ctx context.Context, userID string) ([]LessonSummary, error) {
	lessons, err := s.repos.Lessons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	records, err := s.repos.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	byLesson := make(map[string]*learner.Progress, len(records))
	for i := range records {
		byLesson[records[i].LessonID] = &records[i]
	}

	out := make([]LessonSummary, 0, len(lessons))
	for _, l := range lessons {
		p := byLesson[l.ID]
		sum := LessonSummary{
			ID:          l.ID,
			Slug:        l.Slug,
			Title:       l.Title,
			Description: l.Description,
			Unit:        l.Unit,
			Level:       l.Level,
			Order:       l.Ordinal,
			XPReward:    l.XPReward,
			Status:      learner.EffectiveStatus(p, l.Ordinal),
		}
		if p != nil {
			sum.BestScore = p.BestScore
		}
		out = append(out, sum)
	}
	return out, nil
}

// LessonDetail is a lesson with its questions, solutions removed.
type LessonDetail struct {
	Lesson    curriculum.Lesson           `json:"lesson"`
	Questions []curriculum.PublicQuestion `json:"questions"`
}

// Lesson returns the lesson with the given slug for display.
func (s *Service) Lesson(ctx context.Context, slug string) (*LessonDetail, error) {
	l, err := s.repos.Lessons.BySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	qs, err := s.repos.Questions.ByLesson(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	d := &LessonDetail{Lesson: *l, Questions: make([]curriculum.PublicQuestion, 0, len(qs))}
	for i := range qs {
		d.Questions = append(d.Questions, qs[i].Public())
	}
	return d, nil
}

// DueConcept is an entry of the review queue.
type DueConcept struct {
	Concept      string                 `json:"concept"`
	Status       spacedrep.ReviewStatus `json:"status"`
	OverdueDays  float64                `json:"overdueDays"`
	Interval     int                    `json:"interval"`
	Repetition   int                    `json:"repetition"`
	EaseFactor   float64                `json:"easeFactor"`
	NextReviewAt time.Time              `json:"nextReviewAt"`
}

// DueConcepts returns the user's concepts that are due for review, most
// overdue first.
func (s *Service) DueConcepts(ctx context.Context, userID string) ([]DueConcept, error) {
	u, err := s.repos.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	now := s.now()
	due := u.DueConcepts(now)
	out := make([]DueConcept, 0, len(due))
	for _, cm := range due {
		out = append(out, DueConcept{
			Concept:      cm.Concept,
			Status:       cm.Status(now),
			OverdueDays:  cm.OverdueDays(now),
			Interval:     cm.Interval,
			Repetition:   cm.Repetition,
			EaseFactor:   cm.EaseFactor,
			NextReviewAt: cm.NextReviewAt,
		})
	}
	return out, nil
}

// Leaderboard ranks users by XP and places the requesting user.
func (s *Service) Leaderboard(ctx context.Context, userID string) (*leaderboard.Board, error) {
	u, err := s.repos.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	top, err := s.repos.Users.Top(ctx, s.size)
	if err != nil {
		return nil, fmt.Errorf("load top users: %w", err)
	}
	higher, err := s.repos.Users.CountAbove(ctx, u.XP)
	if err != nil {
		return nil, fmt.Errorf("rank user: %w", err)
	}
	total, err := s.repos.Users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	players := make([]leaderboard.Player, 0, len(top))
	for _, t := range top {
		players = append(players, leaderboard.Player{ID: t.ID, Username: t.Username, XP: t.XP, Streak: t.Streak})
	}
	board := leaderboard.Build(players, userID, higher, total)
	return &board, nil
}

// Profile is the user's own summary.
type Profile struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	XP           int              `json:"xp"`
	Streak       int              `json:"streak"`
	Status       leaderboard.Tier `json:"status"`
	LastActiveAt *time.Time       `json:"lastActiveAt,omitempty"`
	Answered     int              `json:"answered"`
	Concepts     []ConceptSummary `json:"concepts"`
	Completed    int              `json:"completedLessons"`
}

// ConceptSummary is a concept's schedule with its review status at the time
// of the request.
type ConceptSummary struct {
	learner.ConceptMastery
	Status          spacedrep.ReviewStatus `json:"status"`
	DaysUntilReview int                    `json:"daysUntilReview"`
}

// Me returns the user's profile.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.repos.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	records, err := s.repos.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	completed := 0
	for _, p := range records {
		if p.Status == learner.StatusCompleted {
			completed++
		}
	}
	now := s.now()
	concepts := make([]ConceptSummary, 0, len(u.Concepts))
	for _, cm := range u.SortedConcepts() {
		concepts = append(concepts, ConceptSummary{
			ConceptMastery:  cm,
			Status:          cm.Status(now),
			DaysUntilReview: cm.DaysUntilReview(now),
		})
	}
	return &Profile{
		ID:           u.ID,
		Username:     u.Username,
		XP:           u.XP,
		Streak:       u.Streak,
		Status:       leaderboard.TierFor(u.XP),
		LastActiveAt: u.LastActiveAt,
		Answered:     len(u.History),
		Concepts:     concepts,
		Completed:    completed,
	}, nil
}

// EnsureUser returns the user with the given id, creating an anonymous
// account when id is empty or unknown. created reports whether a user was
// made.
func (s *Service) EnsureUser(ctx context.Context, id string) (u *learner.User, created bool, err error) {
	if id != "" {
		u, err = s.repos.Users.Get(ctx, id)
		if err == nil {
			return u, false, nil
		}
		if !isNotFound(err) {
			return nil, false, fmt.Errorf("load user: %w", err)
		}
		if _, perr := uuid.Parse(id); perr != nil {
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidUserID, id)
		}
	} else {
		id = uuid.NewString()
	}

	u = &learner.User{
		ID:        id,
		Username:  "learner-" + id[:8],
		CreatedAt: s.now().UTC(),
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", "user", id)
	return u, true, nil
}
