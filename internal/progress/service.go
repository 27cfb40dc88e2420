// Package progress is the progress and mastery engine. It grades answers,
// reschedules concept reviews, awards XP and streaks, and moves lessons
// through the locked, unlocked and completed states.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/codepath/internal/answer"
	"github.com/abhisek/codepath/internal/learner"
	"github.com/abhisek/codepath/internal/leaderboard"
	"github.com/abhisek/codepath/internal/logger"
	"github.com/abhisek/codepath/internal/spacedrep"
	"github.com/abhisek/codepath/internal/store"
	"github.com/abhisek/codepath/internal/xp"
)

// Repos are the persistence collaborators the service needs.
type Repos struct {
	Lessons   store.LessonRepo
	Questions store.QuestionRepo
	Users     store.UserRepo
	Progress  store.ProgressRepo
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// Location is the time zone streak days are counted in. Default: UTC.
	Location *time.Location

	// LeaderboardSize caps the leaderboard. Default: leaderboard.DefaultSize.
	LeaderboardSize int

	Logger *logger.Logger
}

// Service runs progress operations against the repositories. It holds no
// per-user state and is safe for concurrent use; concurrent writes to one
// user are detected by the store and surface as store.ErrConflict.
type Service struct {
	repos  Repos
	now    func() time.Time
	loc    *time.Location
	size   int
	logger *logger.Logger
}

// NewService creates a Service.
func NewService(repos Repos, opts Options) *Service {
	s := &Service{
		repos:  repos,
		now:    opts.Now,
		loc:    opts.Location,
		size:   opts.LeaderboardSize,
		logger: opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.size <= 0 {
		s.size = leaderboard.DefaultSize
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// AnswerResult is the outcome of one submission. Multipliers and Breakdown
// are set only for correct answers.
type AnswerResult struct {
	IsCorrect      bool            `json:"isCorrect"`
	XPEarned       int             `json:"xpEarned"`
	Streak         int             `json:"streak"`
	IsFirstAttempt bool            `json:"isFirstAttempt"`
	Multipliers    *xp.Multipliers `json:"multipliers,omitempty"`
	Breakdown      string          `json:"breakdown,omitempty"`
	Concepts       []ConceptReview `json:"concepts,omitempty"`
}

// ConceptReview is the schedule of a concept after a submission.
type ConceptReview struct {
	Concept      string    `json:"concept"`
	Interval     int       `json:"interval"`
	NextReviewAt time.Time `json:"nextReviewAt"`
}

// SubmitAnswer grades submitted against a question and applies the result
// to the user: every concept on the question is rescheduled, and a correct
// answer earns XP and advances the streak. The user is saved once, so a
// failure leaves nothing applied.
func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID string, submitted answer.Value) (*AnswerResult, error) {
	q, err := s.repos.Questions.ByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	lesson, err := s.repos.Lessons.ByID(ctx, q.LessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	u, err := s.repos.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	first := !u.HasAnswered(q.ID)
	correct := answer.Validate(q.Type, q.Solution, submitted)

	u.Review(q.Concepts, spacedrep.QualityFor(correct), now)

	res := &AnswerResult{IsCorrect: correct, IsFirstAttempt: first}
	if correct {
		award := xp.Award(xp.Input{
			QuestionType:   q.Type,
			Difficulty:     string(lesson.Level),
			Streak:         u.Streak,
			IsFirstAttempt: first,
		})
		u.XP += award.TotalXP
		u.Streak = xp.NextStreak(u.Streak, u.LastActiveAt, now, s.loc)
		active := now
		u.LastActiveAt = &active
		if first {
			u.RecordFirstCorrect(q.ID, now)
		}
		res.XPEarned = award.TotalXP
		res.Multipliers = &award.Multipliers
		res.Breakdown = award.String()
	}
	res.Streak = u.Streak

	if err := s.repos.Users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	seen := make(map[string]bool, len(q.Concepts))
	for _, name := range q.Concepts {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cm := u.Concept(name, now)
		res.Concepts = append(res.Concepts, ConceptReview{Concept: name, Interval: cm.Interval, NextReviewAt: cm.NextReviewAt})
	}

	s.logger.Debug("answer graded",
		"user", userID,
		"question", q.ID,
		"type", string(q.Type),
		"correct", correct,
		"first_attempt", first,
		"xp", res.XPEarned,
		"streak", res.Streak,
	)
	return res, nil
}

// CompleteLesson records a finished lesson and unlocks the one after it.
// Completing again only raises the best score and attempt count; the next
// lesson's record is created at most once and never overwritten.
func (s *Service) CompleteLesson(ctx context.Context, userID, lessonID string, score int) (*learner.Progress, error) {
	lesson, err := s.repos.Lessons.ByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if _, err := s.repos.Users.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	p, err := s.repos.Progress.Get(ctx, userID, lessonID)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("load progress: %w", err)
		}
		p = &learner.Progress{UserID: userID, LessonID: lessonID, Status: learner.StatusLocked}
	}

	var next *learner.Progress
	nextLesson, err := s.repos.Lessons.ByOrdinal(ctx, lesson.Ordinal+1)
	switch {
	case err == nil:
		unlock := learner.NewUnlocked(userID, nextLesson.ID)
		next = &unlock
	case isNotFound(err):
		// Last lesson in the curriculum.
	default:
		return nil, fmt.Errorf("load next lesson: %w", err)
	}

	p.Complete(score, s.now())
	unlocked, err := s.repos.Progress.Complete(ctx, p, next)
	if err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	if unlocked {
		s.logger.Debug("lesson unlocked", "user", userID, "lesson", nextLesson.Slug)
	}

	s.logger.Debug("lesson completed",
		"user", userID,
		"lesson", lesson.Slug,
		"score", score,
		"best", p.BestScore,
		"attempts", p.Attempts,
	)
	return p, nil
}
