// Package learner models a learner's state: XP, streak, answer history,
// per-concept mastery schedules and per-lesson progress.
package learner

import (
	"sort"
	"time"

	"github.com/abhisek/codepath/internal/spacedrep"
)

// ConceptMastery tracks the review schedule for one concept.
type ConceptMastery struct {
	Concept      string `json:"concept"`
	MasteryLevel int    `json:"masteryLevel"`
	spacedrep.Schedule
}

// QuestionHistory records a question the learner answered correctly on the
// first try. Entries are never edited or removed.
type QuestionHistory struct {
	QuestionID string    `json:"questionId"`
	AnsweredAt time.Time `json:"answeredAt"`
	Correct    bool      `json:"correct"`
}

// User is the learner aggregate. Version is the optimistic concurrency token
// maintained by the store; callers must not change it.
type User struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	XP           int               `json:"xp"`
	Streak       int               `json:"streak"`
	LastActiveAt *time.Time        `json:"lastActiveAt,omitempty"`
	History      []QuestionHistory `json:"history"`
	Concepts     []ConceptMastery  `json:"concepts"`
	Version      int64             `json:"-"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// HasAnswered reports whether the question appears in the user's history.
func (u *User) HasAnswered(questionID string) bool {
	for _, h := range u.History {
		if h.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Concept returns the mastery record for name, creating it with a fresh
// schedule due at now if the user has none. The returned pointer is valid
// until the next call that adds a concept.
func (u *User) Concept(name string, now time.Time) *ConceptMastery {
	for i := range u.Concepts {
		if u.Concepts[i].Concept == name {
			return &u.Concepts[i]
		}
	}
	u.Concepts = append(u.Concepts, ConceptMastery{
		Concept:  name,
		Schedule: spacedrep.NewSchedule(now),
	})
	return &u.Concepts[len(u.Concepts)-1]
}

// Review reschedules every named concept with the given quality. Duplicate
// names are reviewed once.
func (u *User) Review(concepts []string, quality int, now time.Time) {
	seen := make(map[string]bool, len(concepts))
	for _, name := range concepts {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cm := u.Concept(name, now)
		cm.Schedule = cm.Schedule.Review(quality, now)
	}
}

// RecordFirstCorrect appends a history entry for a first-try correct answer.
func (u *User) RecordFirstCorrect(questionID string, now time.Time) {
	u.History = append(u.History, QuestionHistory{
		QuestionID: questionID,
		AnsweredAt: now,
		Correct:    true,
	})
}

// DueConcepts returns the concepts due for review at now, most overdue first.
func (u *User) DueConcepts(now time.Time) []ConceptMastery {
	entries := make([]spacedrep.Entry, 0, len(u.Concepts))
	byName := make(map[string]ConceptMastery, len(u.Concepts))
	for _, cm := range u.Concepts {
		entries = append(entries, spacedrep.Entry{Key: cm.Concept, Schedule: cm.Schedule})
		byName[cm.Concept] = cm
	}
	due := spacedrep.DueEntries(entries, now)
	out := make([]ConceptMastery, 0, len(due))
	for _, e := range due {
		out = append(out, byName[e.Key])
	}
	return out
}

// SortedConcepts returns a copy of the concepts ordered by name.
func (u *User) SortedConcepts() []ConceptMastery {
	out := make([]ConceptMastery, len(u.Concepts))
	copy(out, u.Concepts)
	sort.Slice(out, func(i, j int) bool { return out[i].Concept < out[j].Concept })
	return out
}
