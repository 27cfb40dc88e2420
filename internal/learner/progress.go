package learner

import (
	"fmt"
	"time"
)

// Status is the state of a lesson for one learner.
type Status string

const (
	StatusLocked    Status = "LOCKED"
	StatusUnlocked  Status = "UNLOCKED"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus accepts the stored status names.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusLocked, StatusUnlocked, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown progress status %q", s)
}

// rank orders statuses so transitions only move forward.
func (s Status) rank() int {
	switch s {
	case StatusUnlocked:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// Progress is a learner's record for one lesson. There is at most one per
// (UserID, LessonID).
type Progress struct {
	UserID        string     `json:"userId"`
	LessonID      string     `json:"lessonId"`
	Status        Status     `json:"status"`
	BestScore     int        `json:"bestScore"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`
}

// NewUnlocked returns the record created when a lesson becomes available.
func NewUnlocked(userID, lessonID string) Progress {
	p := Progress{UserID: userID, LessonID: lessonID, Status: StatusLocked}
	p.Unlock()
	return p
}

// Complete records a finished attempt. The best score never decreases and a
// completed lesson stays completed.
func (p *Progress) Complete(score int, now time.Time) {
	p.Status = StatusCompleted
	if score > p.BestScore {
		p.BestScore = score
	}
	p.Attempts++
	t := now
	p.LastAttemptAt = &t
}

// Unlock moves a locked record to unlocked. Other states are left alone.
func (p *Progress) Unlock() {
	if p.Status.rank() < StatusUnlocked.rank() {
		p.Status = StatusUnlocked
	}
}

// EffectiveStatus is the status shown for a lesson: the stored record when
// there is one, otherwise unlocked for the first lesson and locked for the
// rest.
func EffectiveStatus(p *Progress, ordinal int) Status {
	if p != nil && p.Status != "" {
		return p.Status
	}
	if ordinal == 0 {
		return StatusUnlocked
	}
	return StatusLocked
}
