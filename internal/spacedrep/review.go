package spacedrep

import (
	"math"
	"sort"
	"time"
)

// IsDue returns true if the concept is due for review (at or past the review date).
func (s Schedule) IsDue(now time.Time) bool {
	return !now.Before(s.NextReviewAt)
}

// OverdueDays returns how many days past due the concept is. Returns 0 if not yet due.
func (s Schedule) OverdueDays(now time.Time) float64 {
	if now.Before(s.NextReviewAt) {
		return 0
	}
	return now.Sub(s.NextReviewAt).Hours() / 24.0
}

// IsPastGrace returns true once a due concept has gone unreviewed for more
// than half of its interval.
func (s Schedule) IsPastGrace(now time.Time) bool {
	if !s.IsDue(now) {
		return false
	}
	interval := s.Interval
	if interval < FirstInterval {
		interval = FirstInterval
	}
	graceHours := float64(interval) * 0.5 * 24.0
	threshold := s.NextReviewAt.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// DaysUntilReview returns the whole days until the next review, rounded up.
// Returns 0 if already due.
func (s Schedule) DaysUntilReview(now time.Time) int {
	if s.IsDue(now) {
		return 0
	}
	return int(math.Ceil(s.NextReviewAt.Sub(now).Hours() / 24.0))
}

// ReviewStatus describes a concept's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for display.
func (s Schedule) Status(now time.Time) ReviewStatus {
	switch {
	case s.IsPastGrace(now):
		return ReviewOverdue
	case s.IsDue(now):
		return ReviewDue
	default:
		return ReviewNotDue
	}
}

// Entry pairs a key (a concept name) with its schedule.
type Entry struct {
	Key      string
	Schedule Schedule
}

// DueEntries returns the entries that are due at now, most overdue first.
// Ties are broken by key so the order is stable.
func DueEntries(entries []Entry, now time.Time) []Entry {
	due := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Schedule.IsDue(now) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		oi, oj := due[i].Schedule.OverdueDays(now), due[j].Schedule.OverdueDays(now)
		if oi != oj {
			return oi > oj
		}
		return due[i].Key < due[j].Key
	})
	return due
}
