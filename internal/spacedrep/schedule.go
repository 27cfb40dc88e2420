package spacedrep

import (
	"math"
	"time"
)

// DefaultEaseFactor is the ease factor of a concept seen for the first time.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor applied after every ease update.
const MinEaseFactor = 1.3

// PassQuality is the lowest quality grade that counts as a successful recall.
const PassQuality = 3

// Binary grades used when answers are only right or wrong.
const (
	QualityBlackout = 0
	QualityPerfect  = 5
)

// FirstInterval and SecondInterval are the fixed intervals, in days, after
// the first and second consecutive successful reviews.
const (
	FirstInterval  = 1
	SecondInterval = 6
)

// Schedule is the SM-2 state of a single concept.
type Schedule struct {
	Interval     int       `json:"interval"`
	Repetition   int       `json:"repetition"`
	EaseFactor   float64   `json:"easeFactor"`
	NextReviewAt time.Time `json:"nextReviewAt"`
}

// NewSchedule returns the state of a concept that has never been reviewed.
// It is due immediately.
func NewSchedule(now time.Time) Schedule {
	return Schedule{
		Interval:     FirstInterval,
		Repetition:   0,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
	}
}

// QualityFor maps a right/wrong outcome to an SM-2 quality grade.
func QualityFor(correct bool) int {
	if correct {
		return QualityPerfect
	}
	return QualityBlackout
}

// NextReview applies one SM-2 step. A pass grows the interval (1 day, then 6,
// then geometrically by the ease factor); a fail restarts the schedule at one
// day. The ease factor is adjusted on every review and never drops below
// MinEaseFactor.
func NextReview(interval, repetition int, easeFactor float64, quality int, now time.Time) Schedule {
	if quality >= PassQuality {
		switch repetition {
		case 0:
			interval = FirstInterval
		case 1:
			interval = SecondInterval
		default:
			interval = int(math.Round(float64(interval) * easeFactor))
		}
		repetition++
	} else {
		repetition = 0
		interval = FirstInterval
	}
	if interval < FirstInterval {
		interval = FirstInterval
	}

	miss := float64(QualityPerfect - quality)
	easeFactor += 0.1 - miss*(0.08+miss*0.02)
	if easeFactor < MinEaseFactor || math.IsNaN(easeFactor) {
		easeFactor = MinEaseFactor
	}

	return Schedule{
		Interval:     interval,
		Repetition:   repetition,
		EaseFactor:   easeFactor,
		NextReviewAt: now.AddDate(0, 0, interval),
	}
}

// Review advances s by one review graded with quality.
func (s Schedule) Review(quality int, now time.Time) Schedule {
	return NextReview(s.Interval, s.Repetition, s.EaseFactor, quality, now)
}
