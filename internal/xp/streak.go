package xp

import "time"

// DaysBetween returns the number of calendar days from a to b, both read in
// loc. It is negative when b falls on an earlier date than a.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// NextStreak applies the daily streak rule for an XP-earning action at now.
// Activity on the next calendar day extends the streak, a gap of more than
// one day restarts it at 1, and activity on the same day leaves it alone.
// A learner with no recorded activity starts at 1.
func NextStreak(streak int, lastActive *time.Time, now time.Time, loc *time.Location) int {
	if lastActive == nil || lastActive.IsZero() {
		return 1
	}
	switch days := DaysBetween(*lastActive, now, loc); {
	case days == 1:
		return streak + 1
	case days > 1:
		return 1
	default:
		return streak
	}
}
