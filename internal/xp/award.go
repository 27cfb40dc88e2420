// Package xp computes experience points for correct answers and maintains
// the daily activity streak.
package xp

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/codepath/internal/answer"
)

// FallbackXP replaces a total that is not a finite, non-negative number.
const FallbackXP = 10

// MaxStreakMultiplier caps the streak bonus.
const MaxStreakMultiplier = 2.0

// StreakStep is the bonus added per streak day.
const StreakStep = 0.05

// FirstAttemptMultiplier and RepeatAttemptMultiplier reward first-try effort.
const (
	FirstAttemptMultiplier  = 1.5
	RepeatAttemptMultiplier = 0.75
)

// baseXP by question type; unknown types earn DefaultBaseXP.
var baseXP = map[answer.Type]int{
	answer.TypeMultipleChoice: 10,
	answer.TypeFillInBlank:    15,
	answer.TypeParsons:        25,
}

// DefaultBaseXP applies to question types without an entry in the table.
const DefaultBaseXP = 10

// difficultyMultiplier by lesson level, keyed in upper case.
var difficultyMultiplier = map[string]float64{
	"BEGINNER":     1.0,
	"INTERMEDIATE": 1.5,
	"ADVANCED":     2.0,
	"MASTER":       2.5,
}

// Input describes one correct answer.
type Input struct {
	QuestionType   answer.Type
	Difficulty     string
	Streak         int
	IsFirstAttempt bool
}

// Multipliers is the display breakdown, each value formatted to two decimals.
type Multipliers struct {
	Streak     string `json:"streak"`
	Difficulty string `json:"difficulty"`
	FirstTime  string `json:"firstTime"`
}

// Result is the XP award for one answer.
type Result struct {
	BaseXP      int         `json:"baseXP"`
	Multipliers Multipliers `json:"multipliers"`
	TotalXP     int         `json:"totalXP"`
}

// BaseXP returns the base award for a question type.
func BaseXP(t answer.Type) int {
	if v, ok := baseXP[t]; ok {
		return v
	}
	return DefaultBaseXP
}

// StreakMultiplier returns 1 + 0.05 per streak day, capped at 2.
func StreakMultiplier(streak int) float64 {
	if streak < 0 {
		streak = 0
	}
	return math.Min(MaxStreakMultiplier, 1+float64(streak)*StreakStep)
}

// DifficultyMultiplier returns the multiplier for a lesson level. Matching
// is case-insensitive; unknown levels count as Beginner.
func DifficultyMultiplier(level string) float64 {
	if v, ok := difficultyMultiplier[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return v
	}
	return 1.0
}

// AttemptMultiplier returns the first-attempt bonus or the repeat penalty.
func AttemptMultiplier(first bool) float64 {
	if first {
		return FirstAttemptMultiplier
	}
	return RepeatAttemptMultiplier
}

// Award computes the XP for a correct answer.
func Award(in Input) Result {
	base := BaseXP(in.QuestionType)
	streak := StreakMultiplier(in.Streak)
	difficulty := DifficultyMultiplier(in.Difficulty)
	first := AttemptMultiplier(in.IsFirstAttempt)

	total := float64(base) * streak * difficulty * first
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		total = FallbackXP
	}

	return Result{
		BaseXP: base,
		Multipliers: Multipliers{
			Streak:     fmt.Sprintf("%.2f", streak),
			Difficulty: fmt.Sprintf("%.2f", difficulty),
			FirstTime:  fmt.Sprintf("%.2f", first),
		},
		TotalXP: int(math.Round(total)),
	}
}

// String formats the award as a one-line breakdown for display.
func (r Result) String() string {
	return fmt.Sprintf("Base: %d × Streak: %s × Difficulty: %s × First: %s = %d XP",
		r.BaseXP, r.Multipliers.Streak, r.Multipliers.Difficulty, r.Multipliers.FirstTime, r.TotalXP)
}
