package xp

import (
	"math"
	"testing"

	"github.com/abhisek/codepath/internal/answer"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAward(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		want  int
		base  int
		mults Multipliers
	}{
		{
			name:  "parsons master first attempt",
			in:    Input{QuestionType: answer.TypeParsons, Difficulty: "MASTER", Streak: 0, IsFirstAttempt: true},
			want:  94,
			base:  25,
			mults: Multipliers{Streak: "1.00", Difficulty: "2.50", FirstTime: "1.50"},
		},
		{
			name:  "mcq beginner repeat",
			in:    Input{QuestionType: answer.TypeMultipleChoice, Difficulty: "Beginner", Streak: 0},
			want:  8,
			base:  10,
			mults: Multipliers{Streak: "1.00", Difficulty: "1.00", FirstTime: "0.75"},
		},
		{
			name:  "fill in blank intermediate with streak",
			in:    Input{QuestionType: answer.TypeFillInBlank, Difficulty: "Intermediate", Streak: 4, IsFirstAttempt: true},
			want:  41,
			base:  15,
			mults: Multipliers{Streak: "1.20", Difficulty: "1.50", FirstTime: "1.50"},
		},
		{
			name:  "streak capped",
			in:    Input{QuestionType: answer.TypeMultipleChoice, Difficulty: "Advanced", Streak: 100, IsFirstAttempt: true},
			want:  60,
			base:  10,
			mults: Multipliers{Streak: "2.00", Difficulty: "2.00", FirstTime: "1.50"},
		},
		{
			name:  "unknown type and level",
			in:    Input{QuestionType: answer.Type("DEBUG"), Difficulty: "Legendary", IsFirstAttempt: true},
			want:  15,
			base:  10,
			mults: Multipliers{Streak: "1.00", Difficulty: "1.00", FirstTime: "1.50"},
		},
		{
			name:  "negative streak treated as zero",
			in:    Input{QuestionType: answer.TypeMultipleChoice, Difficulty: "Beginner", Streak: -7, IsFirstAttempt: true},
			want:  15,
			base:  10,
			mults: Multipliers{Streak: "1.00", Difficulty: "1.00", FirstTime: "1.50"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Award(tt.in)
			assert.Equal(t, tt.want, got.TotalXP)
			assert.Equal(t, tt.base, got.BaseXP)
			assert.Equal(t, tt.mults, got.Multipliers)
		})
	}
}

func TestResultString(t *testing.T) {
	r := Award(Input{QuestionType: answer.TypeParsons, Difficulty: "Master", IsFirstAttempt: true})
	assert.Equal(t, "Base: 25 × Streak: 1.00 × Difficulty: 2.50 × First: 1.50 = 94 XP", r.String())
}

func TestAward_AlwaysFiniteAndNonNegative(t *testing.T) {
	types := []answer.Type{answer.TypeMultipleChoice, answer.TypeFillInBlank, answer.TypeParsons, "OTHER"}
	levels := []string{"Beginner", "Intermediate", "Advanced", "Master", ""}

	rapid.Check(t, func(t *rapid.T) {
		in := Input{
			QuestionType:   rapid.SampledFrom(types).Draw(t, "type"),
			Difficulty:     rapid.SampledFrom(levels).Draw(t, "level"),
			Streak:         rapid.IntRange(math.MinInt32, math.MaxInt32).Draw(t, "streak"),
			IsFirstAttempt: rapid.Bool().Draw(t, "first"),
		}
		got := Award(in)
		if got.TotalXP < 0 {
			t.Fatalf("negative total %d for %+v", got.TotalXP, in)
		}
		// 25 base × 2 streak × 2.5 difficulty × 1.5 first.
		if got.TotalXP > 188 {
			t.Fatalf("total %d above the maximum possible award", got.TotalXP)
		}
	})
}
