// Package answer grades submitted answers against stored solutions for the
// three supported question types.
package answer

import (
	"strings"

	"github.com/abhisek/codepath/internal/tokenizer"
)

// Type is the kind of question being graded.
type Type string

const (
	TypeMultipleChoice Type = "MCQ"
	TypeParsons        Type = "PARSONS"
	TypeFillInBlank    Type = "FILL_IN_BLANK"
)

// ParseType normalizes user-facing spellings ("fill-in-blank", "mcq") to a
// Type. The second result is false for unknown names.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	switch t {
	case TypeMultipleChoice, TypeParsons, TypeFillInBlank:
		return t, true
	}
	return t, false
}

// Validate reports whether submitted answers a question of type t whose
// stored solution is solution. A malformed submission is simply incorrect;
// Validate never fails.
func Validate(t Type, solution, submitted Value) bool {
	switch t {
	case TypeMultipleChoice:
		return MultipleChoice(solution, submitted)
	case TypeFillInBlank:
		return FillInBlank(solution, submitted)
	case TypeParsons:
		return Parsons(solution, submitted)
	default:
		return false
	}
}

// MultipleChoice compares by textual form, so an index submitted as 2 or "2"
// matches a stored 2.
func MultipleChoice(solution, submitted Value) bool {
	want, ok := solution.Scalar()
	if !ok {
		return false
	}
	got, ok := submitted.Scalar()
	if !ok {
		return false
	}
	return got == want
}

// FillInBlank compares token sequences of the trimmed code strings, which
// ignores whitespace but keeps case.
func FillInBlank(solution, submitted Value) bool {
	want, ok := solution.Scalar()
	if !ok {
		return false
	}
	got, ok := submitted.Scalar()
	if !ok {
		return false
	}
	return tokenizer.Equal(strings.TrimSpace(got), strings.TrimSpace(want))
}

// Parsons requires both values to be lists of equal length whose elements
// match position by position. Mixed index/text elements compare by their
// string form.
func Parsons(solution, submitted Value) bool {
	if solution.Kind() != KindList || submitted.Kind() != KindList {
		return false
	}
	want, got := solution.Items(), submitted.Items()
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if got[i].String() != want[i].String() {
			return false
		}
	}
	return true
}
