package curriculum

import (
	"fmt"
	"strconv"

	"github.com/abhisek/codepath/internal/answer"
)

// ValidationError describes a curriculum entry that cannot be served.
// Question is -1 when the problem is with the lesson itself.
type ValidationError struct {
	Lesson   string
	Question int
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Question < 0 {
		return fmt.Sprintf("lesson %q: %s", e.Lesson, e.Message)
	}
	return fmt.Sprintf("lesson %q question %d: %s", e.Lesson, e.Question, e.Message)
}

// ValidateLesson checks required lesson fields.
func ValidateLesson(l *Lesson) error {
	fail := func(msg string) error {
		return &ValidationError{Lesson: l.Slug, Question: -1, Message: msg}
	}
	if l.Slug == "" {
		return fail("slug is empty")
	}
	if l.Title == "" {
		return fail("title is empty")
	}
	if l.Ordinal < 0 {
		return fail("order must not be negative")
	}
	if _, ok := ParseLevel(string(l.Level)); !ok {
		return fail(fmt.Sprintf("unknown level %q", l.Level))
	}
	return nil
}

// ValidateQuestion checks that a question can be graded: the solution has
// the shape its type needs and points inside the options or blocks.
func ValidateQuestion(q *Question, lessonSlug string, index int) error {
	fail := func(msg string) error {
		return &ValidationError{Lesson: lessonSlug, Question: index, Message: msg}
	}
	if q.Prompt == "" {
		return fail("prompt is empty")
	}

	switch q.Type {
	case answer.TypeMultipleChoice:
		if len(q.Options) < 2 {
			return fail("multiple choice needs at least two options")
		}
		if q.Solution.Kind() != answer.KindIndex {
			return fail("multiple choice solution must be an option index")
		}
		s, _ := q.Solution.Scalar()
		if idx := indexOf(s); idx < 0 || idx >= len(q.Options) {
			return fail(fmt.Sprintf("solution index %s out of range for %d options", s, len(q.Options)))
		}
	case answer.TypeParsons:
		if len(q.Blocks) == 0 {
			return fail("parsons question has no blocks")
		}
		if q.Solution.Kind() != answer.KindList {
			return fail("parsons solution must be an ordered list")
		}
		if n := len(q.Solution.Items()); n != len(q.Blocks) {
			return fail(fmt.Sprintf("parsons solution has %d entries for %d blocks", n, len(q.Blocks)))
		}
	case answer.TypeFillInBlank:
		s, ok := q.Solution.Scalar()
		if !ok || s == "" {
			return fail("fill-in-blank solution must be a non-empty code string")
		}
	default:
		return fail(fmt.Sprintf("unknown question type %q", q.Type))
	}
	return nil
}

// indexOf parses a non-negative index, returning -1 on failure.
func indexOf(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
