// Package curriculum holds the lesson and question model and loads
// curriculum files into it.
package curriculum

import (
	"strings"

	"github.com/abhisek/codepath/internal/answer"
)

// Level is a lesson's difficulty tier.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelMaster       Level = "Master"
)

// ParseLevel matches a level name case-insensitively. Unknown names yield
// ("", false).
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelMaster} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, true
		}
	}
	return "", false
}

// DefaultXPReward is shown for lessons that do not set their own reward.
const DefaultXPReward = 50

// Lesson is one step of the curriculum. Ordinal defines the sequence and is
// zero-based and gapless across the whole curriculum.
type Lesson struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	Ordinal     int            `json:"order"`
	Level       Level          `json:"level"`
	XPReward    int            `json:"xpReward"`
	Content     []ContentBlock `json:"content,omitempty"`
}

// ContentBlock is a piece of lesson material: prose or a code sample.
type ContentBlock struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

// Question belongs to a lesson. Solution's shape depends on Type: an option
// index for MCQ, a code string for FILL_IN_BLANK and an ordered list for
// PARSONS.
type Question struct {
	ID           string       `json:"id"`
	LessonID     string       `json:"lessonId"`
	Type         answer.Type  `json:"type"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options,omitempty"`
	Blocks       []string     `json:"blocks,omitempty"`
	CodeTemplate string       `json:"codeTemplate,omitempty"`
	Solution     answer.Value `json:"solution"`
	Concepts     []string     `json:"concepts,omitempty"`
}

// PublicQuestion is a Question as shown to learners, without its solution.
type PublicQuestion struct {
	ID           string      `json:"id"`
	Type         answer.Type `json:"type"`
	Prompt       string      `json:"prompt"`
	Options      []string    `json:"options,omitempty"`
	Blocks       []string    `json:"blocks,omitempty"`
	CodeTemplate string      `json:"codeTemplate,omitempty"`
}

// Public strips the solution and concept tags.
func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		Type:         q.Type,
		Prompt:       q.Prompt,
		Options:      q.Options,
		Blocks:       q.Blocks,
		CodeTemplate: q.CodeTemplate,
	}
}
