package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/codepath/internal/answer"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// idNamespace seeds the deterministic lesson and question IDs, so importing
// the same curriculum twice yields the same IDs and existing progress keeps
// pointing at the right lessons.
var idNamespace = uuid.MustParse("6f1c2b52-8a57-4c2e-9a7e-3f0d1c9b7a41")

// File is the on-disk curriculum format.
type File struct {
	Title    string     `json:"title"`
	Language string     `json:"language"`
	Version  string     `json:"version"`
	Units    []FileUnit `json:"units"`
}

// FileUnit groups lessons. Units carry no state of their own.
type FileUnit struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Level   string       `json:"level"`
	Lessons []FileLesson `json:"lessons"`
}

// FileLesson is a lesson as written in a curriculum file.
type FileLesson struct {
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Level       string         `json:"level"`
	XPReward    *int           `json:"xpReward"`
	Content     []ContentBlock `json:"content"`
	Questions   []FileQuestion `json:"questions"`
}

// FileQuestion is a question as written in a curriculum file.
type FileQuestion struct {
	Type         string       `json:"type"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options"`
	Blocks       []string     `json:"blocks"`
	CodeTemplate string       `json:"codeTemplate"`
	Solution     answer.Value `json:"solution"`
	Concepts     []string     `json:"concepts"`
}

// Curriculum is a loaded, validated curriculum ready to be stored.
type Curriculum struct {
	Title     string
	Version   string
	Lessons   []Lesson
	Questions []Question
}

// LoadFile reads a curriculum from a .json, .yaml or .yml file.
func LoadFile(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseYAML parses a YAML curriculum document.
func ParseYAML(data []byte) (*Curriculum, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse curriculum yaml: %w", err)
	}
	// The schema validator and the typed decoder both consume JSON.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert curriculum yaml: %w", err)
	}
	return ParseJSON(b)
}

// ParseJSON parses a JSON curriculum document.
func ParseJSON(data []byte) (*Curriculum, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse curriculum json: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return f.Build()
}

// Build assigns ordinals and IDs and checks every lesson and question.
// Ordinals run across units in file order starting at zero.
func (f *File) Build() (*Curriculum, error) {
	version, ok := CanonicalVersion(f.Version)
	if !ok {
		return nil, fmt.Errorf("invalid curriculum version %q: want semantic version like v1.2.0", f.Version)
	}

	c := &Curriculum{Title: f.Title, Version: version}
	seen := make(map[string]bool)
	ordinal := 0

	for _, unit := range f.Units {
		for _, fl := range unit.Lessons {
			if seen[fl.Slug] {
				return nil, &ValidationError{Lesson: fl.Slug, Question: -1, Message: "duplicate slug"}
			}
			seen[fl.Slug] = true

			lesson, err := fl.lesson(unit.Title, ordinal)
			if err != nil {
				return nil, err
			}
			c.Lessons = append(c.Lessons, lesson)

			for i, fq := range fl.Questions {
				q, err := fq.question(lesson, i)
				if err != nil {
					return nil, err
				}
				c.Questions = append(c.Questions, q)
			}
			ordinal++
		}
	}
	return c, nil
}

func (fl FileLesson) lesson(unit string, ordinal int) (Lesson, error) {
	level, ok := ParseLevel(fl.Level)
	if !ok {
		return Lesson{}, &ValidationError{Lesson: fl.Slug, Question: -1, Message: fmt.Sprintf("unknown level %q", fl.Level)}
	}
	reward := DefaultXPReward
	if fl.XPReward != nil {
		reward = *fl.XPReward
	}
	l := Lesson{
		ID:          LessonID(fl.Slug),
		Slug:        fl.Slug,
		Title:       fl.Title,
		Description: fl.Description,
		Unit:        unit,
		Ordinal:     ordinal,
		Level:       level,
		XPReward:    reward,
		Content:     fl.Content,
	}
	if err := ValidateLesson(&l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (fq FileQuestion) question(lesson Lesson, index int) (Question, error) {
	t, ok := answer.ParseType(fq.Type)
	if !ok {
		return Question{}, &ValidationError{Lesson: lesson.Slug, Question: index, Message: fmt.Sprintf("unknown question type %q", fq.Type)}
	}
	q := Question{
		ID:           QuestionID(lesson.Slug, index),
		LessonID:     lesson.ID,
		Type:         t,
		Prompt:       fq.Prompt,
		Options:      fq.Options,
		Blocks:       fq.Blocks,
		CodeTemplate: fq.CodeTemplate,
		Solution:     fq.Solution,
		Concepts:     fq.Concepts,
	}
	if err := ValidateQuestion(&q, lesson.Slug, index); err != nil {
		return Question{}, err
	}
	return q, nil
}

// LessonID returns the stable ID of the lesson with the given slug.
func LessonID(slug string) string {
	return uuid.NewSHA1(idNamespace, []byte("lesson/"+slug)).String()
}

// QuestionID returns the stable ID of the index-th question of a lesson.
func QuestionID(lessonSlug string, index int) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("question/%s/%d", lessonSlug, index))).String()
}

// CanonicalVersion returns v in canonical semver form with a leading "v".
func CanonicalVersion(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// IsNewer reports whether incoming should replace the installed version.
// Nothing installed yet always counts as older.
func IsNewer(incoming, installed string) bool {
	if installed == "" {
		return true
	}
	return semver.Compare(incoming, installed) > 0
}
