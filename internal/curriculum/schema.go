package curriculum

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://curriculum.json"

// fileSchema constrains the shape of a curriculum file. Semantic checks that
// a schema cannot express (index ranges, unique slugs) live in validate.go.
const fileSchema = `{
  "type": "object",
  "required": ["version", "units"],
  "properties": {
    "title": {"type": "string"},
    "language": {"type": "string"},
    "version": {"type": "string", "minLength": 1},
    "units": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "lessons"],
        "properties": {
          "id": {"type": "string"},
          "title": {"type": "string"},
          "level": {"type": "string"},
          "lessons": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title", "slug", "level", "questions"],
              "properties": {
                "title": {"type": "string", "minLength": 1},
                "slug": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
                "description": {"type": "string"},
                "level": {"enum": ["Beginner", "Intermediate", "Advanced", "Master",
                                   "BEGINNER", "INTERMEDIATE", "ADVANCED", "MASTER",
                                   "beginner", "intermediate", "advanced", "master"]},
                "xpReward": {"type": "integer", "minimum": 0},
                "content": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["type", "body"],
                    "properties": {
                      "type": {"type": "string"},
                      "body": {"type": "string"}
                    }
                  }
                },
                "questions": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["type", "prompt", "solution"],
                    "properties": {
                      "type": {"type": "string"},
                      "prompt": {"type": "string", "minLength": 1},
                      "options": {"type": "array", "items": {"type": "string"}},
                      "blocks": {"type": "array", "items": {"type": "string"}},
                      "codeTemplate": {"type": "string"},
                      "solution": {"type": ["integer", "string", "array"]},
                      "concepts": {"type": "array", "items": {"type": "string"}}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema compiles fileSchema once per process.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(fileSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse curriculum schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile curriculum schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// validateDocument checks a decoded curriculum document against fileSchema.
// doc must hold numbers as json.Number, as produced by jsonschema.UnmarshalJSON.
func validateDocument(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
