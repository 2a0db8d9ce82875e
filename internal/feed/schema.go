package feed

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// recordSchema describes the feed shape the engine expects. Extra properties are
// allowed so movie-shaped feeds (director, actors) still validate.
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "rating"],
    "properties": {
      "title":      {"type": "string", "minLength": 1},
      "genre":      {"oneOf": [{"type": "string"}, {"type": "array", "items": {"type": "string"}}]},
      "rating":     {"type": "number", "minimum": 0, "maximum": 10},
      "year":       {"type": "integer"},
      "age":        {"type": "integer", "minimum": 0},
      "playtime":   {"type": "integer", "minimum": 0},
      "players": {
        "type": "object",
        "required": ["min", "max"],
        "properties": {
          "min": {"type": "integer", "minimum": 1},
          "max": {"type": "integer", "minimum": 1}
        }
      },
      "difficulty":  {"type": "string"},
      "language":    {"type": "string"},
      "location":    {"type": "string"},
      "description": {"type": "string"},
      "image":       {"type": "string"},
      "shelf":       {"type": "string"}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

// Problem is one schema violation in a feed payload.
type Problem struct {
	Field       string
	Description string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Description)
}

// Validate checks data against the record schema. A non-nil error means the
// payload could not be checked at all (for example, it is not JSON).
func Validate(data []byte) ([]Problem, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]Problem, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, Problem{Field: e.Field(), Description: e.Description()})
	}
	return problems, nil
}
