package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// boardSchemaURL names the compiled board document schema.
const boardSchemaURL = "kanboard://board.schema.json"

// boardSchema describes the persisted/exported board document.
const boardSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["columns", "tasks"],
  "additionalProperties": false,
  "properties": {
    "columns": {"type": "array", "items": {"$ref": "#/$defs/column"}},
    "tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
  },
  "$defs": {
    "column": {
      "type": "object",
      "required": ["id"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"}
      }
    },
    "task": {
      "type": "object",
      "required": ["id", "columnId"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string"},
        "columnId": {"type": "string"},
        "content": {"type": "string"}
      }
    }
  }
}`

// compiledBoardSchema compiles the board schema once per process.
var compiledBoardSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(boardSchemaURL, strings.NewReader(boardSchema)); err != nil {
		return nil, fmt.Errorf("add board schema: %w", err)
	}
	schema, err := compiler.Compile(boardSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile board schema: %w", err)
	}
	return schema, nil
})

// BoardValidationError pinpoints the first schema violation in a board document.
type BoardValidationError struct {
	Path    string
	Message string
}

// Error renders the validation failure.
func (e *BoardValidationError) Error() string {
	path := strings.TrimSpace(e.Path)
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("%s: %s", path, e.Message)
}

// Unwrap ties every validation failure to ErrInvalidBoard.
func (e *BoardValidationError) Unwrap() error {
	return ErrInvalidBoard
}

// validateBoardDocument checks a decoded JSON value against the board schema.
func validateBoardDocument(doc any) error {
	schema, err := compiledBoardSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return toBoardValidationError(err)
	}
	return nil
}

// toBoardValidationError reduces a schema error tree to its first leaf.
func toBoardValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &BoardValidationError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &BoardValidationError{
		Path:    pointerToPath(ve.InstanceLocation),
		Message: ve.Message,
	}
}

// pointerToPath renders a JSON pointer like /tasks/1/columnId as $.tasks[1].columnId.
func pointerToPath(pointer string) string {
	var b strings.Builder
	b.WriteString("$")
	for segment := range strings.SplitSeq(strings.TrimPrefix(pointer, "/"), "/") {
		if segment == "" {
			continue
		}
		segment = strings.NewReplacer("~1", "/", "~0", "~").Replace(segment)
		if _, err := strconv.Atoi(segment); err == nil {
			b.WriteString("[" + segment + "]")
			continue
		}
		b.WriteString("." + segment)
	}
	return b.String()
}
