package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema a reply must satisfy.
type Schema struct {
	// Name is kebab-case; it doubles as the structured-output name sent
	// to backends that want one.
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// The compiler wants decoded JSON values, not Go literals.
		raw, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.err = err
			return
		}
		url := "mem://" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = err
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// Check returns a KindInvalid *Error when raw is not JSON or does not
// satisfy s. A nil schema accepts anything.
func (s *Schema) Check(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return invalid(raw, "not json: %w", err)
	}
	compiled, err := s.compile()
	if err != nil {
		return invalid(raw, "schema %s: %w", s.Name, err)
	}
	if err := compiled.Validate(v); err != nil {
		return invalid(raw, "%w", err)
	}
	return nil
}

func (s *Schema) String() string {
	if s == nil {
		return "<none>"
	}
	return fmt.Sprintf("schema(%s)", s.Name)
}
