package question

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/mod/semver"
)

// SupportedMajor is the bank format major version this build reads.
const SupportedMajor = "v1"

// ErrInvalidBank is returned when a bank file fails structural checks.
var ErrInvalidBank = errors.New("invalid question bank")

//go:embed default_bank.json
var defaultBank []byte

// Bank is an immutable, validated collection of questions.
type Bank struct {
	version   string
	subjects  []Subject
	questions []Question
	byID      map[string]int
}

type bankFile struct {
	Version   string     `json:"version"`
	Subjects  []Subject  `json:"subjects"`
	Questions []Question `json:"questions"`
}

// LoadDefault returns the bank compiled into the binary.
func LoadDefault() (*Bank, error) {
	return Parse(defaultBank)
}

// Load reads and validates the bank file at path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse validates raw bank JSON against the bank schema, checks the format
// version, and enforces question invariants.
func Parse(data []byte) (*Bank, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	sch, err := compiledBankSchema()
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	var f bankFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("%w: version %q is not a semantic version", ErrInvalidBank, f.Version)
	}
	if semver.Major(f.Version) != SupportedMajor {
		return nil, fmt.Errorf("%w: version %s unsupported, want %s.x", ErrInvalidBank, f.Version, SupportedMajor)
	}

	if err := Validate(f.Questions); err != nil {
		return nil, err
	}

	return New(f.Version, f.Subjects, f.Questions), nil
}

// New builds a Bank from already-validated questions.
func New(version string, subjects []Subject, questions []Question) *Bank {
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}
	return &Bank{
		version:   version,
		subjects:  subjects,
		questions: questions,
		byID:      byID,
	}
}

// Validate checks IDs are present and unique, every question has exactly
// four options, and the correct index addresses one of them.
func Validate(questions []Question) error {
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidBank, i)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidBank, q.ID)
		}
		seen[q.ID] = true

		if len(q.Options) != OptionCount {
			return fmt.Errorf("%w: question %q has %d options, want %d", ErrInvalidBank, q.ID, len(q.Options), OptionCount)
		}
		if !q.ValidOption(q.CorrectIndex) {
			return fmt.Errorf("%w: question %q correct index %d out of range", ErrInvalidBank, q.ID, q.CorrectIndex)
		}
	}
	return nil
}

// All returns every question in bank order. Callers must not mutate the
// returned slice.
func (b *Bank) All() []Question {
	return b.questions
}

// ByID looks up a question by its identifier.
func (b *Bank) ByID(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Subjects returns the subjects declared by the bank.
func (b *Bank) Subjects() []Subject {
	return b.subjects
}

// Version returns the bank format version.
func (b *Bank) Version() string {
	return b.version
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Topics returns the distinct topics in first-seen order.
func (b *Bank) Topics() []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range b.questions {
		if q.Topic == "" || seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		out = append(out, q.Topic)
	}
	return out
}
