package question

import "strings"

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is a single multiple-choice item. Questions are immutable once
// loaded into a Bank.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Passage      string   `json:"passage,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Topic        string   `json:"topic"`
	Category     string   `json:"category,omitempty"`
	Subject      string   `json:"subject,omitempty"`

	// Difficulty is an ordinal rank; lower is easier.
	Difficulty int `json:"difficulty"`
}

// IsCorrect reports whether option is the right answer.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectIndex
}

// ValidOption reports whether option addresses one of the question's choices.
func (q Question) ValidOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// MatchesTopic reports whether the question belongs to the given topic.
// Matching is a case-insensitive substring test on topic or category.
func (q Question) MatchesTopic(topic string) bool {
	t := strings.ToLower(strings.TrimSpace(topic))
	if t == "" {
		return true
	}
	return strings.Contains(strings.ToLower(q.Topic), t) ||
		strings.Contains(strings.ToLower(q.Category), t)
}

// Subject is a study area the bank covers.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`

	// Free subjects are available without premium access.
	Free bool `json:"free"`
}

// Source supplies the full question list.
type Source interface {
	All() []Question
}
