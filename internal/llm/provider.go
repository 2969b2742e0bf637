// Package llm sends single-turn prompts to a hosted language model and
// returns schema-checked JSON.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call.
type Provider interface {
	Generate(ctx context.Context, p Prompt) (*Reply, error)
	ModelID() string
}

// Prompt is a single-turn request.
type Prompt struct {
	System string
	User   string

	// Schema, when set, asks the backend for structured output and the
	// reply is checked against it before being returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Reply is what came back.
type Reply struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	// Finish is "end"; truncated replies surface as KindTruncated errors.
	Finish string
}

// Usage counts tokens for one call.
type Usage struct {
	Input  int
	Output int
}

// Total is Input+Output.
func (u Usage) Total() int { return u.Input + u.Output }

const finishEnd = "end"
