package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Scripted is one queued outcome for a Fake.
type Scripted struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Fake replays scripted outcomes in order and records prompts. Once the
// script runs out every call fails as unavailable.
type Fake struct {
	mu      sync.Mutex
	script  []Scripted
	prompts []Prompt
}

// NewFake returns a Fake that will replay script.
func NewFake(script ...Scripted) *Fake {
	return &Fake{script: script}
}

func (f *Fake) ModelID() string { return "fake" }

func (f *Fake) Generate(_ context.Context, p Prompt) (*Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if len(f.script) == 0 {
		return nil, unavailable(nil)
	}
	next := f.script[0]
	f.script = f.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	if err := p.Schema.Check(next.Content); err != nil {
		return nil, err
	}
	return &Reply{Content: next.Content, Usage: next.Usage, Model: "fake", Finish: finishEnd}, nil
}

// Push appends to the script.
func (f *Fake) Push(s ...Scripted) {
	f.mu.Lock()
	f.script = append(f.script, s...)
	f.mu.Unlock()
}

// Prompts returns a copy of every prompt received.
func (f *Fake) Prompts() []Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Prompt(nil), f.prompts...)
}
