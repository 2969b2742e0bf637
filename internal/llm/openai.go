package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// openaiBackend also serves OpenRouter and any other API that speaks the
// chat completions protocol.
type openaiBackend struct {
	client *openai.Client
	model  string
	name   string
}

func newOpenAI(cfg Config) (*openaiBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &openaiBackend{client: openai.NewClientWithConfig(c), model: cfg.Model, name: "openai"}, nil
}

func newOpenRouter(cfg Config) (*openaiBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterURL
	}
	b, err := newOpenAI(cfg)
	if err != nil {
		return nil, err
	}
	b.name = "openrouter"
	return b, nil
}

func (b *openaiBackend) ModelID() string { return b.model }

func (b *openaiBackend) Generate(ctx context.Context, p Prompt) (*Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:               b.model,
		MaxCompletionTokens: p.MaxTokens,
		Temperature:         float32(p.Temperature),
	}
	if p.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	if p.Schema != nil {
		def, err := json.Marshal(p.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("%s: encode schema: %w", b.name, err)
		}
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   p.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(apiErr.HTTPStatusCode, err)
		}
		return nil, unavailable(err)
	}
	if len(resp.Choices) == 0 {
		return nil, invalid(nil, "%s: reply has no choices", b.name)
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Message.Content)
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &Error{Kind: KindTruncated, Content: content, Err: fmt.Errorf("%s: stopped at %d tokens", b.name, p.MaxTokens)}
	}
	if err := p.Schema.Check(content); err != nil {
		return nil, err
	}
	return &Reply{
		Content: content,
		Usage:   Usage{Input: resp.Usage.PromptTokens, Output: resp.Usage.CompletionTokens},
		Model:   resp.Model,
		Finish:  finishEnd,
	}, nil
}
