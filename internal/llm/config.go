package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone       = "none"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderFake       = "fake"
)

var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku-4-5",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
	ProviderGemini:     "gemini-2.0-flash",
}

// Config selects one backend.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Retry    Policy
}

// Enabled reports whether a real backend is configured.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// ConfigFromEnv reads QUIZMENTOR_LLM_PROVIDER, QUIZMENTOR_LLM_MODEL,
// QUIZMENTOR_LLM_API_KEY and QUIZMENTOR_LLM_BASE_URL. When no provider is
// named, the usual vendor key variables are tried in order; if none is
// set the result is disabled.
func ConfigFromEnv() Config {
	c := Config{
		Provider: strings.ToLower(os.Getenv("QUIZMENTOR_LLM_PROVIDER")),
		Model:    os.Getenv("QUIZMENTOR_LLM_MODEL"),
		APIKey:   os.Getenv("QUIZMENTOR_LLM_API_KEY"),
		BaseURL:  os.Getenv("QUIZMENTOR_LLM_BASE_URL"),
		Retry:    DefaultPolicy(),
	}
	if c.Provider == "" {
		c.Provider = ProviderNone
		for _, cand := range []struct{ env, provider string }{
			{"GEMINI_API_KEY", ProviderGemini},
			{"OPENAI_API_KEY", ProviderOpenAI},
			{"ANTHROPIC_API_KEY", ProviderAnthropic},
			{"OPENROUTER_API_KEY", ProviderOpenRouter},
		} {
			if k := os.Getenv(cand.env); k != "" {
				c.Provider = cand.provider
				if c.APIKey == "" {
					c.APIKey = k
				}
				break
			}
		}
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	return c
}

// Validate checks that a key is present for providers that need one.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderNone, ProviderFake:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm: QUIZMENTOR_LLM_API_KEY is required for %s", c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
}
