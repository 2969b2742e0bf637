package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmentor/internal/logging"
)

func clearLLMEnv(t *testing.T) {
	for _, k := range []string{
		"QUIZMENTOR_LLM_PROVIDER", "QUIZMENTOR_LLM_MODEL", "QUIZMENTOR_LLM_API_KEY", "QUIZMENTOR_LLM_BASE_URL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnvDisabled(t *testing.T) {
	clearLLMEnv(t)
	c := ConfigFromEnv()
	assert.False(t, c.Enabled())

	p, err := New(context.Background(), c, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestConfigFromEnvExplicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("QUIZMENTOR_LLM_PROVIDER", "OpenRouter")
	t.Setenv("QUIZMENTOR_LLM_API_KEY", "k")

	c := ConfigFromEnv()
	assert.Equal(t, ProviderOpenRouter, c.Provider)
	assert.Equal(t, defaultModels[ProviderOpenRouter], c.Model)
	require.NoError(t, c.Validate())

	p, err := New(context.Background(), c, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, c.Model, p.ModelID())
}

func TestConfigDiscoversVendorKeys(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")

	c := ConfigFromEnv()
	assert.Equal(t, ProviderOpenAI, c.Provider)
	assert.Equal(t, "o", c.APIKey)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Provider: ProviderGemini}.Validate())
	assert.Error(t, Config{Provider: "llamafile"}.Validate())
	assert.NoError(t, Config{Provider: ProviderFake}.Validate())
}
