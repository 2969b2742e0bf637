package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// New builds the configured backend wrapped as
// caller -> retry -> logging -> backend. A disabled config returns
// (nil, nil).
func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}

	var (
		backend Provider
		err     error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		backend, err = newAnthropic(cfg)
	case ProviderOpenAI:
		backend, err = newOpenAI(cfg)
	case ProviderOpenRouter:
		backend, err = newOpenRouter(cfg)
	case ProviderGemini:
		backend, err = newGemini(ctx, cfg)
	case ProviderFake:
		backend = NewFake()
	}
	if err != nil {
		return nil, fmt.Errorf("llm: init %s: %w", cfg.Provider, err)
	}

	log = log.WithField("provider", cfg.Provider)
	return WithRetry(WithLogging(backend, log), cfg.Retry), nil
}
