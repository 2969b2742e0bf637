package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type logged struct {
	next Provider
	log  logrus.FieldLogger
}

// WithLogging records one log line per call with latency, token counts
// and an estimated cost.
func WithLogging(p Provider, log logrus.FieldLogger) Provider {
	return &logged{next: p, log: log}
}

func (l *logged) ModelID() string { return l.next.ModelID() }

func (l *logged) Generate(ctx context.Context, p Prompt) (*Reply, error) {
	start := time.Now()
	reply, err := l.next.Generate(ctx, p)

	entry := l.log.WithFields(logrus.Fields{
		"model":   l.next.ModelID(),
		"purpose": PurposeFrom(ctx),
		"latency": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		if kind, ok := KindOf(err); ok {
			entry = entry.WithField("kind", kind.String())
		}
		entry.WithError(err).Warn("llm call failed")
		return nil, err
	}

	entry = entry.WithFields(logrus.Fields{
		"tokens_in":  reply.Usage.Input,
		"tokens_out": reply.Usage.Output,
		"finish":     reply.Finish,
	})
	if cost, ok := EstimateCost(reply.Model, reply.Usage); ok {
		entry = entry.WithField("cost_usd", cost)
	}
	entry.Debug("llm call")
	return reply, nil
}
