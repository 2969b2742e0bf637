package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Policy controls retries of transient failures.
type Policy struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
	Factor   float64
}

// DefaultPolicy is three attempts starting at one second.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Base: time.Second, Cap: 10 * time.Second, Factor: 2}
}

type retrying struct {
	next   Provider
	policy Policy
}

// WithRetry retries rate limits and outages with jittered exponential
// backoff. An invalid reply is retried once; truncation and context
// errors are not retried.
func WithRetry(p Provider, policy Policy) Provider {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &retrying{next: p, policy: policy}
}

func (r *retrying) ModelID() string { return r.next.ModelID() }

func (r *retrying) Generate(ctx context.Context, p Prompt) (*Reply, error) {
	var (
		err         error
		invalidSeen bool
	)
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		var reply *Reply
		reply, err = r.next.Generate(ctx, p)
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if kind, ok := KindOf(err); ok {
			switch kind {
			case KindTruncated:
				return nil, err
			case KindInvalid:
				if invalidSeen {
					return nil, err
				}
				invalidSeen = true
			}
		}
		if attempt == r.policy.Attempts-1 {
			break
		}
		t := time.NewTimer(r.wait(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, err
}

func (r *retrying) wait(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	d := float64(r.policy.Base)
	for i := 0; i < attempt; i++ {
		d *= r.policy.Factor
	}
	if r.policy.Cap > 0 && d > float64(r.policy.Cap) {
		d = float64(r.policy.Cap)
	}
	// +/-20% jitter
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
