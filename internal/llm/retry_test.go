package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, Base: time.Millisecond, Cap: 5 * time.Millisecond, Factor: 2}
}

func TestRetryRecoversFromTransient(t *testing.T) {
	f := NewFake(
		Scripted{Err: rateLimited(errors.New("429"))},
		Scripted{Err: unavailable(errors.New("502"))},
		Scripted{Content: []byte(`{"tip":"ok"}`)},
	)
	reply, err := WithRetry(f, fastPolicy()).Generate(context.Background(), Prompt{User: "hi", Schema: tipSchema()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tip":"ok"}`, string(reply.Content))
	assert.Len(t, f.Prompts(), 3)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	f := NewFake()
	_, err := WithRetry(f, fastPolicy()).Generate(context.Background(), Prompt{User: "hi"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)
	assert.Len(t, f.Prompts(), 3)
}

func TestRetryInvalidOnlyOnce(t *testing.T) {
	policy := fastPolicy()
	policy.Attempts = 5
	f := NewFake(
		Scripted{Content: []byte(`nope`)},
		Scripted{Content: []byte(`still nope`)},
		Scripted{Content: []byte(`{"tip":"never reached"}`)},
	)
	_, err := WithRetry(f, policy).Generate(context.Background(), Prompt{Schema: tipSchema()})
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalid, kind)
	assert.Len(t, f.Prompts(), 2)
}

func TestRetrySkipsTruncated(t *testing.T) {
	f := NewFake(Scripted{Err: &Error{Kind: KindTruncated}})
	_, err := WithRetry(f, fastPolicy()).Generate(context.Background(), Prompt{})
	require.Error(t, err)
	assert.Len(t, f.Prompts(), 1)
}

func TestRetryHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFake(Scripted{Err: context.Canceled})
	_, err := WithRetry(f, fastPolicy()).Generate(ctx, Prompt{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.Prompts(), 1)
}

func TestRetryWaitUsesRetryAfter(t *testing.T) {
	r := &retrying{policy: fastPolicy()}
	assert.Equal(t, 7*time.Second, r.wait(0, &Error{Kind: KindRateLimited, RetryAfter: 7 * time.Second}))

	d := r.wait(10, unavailable(nil))
	assert.LessOrEqual(t, d, 6*time.Millisecond)
	assert.GreaterOrEqual(t, d, 4*time.Millisecond)
}
