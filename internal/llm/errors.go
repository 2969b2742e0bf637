package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	KindUnavailable Kind = iota
	KindRateLimited
	KindInvalid
	KindTruncated
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "truncated"
	default:
		return "unavailable"
	}
}

// Error is returned by every Provider in this package.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration
	// Content holds the offending body for KindInvalid and KindTruncated.
	Content json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "llm: " + e.Kind.String()
	}
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err and whether it is an *Error at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func unavailable(err error) error { return &Error{Kind: KindUnavailable, Err: err} }

func rateLimited(err error) error { return &Error{Kind: KindRateLimited, Err: err} }

func invalid(content json.RawMessage, format string, args ...any) error {
	return &Error{Kind: KindInvalid, Content: content, Err: fmt.Errorf(format, args...)}
}

// classifyStatus maps an HTTP status from any backend SDK.
func classifyStatus(status int, err error) error {
	if status == 429 {
		return rateLimited(err)
	}
	return unavailable(err)
}
