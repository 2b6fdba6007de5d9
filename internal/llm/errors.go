package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit reports a 429 from the provider. RetryAfter, when the
// provider supplied one, overrides the computed backoff.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("oracle rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse reports output that failed schema validation: an
// evaluation missing its score, a scenario missing its opening line.
// Content keeps the offending output for the event log.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("oracle response failed validation: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable reports a provider that is down or unreachable.
// Evaluation and artifact generation both fail fast on it after retries;
// nothing is cached or applied to progress.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle unavailable: %v", e.Err)
	}
	return "oracle unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded reports a response cut off at the MaxTokens cap.
// Truncated JSON never validates, so this is a token budget problem to
// fix in the request, not a transient failure.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "oracle response truncated at max tokens"
}
