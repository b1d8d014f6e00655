package port

import "time"

// ErrorKind classifies a provider failure for the retry helper, replacing
// string/exception-type sniffing with a normalized result per provider call.
type ErrorKind string

const (
	ErrorKindRateLimited ErrorKind = "rate_limited"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindServerError ErrorKind = "server_error"
	ErrorKindFatal       ErrorKind = "fatal"
)

// ProviderError is the normalized shape every provider adapter returns
// instead of raw SDK errors, so the retry helper can inspect Kind rather
// than match on strings or provider-specific exception types.
type ProviderError struct {
	Kind       ErrorKind
	Retriable  bool
	RetryAfter *time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a ProviderError of the given kind. Rate
// limits, timeouts, and 5xx responses are retriable; everything else is
// fatal to the attempt.
func NewProviderError(kind ErrorKind, err error) *ProviderError {
	retriable := kind == ErrorKindRateLimited || kind == ErrorKindTimeout || kind == ErrorKindServerError
	return &ProviderError{Kind: kind, Retriable: retriable, Err: err}
}
