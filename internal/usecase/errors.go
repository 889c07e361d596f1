package usecase

import "errors"

// Sentinel errors for the pipeline's failure taxonomy. None of these is
// fatal: scheduled jobs log them and the loop proceeds at its next tick.
var (
	// ErrRateLimitExceeded means a send was refused before reaching any
	// transport; the message stays in draft and is retried next cycle.
	ErrRateLimitExceeded = errors.New("send rate limit exceeded")

	// ErrDuplicateLead means an insert collided with an existing lead
	// (same email, or same name+company).
	ErrDuplicateLead = errors.New("duplicate lead")

	// ErrNotFound means a tracking event referenced an unknown message or
	// lead; the event is dropped and logged.
	ErrNotFound = errors.New("not found")

	// ErrChannelUnavailable means the lead has no contact handle for the
	// resolved channel, or the channel has no configured provider.
	ErrChannelUnavailable = errors.New("channel unavailable")
)

// DomainError carries a machine-readable code alongside the message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TransportError wraps a provider or network failure. Timeouts are treated
// identically to provider-reported failures.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
