package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the upstream confirmed there is no such player.
	ErrNotFound = errors.New("player not found")
	// ErrUpstream covers transport failures, unexpected shapes and structural
	// API limitations.
	ErrUpstream = errors.New("upstream error")
	// ErrTimeout is handled like ErrUpstream for fallback purposes.
	ErrTimeout = errors.New("upstream timeout")
	// ErrConfiguration is fatal and never recovered from.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidInput rejects a request before any work is done.
	ErrInvalidInput = errors.New("invalid input")
)

// AmbiguousError is returned when a name search matched several identities
// and a human has to pick one.
type AmbiguousError struct {
	Query      string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, fmt.Sprintf("%s (%s)", c.DisplayName, c.ProviderID))
	}
	return fmt.Sprintf("%d players match %q: %s", len(e.Candidates), e.Query, strings.Join(names, ", "))
}

// IsRecoverable reports whether a stale cache entry may stand in for err.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrTimeout)
}

// AsAmbiguous unwraps an *AmbiguousError from err.
func AsAmbiguous(err error) (*AmbiguousError, bool) {
	var amb *AmbiguousError
	if errors.As(err, &amb) {
		return amb, true
	}
	return nil, false
}

// Kind names the taxonomy bucket of err for logs and response bodies.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	if _, ok := AsAmbiguous(err); ok {
		return "ambiguous"
	}
	return "internal"
}
