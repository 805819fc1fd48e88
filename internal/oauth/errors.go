package oauth

import "errors"

// ErrConfigNotFound is returned when no OAuth parameter row matches the
// requested (workspace, source definition) scope. Lookups never succeed
// with an empty result.
var ErrConfigNotFound = errors.New("oauth parameter not configured for scope")

// ValidationError reports a malformed stored configuration or callback
// payload. It is distinct from transport failures so callers can map it to
// a client-side error.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "oauth validation: " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
