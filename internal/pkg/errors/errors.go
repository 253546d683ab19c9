package errors

import (
	"errors"
	"fmt"
)

// noteLimit bounds the diagnostic snippet carried alongside upstream
// failures so error payloads stay short enough for logs and responses.
const noteLimit = 120

var (
	ErrNotFound = errors.New("not found")
	ErrNoIndex  = errors.New("index not built")
)

// UpstreamError reports a remote call that returned a non-success
// status or could not complete at all.
type UpstreamError struct {
	Status int
	Note   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status=%d note=%s", e.Status, e.Note)
}

func NewUpstreamError(status int, note string) *UpstreamError {
	return &UpstreamError{Status: status, Note: TruncateNote(note)}
}

// ValidationError reports malformed client input: bad pagination
// values, a URL outside the allow-list, an unknown endpoint group.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoIndex)
}

func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// TruncateNote clips a diagnostic snippet to the note limit.
func TruncateNote(note string) string {
	if len(note) <= noteLimit {
		return note
	}
	return note[:noteLimit]
}
