package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidRecords is returned when no input record passes validation.
	ErrNoValidRecords = errors.New("no valid records")

	// ErrBuildTimeout is returned when the build exceeds Options.Timeout.
	ErrBuildTimeout = errors.New("build timed out")
)

// Skip reasons recorded in the summary and in meta.json.
const (
	ReasonMalformed = "malformed_json"
	ReasonMissingID = "missing_id"
	ReasonInvalidID = "invalid_id"
	ReasonNoText    = "no_text"
	ReasonDuplicate = "duplicate_id"
)

// ValidationError describes one skipped raw record.
type ValidationError struct {
	File   string
	Line   int // 1-based line, or element index for JSON arrays
	ID     string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	if e.ID != "" {
		msg += fmt.Sprintf(" (id %q)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }
