package hfabric

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hfabric/builder"
	"github.com/hupe1980/hfabric/graph"
	"github.com/hupe1980/hfabric/internal/lazy"
	"github.com/hupe1980/hfabric/lexical"
	"github.com/hupe1980/hfabric/publish"
	"github.com/hupe1980/hfabric/similarity"
	"github.com/hupe1980/hfabric/text"
)

var (
	// ErrPackage matches every *PackageError.
	ErrPackage = errors.New("invalid package")

	// ErrNotFound is returned for unknown identifiers, narrators and features.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed query parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedLanguage is returned for a language without a text index.
	ErrUnsupportedLanguage = text.ErrUnsupportedLanguage

	// ErrBuildTimeout is returned when a package build or the
	// materialization of a structure exceeds its time bound.
	ErrBuildTimeout = builder.ErrBuildTimeout

	// ErrNoValidRecords is returned by Build when no input record is valid.
	ErrNoValidRecords = builder.ErrNoValidRecords

	// ErrVersionConflict is returned when a version tag is already
	// published with different content.
	ErrVersionConflict = publish.ErrVersionConflict

	// ErrClosed is returned by queries on a closed handle.
	ErrClosed = errors.New("handle is closed")
)

// BuildValidationError describes one raw record skipped during a build.
type BuildValidationError = builder.ValidationError

// PackageError reports a package that cannot be opened or whose data files
// fail an integrity check.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type PackageError struct {
	// Location is the package directory or store description.
	Location string
	// File is the offending file relative to the package root, if any.
	File string
	cause error
}

func (e *PackageError) Error() string {
	msg := "invalid package " + e.Location
	if e.File != "" {
		msg += ": " + e.File
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *PackageError) Unwrap() error { return e.cause }

// Is reports whether target is ErrPackage.
func (e *PackageError) Is(target error) bool { return target == ErrPackage }

func packageError(location, file string, cause error) *PackageError {
	return &PackageError{Location: location, File: file, cause: cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pe *PackageError
	if errors.As(err, &pe) {
		return err
	}

	// Not found unification.
	if errors.Is(err, similarity.ErrNotFound) || errors.Is(err, graph.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Argument normalization.
	if errors.Is(err, lexical.ErrInvalidArgument) || errors.Is(err, similarity.ErrInvalidArgument) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if errors.Is(err, lazy.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrBuildTimeout, err)
	}

	return err
}
