package decodex

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy. Configuration and Fatal errors halt initialization or the
// search outright; TransformationFailure and RecognizerFailure are recorded
// and the engine continues; Cancelled is not an error condition, just a
// reason a search ended without a result.
var (
	ErrConfiguration        = errors.New("decodex: configuration error")
	ErrTransformationFailed = errors.New("decodex: transformation failed")
	ErrRecognizerFailed     = errors.New("decodex: recognizer failed")
	ErrResourcePressure     = errors.New("decodex: resource pressure")
	ErrCancelled            = errors.New("decodex: search cancelled")
	ErrFatal                = errors.New("decodex: fatal invariant violation")

	// ErrIndexOutOfBounds is returned by Registry.At when the index is out
	// of range.
	ErrIndexOutOfBounds = errors.New("decodex: index out of bounds")
)

// SearchError wraps a taxonomy sentinel with the connector path that
// produced it, the input that was being processed, and timing information —
// the same shape as pipz's PipelineError[T], generalized to
// decodex's own error classes instead of a single generic wrapper.
type SearchError struct {
	Class     error // one of the Err* sentinels above
	Path      []string
	Input     string
	Err       error
	Timestamp time.Time
	Duration  time.Duration
}

func (e *SearchError) Error() string {
	loc := "decodex"
	if len(e.Path) > 0 {
		loc = e.Path[0]
		for _, p := range e.Path[1:] {
			loc += "." + p
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Class)
}

// Unwrap supports errors.Is/errors.As against both the taxonomy class and
// the wrapped cause.
func (e *SearchError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Class, e.Err}
	}
	return []error{e.Class}
}

// WithPath returns a copy of e with name prepended to its Path, the same
// convention pipz's connectors use to build a breadcrumb trail as an
// error propagates outward through nested processors.
func (e *SearchError) WithPath(name string) *SearchError {
	cp := *e
	cp.Path = append([]string{name}, e.Path...)
	return &cp
}

func newSearchError(class error, path string, input string, cause error) *SearchError {
	return &SearchError{
		Class:     class,
		Path:      []string{path},
		Input:     input,
		Err:       cause,
		Timestamp: time.Now(),
	}
}

// recoverFromPanic converts a panic during a Transformation or Recognizer
// call into a Fatal SearchError instead of letting it cross the goroutine
// boundary unhandled, mirroring pipz connectors' defer
// recoverFromPanic(&result, &err, ...) guard on every Process method.
func recoverFromPanic(errp *error, path string, input string) {
	if r := recover(); r != nil {
		*errp = newSearchError(ErrFatal, path, input, fmt.Errorf("panic: %v", r))
	}
}
