package analysis

import (
	"errors"
	"fmt"

	"github.com/njchilds90/calctool/symbolic"
)

var (
	// ErrInvalidRequest reports a request that failed validation.
	ErrInvalidRequest = errors.New("analysis: invalid request")
	// ErrComputationUndefined marks a single value that could not be
	// computed. It never aborts a request; the value becomes undefined.
	ErrComputationUndefined = errors.New("analysis: computation undefined")
	// ErrSingularityInDomain is reported when an integral crosses a pole.
	ErrSingularityInDomain = errors.New("analysis: singularity inside the integration interval")
	// ErrComputationTimeout is returned when a provider call runs past its
	// deadline. It aborts the request.
	ErrComputationTimeout = errors.New("analysis: computation timed out")
)

// ParseFailure wraps a malformed function text.
type ParseFailure struct {
	Text string
	Err  *symbolic.ParseError
}

func (e *ParseFailure) Error() string { return e.Err.Error() }

func (e *ParseFailure) Unwrap() error { return e.Err }

// ComputationError is an unexpected provider failure, including a recovered
// panic, caught at the request boundary.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("analysis: %s failed: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// isLocal reports whether err only makes one value undefined.
func isLocal(err error) bool {
	return errors.Is(err, symbolic.ErrNotComputable) || errors.Is(err, ErrComputationUndefined)
}

// Classify names the error family for logs and transport status mapping.
func Classify(err error) string {
	var pf *ParseFailure
	var ce *ComputationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &pf):
		return "parse_error"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrComputationTimeout):
		return "timeout"
	case errors.As(err, &ce):
		return "computation_error"
	}
	return "internal"
}
