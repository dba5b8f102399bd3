package symbolic

import (
	"errors"
	"fmt"
)

// ErrNotComputable is the root of every failure that is local to a single
// computation: callers can treat it as "no value here" and keep going.
var ErrNotComputable = errors.New("symbolic: not computable")

var (
	ErrDomain           = fmt.Errorf("%w: outside the real domain", ErrNotComputable)
	ErrNoAntiderivative = fmt.Errorf("%w: no elementary antiderivative found", ErrNotComputable)
	ErrUnsolvable       = fmt.Errorf("%w: equation has no finite solution set", ErrNotComputable)
	ErrNoLimit          = fmt.Errorf("%w: limit could not be determined", ErrNotComputable)
)

// ParseError reports malformed function text. Pos is a 0-based rune offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}
