package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse             = errors.New("parse error")
	ErrAlignment         = errors.New("misaligned multi-valued fields")
	ErrResolution        = errors.New("unresolved reference")
	ErrNotCommitted      = errors.New("parent stage not committed")
	ErrInvalidTransition = errors.New("invalid stage transition")
	ErrUnsupportedStore  = errors.New("unsupported store")
	ErrDuplicateStage    = errors.New("duplicate stage")
	ErrUnknownDependency = errors.New("unknown stage dependency")
	ErrDependencyCycle   = errors.New("stage dependency cycle")
)

// ParseError reports a source line that could not be parsed.
// Line is the 1-based physical line number in the source file.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: field %s: invalid value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// AlignmentError reports parallel multi-valued fields on one line whose
// sub-value counts differ.
type AlignmentError struct {
	Line    int
	Fields  []string
	Lengths []int
}

func (e *AlignmentError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s=%d", f, e.Lengths[i])
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, ErrAlignment, strings.Join(parts, ", "))
}

func (e *AlignmentError) Unwrap() error { return ErrAlignment }

// ResolutionError reports a business key missing from a lookup.
type ResolutionError struct {
	Lookup string
	Key    string
	Line   int // 0 when the key is not tied to a single source line
}

func (e *ResolutionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %s %q", e.Line, ErrResolution, e.Lookup, e.Key)
	}
	return fmt.Sprintf("%v: %s %q", ErrResolution, e.Lookup, e.Key)
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }

// CheckAligned returns an AlignmentError when the given lists differ in length.
// names and lengths are parallel.
func CheckAligned(line int, names []string, lengths ...int) error {
	for _, n := range lengths[1:] {
		if n != lengths[0] {
			return &AlignmentError{Line: line, Fields: names, Lengths: lengths}
		}
	}
	return nil
}
