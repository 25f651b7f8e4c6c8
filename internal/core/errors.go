package core

import (
	"errors"
	"fmt"
)

// ParseErrorKind classifies why user input was rejected.
type ParseErrorKind int

const (
	InvalidFormat ParseErrorKind = iota + 1
	OutOfRange
	FutureDate
)

var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrOutOfRange    = errors.New("out of range")
	ErrFutureDate    = errors.New("date is in the future")
)

func (k ParseErrorKind) String() string {
	switch k {
	case InvalidFormat:
		return "invalid_format"
	case OutOfRange:
		return "out_of_range"
	case FutureDate:
		return "future_date"
	default:
		return "unknown"
	}
}

func (k ParseErrorKind) sentinel() error {
	switch k {
	case InvalidFormat:
		return ErrInvalidFormat
	case OutOfRange:
		return ErrOutOfRange
	case FutureDate:
		return ErrFutureDate
	default:
		return nil
	}
}

// ParseError is the single failure type of the duration and date parsers.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
}

func newParseError(kind ParseErrorKind, input string) *ParseError {
	return &ParseError{Kind: kind, Input: input}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Kind.sentinel())
}

// Is lets errors.Is match the kind sentinels.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// ParseErrorKindOf returns the kind of a wrapped ParseError, if any.
func ParseErrorKindOf(err error) (ParseErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
