// Package errors defines the compiler's error taxonomy.
//
// Every failure raised by the scanner, parser, and compiler passes is an
// *Error carrying a Kind and, when known, the source line it refers to.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes a failure
type Kind int

const (
	// KindLexical: no lexicon pattern matches at the scan position
	KindLexical Kind = iota
	// KindSyntax: parse failures and structural/declaration errors
	KindSyntax
	// KindAmbiguity: the ambiguity resolver could not pick a unique parse
	KindAmbiguity
	// KindConversion: a literal cannot be coerced to its declared type
	KindConversion
	// KindGeneration: errors accumulated during code generation
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "LexicalError"
	case KindSyntax:
		return "SyntaxError"
	case KindAmbiguity:
		return "AmbiguityError"
	case KindConversion:
		return "ConversionError"
	case KindGeneration:
		return "GenerationError"
	default:
		return "Error"
	}
}

// Error is a categorized failure with optional line information
type Error struct {
	Kind    Kind
	Message string
	Line    int // 1-based; 0 when unknown
	Cause   error
}

// Error renders "<message> (line N)" when the line is known
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind
func New(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// Wrap creates an Error that wraps cause
func Wrap(kind Kind, line int, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Cause:   cause,
	}
}

// WithLine returns a copy of err with its line set, unless it already has one.
// Non-*Error values are returned unchanged.
func WithLine(err error, line int) error {
	var e *Error
	if !stderrors.As(err, &e) || e.Line > 0 || line <= 0 {
		return err
	}
	cp := *e
	cp.Line = line
	return &cp
}

// Is reports whether err is, or wraps, an *Error of the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// Join aggregates several errors of one kind into a single Error whose
// message is the newline-joined text of each.
func Join(kind Kind, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return &Error{
		Kind:    kind,
		Message: strings.Join(msgs, "\n"),
		Cause:   stderrors.Join(errs...),
	}
}
