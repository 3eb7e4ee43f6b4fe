package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class that callers map to a response.
type Kind string

const (
	MissingCode                Kind = "MissingCode"
	InvalidLanguage            Kind = "InvalidLanguage"
	InvalidTheme               Kind = "InvalidTheme"
	InvalidColor               Kind = "InvalidColor"
	InvalidFont                Kind = "InvalidFont"
	InvalidLineRange           Kind = "InvalidLineRange"
	InvalidParameter           Kind = "InvalidParameter"
	ClassifierUnavailable      Kind = "ClassifierUnavailable"
	ClassifierInferenceFailure Kind = "ClassifierInferenceFailure"
	RenderFailure              Kind = "RenderFailure"
	EncodeFailure              Kind = "EncodeFailure"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.New(k, "")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsClientError reports whether the kind is caused by caller input.
func IsClientError(k Kind) bool {
	switch k {
	case MissingCode, InvalidLanguage, InvalidTheme, InvalidColor,
		InvalidFont, InvalidLineRange, InvalidParameter:
		return true
	default:
		return false
	}
}
