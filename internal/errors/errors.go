package errors

import "fmt"

// The engine surfaces exactly five deterministic domain error kinds.
// Anything else that bubbles out of a repository or collaborator is an
// infrastructure fault and is deliberately left untyped so callers can
// apply their own retry policy.

// ValidationError reports malformed caller input (vector length/range,
// bad identifiers, bad questionnaire payloads). Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an unknown user or pair.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// IncompleteProfileError reports a missing personality questionnaire where
// scoring or filtering requires one.
type IncompleteProfileError struct {
	Msg string
}

func (e *IncompleteProfileError) Error() string { return e.Msg }

// InvalidChoiceError reports a choice that does not reference an entry in
// the caller's daily selection snapshot.
type InvalidChoiceError struct {
	Msg string
}

func (e *InvalidChoiceError) Error() string { return e.Msg }

// QuotaExceededError reports that the caller already consumed their daily
// choice quota.
type QuotaExceededError struct {
	Msg string
}

func (e *QuotaExceededError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func IncompleteProfile(format string, args ...any) error {
	return &IncompleteProfileError{Msg: fmt.Sprintf(format, args...)}
}

func InvalidChoice(format string, args ...any) error {
	return &InvalidChoiceError{Msg: fmt.Sprintf(format, args...)}
}

func QuotaExceeded(format string, args ...any) error {
	return &QuotaExceededError{Msg: fmt.Sprintf(format, args...)}
}
