package models

import (
	"errors"
	"fmt"
)

type Kind string

const (
	MissingArguments        Kind = "missing_arguments"
	NoRuleFile              Kind = "no_rule_file"
	NoTargetFiles           Kind = "no_target_files"
	HeaderMismatch          Kind = "header_mismatch"
	FieldValidation         Kind = "field_validation"
	ShootingDateUnavailable Kind = "shooting_date_unavailable"
)

// ExpectedError is a failure the user can act upon. It is reported as a single line,
// while every other error is reported with full detail.
type ExpectedError struct {
	Kind Kind
	Msg  string
	Err  error
}

func Expected(kind Kind, format string, a ...interface{}) *ExpectedError {
	return &ExpectedError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

func (e *ExpectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ExpectedError) Unwrap() error { return e.Err }

func IsExpected(err error) bool {
	var e *ExpectedError
	return errors.As(err, &e)
}

// KindOf returns the kind of the first ExpectedError in err's chain, or "".
func KindOf(err error) Kind {
	var e *ExpectedError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
