package validation

import (
	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
)

// Number is the set of numeric kinds configuration fields use, including
// time.Duration.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// Positive validates that value is greater than zero.
func Positive[N Number](module, field string, value N) error {
	if value <= 0 {
		return gferrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// NonNegative validates that value is zero or greater.
func NonNegative[N Number](module, field string, value N) error {
	if value < 0 {
		return gferrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// NotNil validates that value is not a nil interface.
func NotNil(module, field string, value interface{}) error {
	if value == nil {
		return gferrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// NotEmpty validates that a string value is not empty.
func NotEmpty(module, field string, value string) error {
	if value == "" {
		return gferrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// First returns the first non-nil error, so that checks can be listed in
// the order they should be reported.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
