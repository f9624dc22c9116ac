package convert

import (
	"errors"
	"fmt"

	"github.com/anatawa12/sai/internal/types"
)

// ErrorCode categorizes conversion errors.
type ErrorCode string

const (
	// ErrCodeNoConversion indicates no chain exists for a (source, target) pair.
	ErrCodeNoConversion ErrorCode = "NO_CONVERSION"

	// ErrCodeMalformedRule indicates a rule or registration was rejected at setup.
	ErrCodeMalformedRule ErrorCode = "MALFORMED_RULE"

	// ErrCodeConversionFailed indicates a converter rejected a concrete value.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
)

// NoConversionError reports that no conversion from Source to Target exists.
type NoConversionError struct {
	Source *types.Type
	Target *types.Type
}

// Error implements the error interface.
func (e *NoConversionError) Error() string {
	return fmt.Sprintf("%s: %s is not convertible to %s", ErrCodeNoConversion, e.Source, e.Target)
}

// MalformedRuleError reports a rule registration problem. Returned at setup
// time only, never during lookups.
type MalformedRuleError struct {
	Target  *types.Type
	Message string
}

// Error implements the error interface.
func (e *MalformedRuleError) Error() string {
	if e.Target != nil {
		return fmt.Sprintf("%s: rule for %s: %s", ErrCodeMalformedRule, e.Target, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrCodeMalformedRule, e.Message)
}

// ConversionError reports that a converter could not convert a value.
type ConversionError struct {
	Value   any
	Target  *types.Type
	Message string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %v to %s: %s", ErrCodeConversionFailed, e.Value, e.Target, e.Message)
}

// IsNoConversion returns true if err is a NoConversionError.
// Uses errors.As to handle wrapped errors.
func IsNoConversion(err error) bool {
	var ne *NoConversionError
	return errors.As(err, &ne)
}

// IsMalformedRule returns true if err is a MalformedRuleError.
func IsMalformedRule(err error) bool {
	var me *MalformedRuleError
	return errors.As(err, &me)
}

// IsConversionFailed returns true if err is a ConversionError.
func IsConversionFailed(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}

func malformed(target *types.Type, format string, args ...any) *MalformedRuleError {
	return &MalformedRuleError{Target: target, Message: fmt.Sprintf(format, args...)}
}
