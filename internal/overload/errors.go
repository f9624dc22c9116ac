package overload

import (
	"errors"
	"fmt"

	"github.com/anatawa12/sai/internal/types"
)

// ErrorCode categorizes resolution failures.
type ErrorCode string

const (
	// ErrCodeNoApplicableOverload indicates no signature accepts the arguments.
	ErrCodeNoApplicableOverload ErrorCode = "NO_APPLICABLE_OVERLOAD"

	// ErrCodeAmbiguousOverload indicates several signatures tie.
	ErrCodeAmbiguousOverload ErrorCode = "AMBIGUOUS_OVERLOAD"
)

// NoMatchError reports that no signature of a group accepts the argument
// types. Fixed and Variadic list the signatures considered in each phase.
type NoMatchError struct {
	Name     string
	Args     types.ArgTypes
	Fixed    []*types.Signature
	Variadic []*types.Signature
}

// Code returns ErrCodeNoApplicableOverload.
func (e *NoMatchError) Code() ErrorCode { return ErrCodeNoApplicableOverload }

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	if len(e.Variadic) == 0 {
		return fmt.Sprintf("None of the fixed arity signatures %s of the method %s match the argument types %s",
			signatureList(e.Fixed), e.Name, e.Args)
	}
	return fmt.Sprintf("None of the fixed arity signatures %s or the variable arity signatures %s of the method %s match the argument types %s",
		signatureList(e.Fixed), signatureList(e.Variadic), e.Name, e.Args)
}

// AmbiguousError reports that several signatures are equally specific for
// the argument types.
type AmbiguousError struct {
	Name       string
	Args       types.ArgTypes
	Mode       Mode
	Candidates []*types.Signature
}

// Code returns ErrCodeAmbiguousOverload.
func (e *AmbiguousError) Code() ErrorCode { return ErrCodeAmbiguousOverload }

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("Can't unambiguously select between %s arity signatures %s of the method %s for argument types %s",
		e.Mode, signatureList(e.Candidates), e.Name, e.Args)
}

// IsNoMatch returns true if err is a NoMatchError.
// Uses errors.As to handle wrapped errors.
func IsNoMatch(err error) bool {
	var ne *NoMatchError
	return errors.As(err, &ne)
}

// IsAmbiguous returns true if err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousError
	return errors.As(err, &ae)
}
