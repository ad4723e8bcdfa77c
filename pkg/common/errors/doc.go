// Package errors defines the error values shared by asyncflow packages.
//
// Sentinels are compared with errors.Is. ValidationError always unwraps to
// ErrInvalidConfiguration, OperationError unwraps to its cause and
// PanicError carries a value recovered from a panicking handler.
package errors
