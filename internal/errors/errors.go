// Package errors provides structured error handling for netsweep
// operations. It defines error codes, typed errors for scan and
// configuration failures, and utilities for classifying them.
package errors

import (
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"

	// Input and usage errors.
	CodeUsage         ErrorCode = "USAGE"
	CodeTargetInvalid ErrorCode = "TARGET_INVALID"
	CodePortInvalid   ErrorCode = "PORT_INVALID"

	// Scanning errors.
	CodeScanFailed      ErrorCode = "SCAN_FAILED"
	CodeResolveFailed   ErrorCode = "RESOLVE_FAILED"
	CodeProbeFailed     ErrorCode = "PROBE_FAILED"
	CodeHostUnreachable ErrorCode = "HOST_UNREACHABLE"
)

// ScanError represents an error that occurred while preparing or running
// a scan.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{Code: code, Message: message}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{Code: code, Message: message, Target: target}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{Code: code, Message: message, Cause: err}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{Code: code, Message: message}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{Code: code, Message: message, Field: field, Value: value}
}

// Utility functions for common error operations

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	switch e := err.(type) {
	case *ScanError:
		return e.Code
	case *ConfigError:
		return e.Code
	}
	return CodeUnknown
}

// IsUsage reports whether an error is a usage error that should abort
// the scan before any probing and print usage help.
func IsUsage(err error) bool {
	return IsCode(err, CodeUsage)
}

// IsFatal determines if an error indicates a fatal condition that should
// stop execution.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeUsage, CodeConfiguration, CodeTargetInvalid:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrInvalidTarget creates an error for invalid target expressions.
func ErrInvalidTarget(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTargetInvalid, "invalid target expression", target)
}

// WrapTargetError wraps a parse failure for a target segment.
func WrapTargetError(target string, err error) *ScanError {
	return &ScanError{
		Code:    CodeTargetInvalid,
		Message: "invalid target expression",
		Target:  target,
		Cause:   err,
	}
}

// ErrUDPWithoutPorts creates the usage error for a UDP scan requested
// with no valid port to probe.
func ErrUDPWithoutPorts() *ScanError {
	return NewScanError(CodeUsage, "udp scan requires at least one valid port")
}

// ErrNoValidPorts creates the usage error raised when every supplied
// port token was rejected.
func ErrNoValidPorts() *ScanError {
	return NewScanError(CodeUsage, "no valid ports in port specification")
}
