// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used across codasai. Codes classify
//              errors for logging and for mapping onto transport status
//              values (HTTP, gRPC).
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-19 v0.2.0: Reduced to codasai domain, added state language codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// State language
	CodeStateLex             Code = "STATE_LEX"
	CodeStateSyntax          Code = "STATE_SYNTAX"
	CodeStateMissingArgument Code = "STATE_MISSING_ARGUMENT"
	CodeDuplicateEntry       Code = "DUPLICATE_ENTRY"

	// Workspace and storage
	CodePathEscape    Code = "PATH_ESCAPE"
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeStateLex, CodeStateSyntax, CodeStateMissingArgument, CodeDuplicateEntry,
		CodePathEscape, CodeDatabaseError,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeStateLex, CodeStateSyntax, CodeStateMissingArgument, CodeDuplicateEntry:
		return "state"
	case CodePathEscape, CodeDatabaseError:
		return "storage"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodePathEscape:
		return 403
	case CodeInvalidInput, CodeStateLex, CodeStateSyntax, CodeStateMissingArgument:
		return 400
	case CodeDuplicateEntry:
		return 409
	case CodeTimeout:
		return 408
	case CodeDatabaseError:
		return 503
	default:
		return 500
	}
}
