// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels attached to errors. The logger uses them to
//              pick the level an error is reported at.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Severity mapping for codasai codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a user input problem, e.g. a malformed link
	SeverityLow Severity = iota
	// SeverityMedium affects one operation
	SeverityMedium
	// SeverityHigh affects a subsystem such as storage
	SeverityHigh
	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return SeverityHigh
	case CodeInternal, CodeDuplicateEntry, CodeTimeout:
		return SeverityMedium
	case CodeInvalidInput, CodeNotFound, CodePathEscape,
		CodeStateLex, CodeStateSyntax, CodeStateMissingArgument:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
