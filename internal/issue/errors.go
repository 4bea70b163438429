// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
)

// Usage is the one-line synopsis printed on usage errors.
const Usage = "Usage: envflat <input-file> [prefix]"

type (
	// UsageError reports a wrong argument count or an invalid flag value.
	UsageError struct {
		// Reason is optional; the synopsis is always printed.
		Reason string
	}

	// ParseError reports an input document that could not be read or decoded.
	// A missing or unreadable file is a ParseError too.
	ParseError struct {
		// Format is the display name of the input format, e.g. "YAML".
		Format string
		// Resource is the file being parsed ("-" for standard input).
		Resource string
		Cause    error
	}

	// NameError reports output rejected by strict mode.
	NameError struct {
		// Name is the offending variable name, when one can be pinned down.
		Name   string
		Reason string
		Cause  error
	}
)

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Reason == "" {
		return "invalid usage"
	}
	return e.Reason
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := "error parsing " + e.Format
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Cause }

// Error implements the error interface.
func (e *NameError) Error() string {
	var msg strings.Builder
	if e.Name != "" {
		msg.WriteString(e.Name)
		msg.WriteString(": ")
	}
	msg.WriteString(e.Reason)
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause.
func (e *NameError) Unwrap() error { return e.Cause }

// Diagnostic returns the text written to standard error for err.
//
//	UsageError       [reason\n]Usage: envflat <input-file> [prefix]
//	ParseError       # Error parsing YAML: <cause>
//	NameError        # Error: <message>
//	ActionableError  Format(verbose)
//	anything else    Error: <message>\nUsage: ...
func Diagnostic(err error, verbose bool) string {
	var (
		usageErr *UsageError
		parseErr *ParseError
		nameErr  *NameError
		ae       *ActionableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		msg := "# Error parsing " + parseErr.Format
		if parseErr.Cause != nil {
			msg += ": " + oneLine(parseErr.Cause.Error())
		}
		return msg
	case errors.As(err, &nameErr):
		return "# Error: " + oneLine(nameErr.Error())
	case errors.As(err, &usageErr):
		if usageErr.Reason == "" {
			return Usage
		}
		return usageErr.Reason + "\n" + Usage
	case errors.As(err, &ae):
		return ae.Format(verbose)
	default:
		// cobra flag parsing errors land here
		return "Error: " + err.Error() + "\n" + Usage
	}
}

// IDFor maps err to the catalog entry that explains it.
func IDFor(err error) (ID, bool) {
	var (
		usageErr *UsageError
		parseErr *ParseError
		nameErr  *NameError
		ae       *ActionableError
	)
	switch {
	case errors.As(err, &parseErr):
		if errors.Is(parseErr.Cause, fs.ErrNotExist) {
			return FileNotFoundID, true
		}
		return ParseFailedID, true
	case errors.As(err, &nameErr):
		return InvalidNameID, true
	case errors.As(err, &usageErr):
		return UsageID, true
	case errors.As(err, &ae):
		return ConfigLoadFailedID, true
	default:
		return 0, false
	}
}

// oneLine folds multi-line causes (CUE and TOML report several lines) so the
// diagnostic stays a single line.
func oneLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "; ")
}
