// SPDX-License-Identifier: MPL-2.0

// Package issue defines the errors envflat reports to users and how they are
// printed.
//
// UsageError, ParseError and NameError map onto the one-line diagnostics the
// command writes to standard error. ActionableError carries an operation,
// a resource and suggestions for configuration problems. The Issue catalog
// holds Markdown guidance rendered in verbose mode.
package issue
