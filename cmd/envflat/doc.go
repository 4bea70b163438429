// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the envflat command line.
//
// The root command reads one configuration document, flattens it and prints
// one shell assignment per leaf. It is executed through fang, which provides
// styled help, --version and signal handling; errors are reported by a custom
// handler that keeps the diagnostic format stable for scripts.
package cmd
