// SPDX-License-Identifier: MPL-2.0

// Package config resolves envflat's settings using Viper, with CUE as the
// optional config file format.
//
// Settings come from, in decreasing precedence: command-line flags, the file
// named by --config, and built-in defaults. The file is validated against an
// embedded CUE schema (config_schema.cue) before it is merged, so unknown
// fields and wrongly typed values are reported with their position.
package config
