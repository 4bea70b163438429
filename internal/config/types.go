// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/envflat/envflat/internal/decode"
	"github.com/envflat/envflat/internal/flatten"
	"github.com/envflat/envflat/internal/render"
)

var (
	// ErrInvalidFormat is returned when the format setting is not recognized.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// InvalidFormatError is returned when a format value is not recognized.
	// It wraps ErrInvalidFormat for errors.Is() compatibility.
	InvalidFormatError struct {
		Value string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the resolved settings of one run.
	Config struct {
		// Prefix is written in front of every variable name.
		Prefix string `json:"prefix" mapstructure:"prefix"`
		// Separator joins nested keys.
		Separator string `json:"separator" mapstructure:"separator"`
		// Format is the input format name, "auto" to detect it from the file name.
		Format string `json:"format" mapstructure:"format"`
		// Export emits "export NAME=..." lines.
		Export bool `json:"export" mapstructure:"export"`
		// Strict validates the output as shell before writing it.
		Strict bool `json:"strict" mapstructure:"strict"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		Prefix:    render.DefaultPrefix,
		Separator: flatten.DefaultSeparator,
		Format:    string(decode.FormatAuto),
	}
}

// InputFormat returns the parsed Format setting.
func (c Config) InputFormat() (decode.Format, error) {
	f, err := decode.ParseFormat(c.Format)
	if err != nil {
		return "", &InvalidFormatError{Value: c.Format}
	}
	return f, nil
}

// FlattenOptions returns the options for flatten.Flatten.
func (c Config) FlattenOptions() flatten.Options {
	return flatten.Options{Separator: c.Separator}
}

// RenderOptions returns the options for render.Render.
func (c Config) RenderOptions() render.Options {
	return render.Options{Prefix: c.Prefix, Export: c.Export, Strict: c.Strict}
}

// IsValid returns whether the Config has valid fields. Prefix and Separator
// accept any string; strict mode checks the names they produce.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, err := c.InputFormat(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (want auto, yaml, json, toml, cue or msgpack)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so both the
// sentinel and each field's own error match errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
