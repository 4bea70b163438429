// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		isValid bool
	}{
		{"auto", "auto", true},
		{"empty means auto", "", true},
		{"yaml", "yaml", true},
		{"upper case", "JSON", true},
		{"msgpack", "msgpack", true},
		{"unknown", "xml", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Format = tt.format

			isValid, errs := cfg.IsValid()
			if isValid != tt.isValid {
				t.Errorf("Config{Format: %q}.IsValid() = %v, want %v", tt.format, isValid, tt.isValid)
			}
			if tt.isValid {
				if len(errs) > 0 {
					t.Errorf("IsValid() returned unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("IsValid() returned %d errors, want 1", len(errs))
			}
			if !errors.Is(errs[0], ErrInvalidConfig) || !errors.Is(errs[0], ErrInvalidFormat) {
				t.Errorf("error should wrap ErrInvalidConfig and ErrInvalidFormat, got: %v", errs[0])
			}
			var formatErr *InvalidFormatError
			if !errors.As(errs[0], &formatErr) || formatErr.Value != tt.format {
				t.Errorf("error should carry the rejected value %q, got: %v", tt.format, errs[0])
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := Config{Prefix: "APP_", Separator: ".", Export: true, Strict: true}

	if got := cfg.FlattenOptions(); got.Separator != "." || got.Prefix != "" {
		t.Errorf("FlattenOptions() = %+v", got)
	}
	if got := cfg.RenderOptions(); got.Prefix != "APP_" || !got.Export || !got.Strict {
		t.Errorf("RenderOptions() = %+v", got)
	}
}
