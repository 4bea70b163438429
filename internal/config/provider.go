// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/spf13/pflag"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath loads a CUE config file when set.
	ConfigFilePath string
	// Flags are bound to their settings; only flags set on the command line
	// override the config file.
	Flags *pflag.FlagSet
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load resolves the configuration from flags, the optional file and defaults.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}
