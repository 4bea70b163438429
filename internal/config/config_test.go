// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/envflat/envflat/internal/decode"
	"github.com/envflat/envflat/internal/issue"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("envflat", pflag.ContinueOnError)
	fs.StringP("separator", "s", "_", "")
	fs.StringP("format", "f", "auto", "")
	fs.Bool("export", false, "")
	fs.Bool("strict", false, "")
	fs.BoolP("verbose", "v", false, "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "envflat.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want %+v", *cfg, *DefaultConfig())
	}
	if cfg.Prefix != "CONFIG_" || cfg.Separator != "_" || cfg.Format != "auto" {
		t.Errorf("unexpected defaults: %+v", *cfg)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
prefix:    "APP_"
separator: "__"
format:    "json"
export:    true
`)

	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "file overrides defaults",
			want: Config{Prefix: "APP_", Separator: "__", Format: "json", Export: true},
		},
		{
			name: "flags override file",
			args: []string{"-s", ".", "--format=yaml", "--strict", "-v"},
			want: Config{Prefix: "APP_", Separator: ".", Format: "yaml", Export: true, Strict: true, Verbose: true},
		},
		{
			name: "flag explicitly set to its default still wins",
			args: []string{"--separator=_", "--export=false"},
			want: Config{Prefix: "APP_", Separator: "_", Format: "json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := NewProvider().Load(context.Background(), LoadOptions{
				ConfigFilePath: path,
				Flags:          newFlags(t, tt.args...),
			})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if *cfg != tt.want {
				t.Errorf("Load() = %+v, want %+v", *cfg, tt.want)
			}
		})
	}
}

func TestLoad_FlagsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{
		Flags: newFlags(t, "--format", "TOML", "--export"),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	f, err := cfg.InputFormat()
	if err != nil {
		t.Fatalf("InputFormat() error = %v", err)
	}
	if f != decode.FormatTOML {
		t.Errorf("InputFormat() = %q, want %q", f, decode.FormatTOML)
	}
	if !cfg.RenderOptions().Export {
		t.Error("RenderOptions().Export = false, want true")
	}
	if cfg.RenderOptions().Prefix != "CONFIG_" {
		t.Errorf("RenderOptions().Prefix = %q, want CONFIG_", cfg.RenderOptions().Prefix)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		missing bool
		args    []string
		wantOp  string
		wantMsg string
	}{
		{
			name:    "missing file",
			missing: true,
			wantOp:  "load configuration",
			wantMsg: "config file not found",
		},
		{
			name:    "syntax error",
			content: "prefix: \"unterminated\n",
			wantOp:  "load configuration",
			wantMsg: "envflat.cue",
		},
		{
			name:    "unknown field",
			content: "prefixx: \"A_\"\n",
			wantOp:  "load configuration",
			wantMsg: "prefixx",
		},
		{
			name:    "wrong type",
			content: "export: \"yes\"\n",
			wantOp:  "load configuration",
			wantMsg: "export",
		},
		{
			name:    "format outside the schema",
			content: "format: \"xml\"\n",
			wantOp:  "load configuration",
			wantMsg: "format",
		},
		{
			name:    "format flag outside the known set",
			args:    []string{"--format", "ini"},
			wantOp:  "validate configuration",
			wantMsg: `invalid format "ini"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var path string
			switch {
			case tt.missing:
				path = filepath.Join(t.TempDir(), "absent.cue")
			case tt.content != "":
				path = writeConfig(t, tt.content)
			}

			_, err := NewProvider().Load(context.Background(), LoadOptions{
				ConfigFilePath: path,
				Flags:          newFlags(t, tt.args...),
			})
			if err == nil {
				t.Fatal("Load() expected error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T: %v", err, err)
			}
			if ae.Operation != tt.wantOp {
				t.Errorf("Operation = %q, want %q", ae.Operation, tt.wantOp)
			}
			if len(ae.Suggestions) == 0 {
				t.Error("expected at least one suggestion")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_InvalidFormatIsSentinel(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{Flags: newFlags(t, "-f", "ini")})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got: %v", err)
	}
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("error should wrap ErrInvalidFormat, got: %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "// "+strings.Repeat("x", int(MaxFileSize))+"\n")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("Load() error = %v, want size limit error", err)
	}
}
