// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("plain error is wrapped with the file name", func(t *testing.T) {
		t.Parallel()

		original := errors.New("some error")
		err := FormatError(original, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "test.cue: some error"; got != want {
			t.Errorf("FormatError() = %q, want %q", got, want)
		}
		if !errors.Is(err, original) {
			t.Error("FormatError() should wrap the original error")
		}
	})

	t.Run("single CUE error includes line and path", func(t *testing.T) {
		t.Parallel()

		v := cuecontext.New().CompileString("server: port: int\n", cue.Filename("app.cue"))
		err := FormatError(v.Validate(cue.Concrete(true)), "app.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		msg := err.Error()
		for _, want := range []string{"app.cue: ", "line 1: ", "server.port: "} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q should contain %q", msg, want)
			}
		}
	})

	t.Run("several CUE errors are listed", func(t *testing.T) {
		t.Parallel()

		list := cueerrors.Append(
			cueerrors.Newf(token.NoPos, "first problem"),
			cueerrors.Newf(token.NoPos, "second problem"),
		)
		err := FormatError(list, "app.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		want := "app.cue: 2 errors:\n  first problem\n  second problem"
		if got := err.Error(); got != want {
			t.Errorf("FormatError() = %q, want %q", got, want)
		}
	})
}

func TestJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: []string{}, expected: ""},
		{name: "single element", path: []string{"name"}, expected: "name"},
		{name: "nested path", path: []string{"db", "host"}, expected: "db.host"},
		{name: "list index", path: []string{"servers", "0", "port"}, expected: "servers[0].port"},
		{name: "leading index", path: []string{"0", "name"}, expected: "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := JSONPath(tt.path); got != tt.expected {
				t.Errorf("JSONPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("within the limit", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "small.cue")
		if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		data, err := ReadFile(path, 5)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "a: 1\n" {
			t.Errorf("ReadFile() = %q", data)
		}
	})

	t.Run("over the limit", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "large.cue")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		// A sparse file: its size is reported by stat without any data written.
		if err := os.Truncate(path, 1<<30); err != nil {
			t.Fatal(err)
		}
		_, err := ReadFile(path, 1<<20)
		if err == nil {
			t.Fatal("ReadFile() expected error")
		}
		want := "large.cue: file size 1073741824 bytes exceeds maximum 1048576 bytes"
		if !strings.Contains(err.Error(), want) {
			t.Errorf("ReadFile() error = %q, want it to contain %q", err, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := ReadFile(filepath.Join(dir, "absent.cue"), 1<<20)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("ReadFile() error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(100, 100, "a.cue"); err != nil {
		t.Errorf("CheckFileSize(100, 100) error = %v", err)
	}
	if err := CheckFileSize(101, 100, "a.cue"); err == nil {
		t.Error("CheckFileSize(101, 100) expected error")
	}
}
