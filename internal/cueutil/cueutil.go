// SPDX-License-Identifier: MPL-2.0

// Package cueutil formats CUE evaluation errors for users.
package cueutil

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError turns a CUE error into one error whose message lists every
// underlying problem as "<path>: <message>", prefixed by the file name.
// Paths use JSON notation ("servers[0].port").
//
// A single problem yields "<file>: <path>: <message>"; several yield
// "<file>: N errors:" followed by one indented line each.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	var cueErr errors.Error
	if !errors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filename, err)
	}

	list := errors.Errors(err)

	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, formatOne(e))
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: %d errors:\n  %s", filename, len(lines), strings.Join(lines, "\n  "))
}

func formatOne(e errors.Error) string {
	format, args := e.Msg()
	msg := fmt.Sprintf(format, args...)

	var where string
	if positions := errors.Positions(e); len(positions) > 0 && positions[0].IsValid() {
		where = fmt.Sprintf("line %d: ", positions[0].Line())
	}

	if path := JSONPath(errors.Path(e)); path != "" {
		return where + path + ": " + msg
	}
	return where + msg
}

// JSONPath renders a CUE path such as ["servers", "0", "port"] as
// "servers[0].port".
func JSONPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// CheckFileSize returns an error if size exceeds maxSize.
func CheckFileSize(size, maxSize int64, filename string) error {
	if size > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, size, maxSize)
	}
	return nil
}

// ReadFile reads a CUE source file of at most maxSize bytes. The size is
// checked before reading, and the read itself stops one byte past the limit
// in case the file grows in between.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if err := CheckFileSize(info.Size(), maxSize, path); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if err := CheckFileSize(int64(len(data)), maxSize, path); err != nil {
		return nil, err
	}
	return data, nil
}
