// SPDX-License-Identifier: MPL-2.0

// Package decode parses configuration documents into tree nodes.
//
// Each supported format has its own decoder; all of them keep mapping keys in
// declaration order and return a Null node for empty or whitespace-only input.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/envflat/envflat/internal/tree"
)

// Format identifies an input format.
type Format string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto    Format = "auto"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatTOML    Format = "toml"
	FormatCUE     Format = "cue"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown format")

// decoderFunc parses a complete document. name is used in error messages.
type decoderFunc func(name string, data []byte) (tree.Node, error)

var decoders = map[Format]decoderFunc{
	FormatYAML:    decodeYAML,
	FormatJSON:    decodeJSON,
	FormatTOML:    decodeTOML,
	FormatCUE:     decodeCUE,
	FormatMsgpack: decodeMsgpack,
}

var extensions = map[string]Format{
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".json":    FormatJSON,
	".toml":    FormatTOML,
	".cue":     FormatCUE,
	".msgpack": FormatMsgpack,
	".mpk":     FormatMsgpack,
}

// Formats lists the concrete formats in the order they are documented.
func Formats() []Format {
	return []Format{FormatYAML, FormatJSON, FormatTOML, FormatCUE, FormatMsgpack}
}

// ParseFormat parses a --format value. Matching is case-insensitive and the
// empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" || f == FormatAuto {
		return FormatAuto, nil
	}
	if _, ok := decoders[f]; !ok {
		return "", fmt.Errorf("%w %q (want auto, yaml, json, toml, cue or msgpack)", ErrUnknownFormat, s)
	}
	return f, nil
}

// Detect returns the format for path based on its extension. Unknown
// extensions, standard input ("-") and extensionless files are YAML.
func Detect(path string) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatYAML
}

// Resolve returns f, or the detected format for path when f is FormatAuto.
func Resolve(f Format, path string) Format {
	if f == "" || f == FormatAuto {
		return Detect(path)
	}
	return f
}

// DisplayName is the name used in diagnostics, e.g. "YAML".
func (f Format) DisplayName() string {
	switch f {
	case FormatYAML:
		return "YAML"
	case FormatJSON:
		return "JSON"
	case FormatTOML:
		return "TOML"
	case FormatCUE:
		return "CUE"
	case FormatMsgpack:
		return "MessagePack"
	default:
		return strings.ToUpper(string(f))
	}
}

// String returns the lowercase format name.
func (f Format) String() string { return string(f) }

// Decode parses data as format f. Empty or whitespace-only input yields a
// Null node for every format.
func Decode(f Format, name string, data []byte) (tree.Node, error) {
	dec, ok := decoders[f]
	if !ok {
		return tree.Node{}, fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
	}
	if f != FormatMsgpack && len(bytes.TrimSpace(data)) == 0 {
		return tree.Null(), nil
	}
	if len(data) == 0 {
		return tree.Null(), nil
	}
	return dec(name, data)
}
