// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/envflat/envflat/internal/tree"
)

// decodeJSON reads the document token by token so object members keep their
// order. Duplicate names are allowed and behave like repeated map assignment.
func decodeJSON(_ string, data []byte) (tree.Node, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))

	root, err := readJSONValue(dec, 0)
	if err != nil {
		return tree.Node{}, err
	}

	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return tree.Node{}, fmt.Errorf("offset %d: unexpected data after top-level value", dec.InputOffset())
		}
		return tree.Node{}, err
	}
	return root, nil
}

func readJSONValue(dec *jsontext.Decoder, depth int) (tree.Node, error) {
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("offset %d: document nesting exceeds %d levels", dec.InputOffset(), maxDepth)
	}

	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Node{}, io.ErrUnexpectedEOF
		}
		return tree.Node{}, err
	}

	switch tok.Kind() {
	case 'n':
		return tree.Null(), nil
	case 't':
		return tree.Bool(true), nil
	case 'f':
		return tree.Bool(false), nil
	case '"':
		return tree.String(tok.String()), nil
	case '0':
		return jsonNumber(tok.String())
	case '{':
		m := tree.NewMapping()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return tree.Node{}, err
			}
			key := name.String()
			value, err := readJSONValue(dec, depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			m.Set(key, value)
		}
		if _, err := dec.ReadToken(); err != nil {
			return tree.Node{}, err
		}
		return tree.MappingNode(m), nil
	case '[':
		var items []tree.Node
		for dec.PeekKind() != ']' {
			item, err := readJSONValue(dec, depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			items = append(items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return tree.Node{}, err
		}
		return tree.Sequence(items...), nil
	default:
		return tree.Node{}, fmt.Errorf("offset %d: unexpected token %s", dec.InputOffset(), tok.Kind())
	}
}

// jsonNumber keeps integers exact and formats everything else as a float.
func jsonNumber(raw string) (tree.Node, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return tree.Int(i), nil
		}
		if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return tree.Uint(u), nil
		}
		// Too large for 64 bits: keep the digits as written.
		return tree.Scalar(tree.ScalarInt, raw), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return tree.Node{}, fmt.Errorf("invalid number %s: %w", raw, err)
	}
	return tree.Float(f), nil
}
