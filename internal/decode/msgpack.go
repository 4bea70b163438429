// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/envflat/envflat/internal/tree"
)

// msgpackReader walks one MessagePack document. size bounds every length
// read from the wire: no array, map or binary value can hold more elements
// or bytes than the input has.
type msgpackReader struct {
	dec  *msgpack.Decoder
	size int
}

// decodeMsgpack reads exactly one MessagePack value. Maps are read entry by
// entry so their wire order survives.
func decodeMsgpack(_ string, data []byte) (tree.Node, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	r := &msgpackReader{dec: dec, size: len(data)}

	root, err := r.readValue(0)
	if err != nil {
		return tree.Node{}, err
	}

	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		if err == nil {
			return tree.Node{}, errors.New("unexpected data after top-level value")
		}
		return tree.Node{}, err
	}
	return root, nil
}

// checkLen rejects a declared length that the remaining input cannot hold.
func (r *msgpackReader) checkLen(n int, what string) error {
	if n > r.size {
		return fmt.Errorf("%s length %d exceeds input size of %d bytes", what, n, r.size)
	}
	return nil
}

func (r *msgpackReader) readValue(depth int) (tree.Node, error) {
	dec := r.dec
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("document nesting exceeds %d levels", maxDepth)
	}

	c, err := dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Node{}, io.ErrUnexpectedEOF
		}
		return tree.Node{}, err
	}

	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return tree.Node{}, err
		}
		return tree.Null(), nil
	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return tree.Node{}, err
		}
		return tree.Bool(b), nil
	case msgpcode.IsBin(c):
		n, err := dec.DecodeBytesLen()
		if err != nil {
			return tree.Node{}, err
		}
		if err := r.checkLen(n, "binary"); err != nil {
			return tree.Node{}, err
		}
		b := make([]byte, max(n, 0))
		if err := dec.ReadFull(b); err != nil {
			return tree.Node{}, err
		}
		return tree.Binary(b), nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return r.readMap(depth)
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return tree.Node{}, err
		}
		if err := r.checkLen(n, "array"); err != nil {
			return tree.Node{}, err
		}
		items := make([]tree.Node, 0, max(n, 0))
		for range n {
			item, err := r.readValue(depth + 1)
			if err != nil {
				return tree.Node{}, err
			}
			items = append(items, item)
		}
		return tree.Sequence(items...), nil
	}

	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return tree.Node{}, err
	}
	switch x := v.(type) {
	case int64:
		return tree.Int(x), nil
	case uint64:
		return tree.Uint(x), nil
	case float64:
		return tree.Float(x), nil
	case string:
		return tree.String(x), nil
	case []byte:
		return tree.Binary(x), nil
	case time.Time:
		return tree.Timestamp(x.UTC().Format(time.RFC3339Nano)), nil
	default:
		return tree.Node{}, fmt.Errorf("unsupported MessagePack value of type %T", v)
	}
}

func (r *msgpackReader) readMap(depth int) (tree.Node, error) {
	n, err := r.dec.DecodeMapLen()
	if err != nil {
		return tree.Node{}, err
	}
	if err := r.checkLen(n, "map"); err != nil {
		return tree.Node{}, err
	}
	m := tree.NewMapping()
	for range n {
		key, err := r.readValue(depth + 1)
		if err != nil {
			return tree.Node{}, err
		}
		value, err := r.readValue(depth + 1)
		if err != nil {
			return tree.Node{}, err
		}
		m.Set(key.String(), value)
	}
	return tree.MappingNode(m), nil
}
