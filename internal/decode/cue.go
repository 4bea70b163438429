// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/envflat/envflat/internal/cueutil"
	"github.com/envflat/envflat/internal/tree"
)

// decodeCUE evaluates a CUE file and requires every regular field to be
// concrete. Definitions, hidden fields and optional fields are not emitted.
func decodeCUE(name string, data []byte) (tree.Node, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return tree.Node{}, cueutil.FormatError(err, name)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return tree.Node{}, cueutil.FormatError(err, name)
	}

	n, err := convertCUE(v, 0)
	if err != nil {
		return tree.Node{}, cueutil.FormatError(err, name)
	}
	return n, nil
}

func convertCUE(v cue.Value, depth int) (tree.Node, error) {
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("document nesting exceeds %d levels", maxDepth)
	}
	if d, ok := v.Default(); ok {
		v = d
	}

	switch v.Kind() {
	case cue.NullKind:
		return tree.Null(), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return tree.Node{}, err
		}
		return tree.Bool(b), nil
	case cue.IntKind:
		i, err := v.Int(nil)
		if err != nil {
			return tree.Node{}, err
		}
		return tree.Scalar(tree.ScalarInt, i.String()), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return tree.Node{}, err
		}
		return tree.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return tree.Node{}, err
		}
		return tree.String(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return tree.Node{}, err
		}
		return tree.Binary(b), nil
	case cue.StructKind:
		fields, err := v.Fields()
		if err != nil {
			return tree.Node{}, err
		}
		m := tree.NewMapping()
		for fields.Next() {
			child, err := convertCUE(fields.Value(), depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			m.Set(cueLabel(fields.Selector()), child)
		}
		return tree.MappingNode(m), nil
	case cue.ListKind:
		list, err := v.List()
		if err != nil {
			return tree.Node{}, err
		}
		var items []tree.Node
		for list.Next() {
			item, err := convertCUE(list.Value(), depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			items = append(items, item)
		}
		return tree.Sequence(items...), nil
	default:
		return tree.Node{}, fmt.Errorf("%s: value is not concrete", v.Path())
	}
}

func cueLabel(sel cue.Selector) string {
	if sel.IsString() {
		return sel.Unquoted()
	}
	return sel.String()
}
