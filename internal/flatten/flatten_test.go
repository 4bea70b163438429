// SPDX-License-Identifier: MPL-2.0

package flatten_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/envflat/envflat/internal/flatten"
	"github.com/envflat/envflat/internal/tree"
)

func mapping(kv ...any) tree.Node {
	m := tree.NewMapping()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(tree.Node))
	}
	return tree.MappingNode(m)
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root tree.Node
		opts flatten.Options
		want []flatten.Entry
	}{
		{
			name: "flat mapping keeps order",
			root: mapping("a", tree.Int(1), "b", tree.String("x")),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a", Value: "1"}, {Key: "b", Value: "x"}},
		},
		{
			name: "nested mapping",
			root: mapping("a", mapping("b", tree.Int(2))),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a_b", Value: "2"}},
		},
		{
			name: "sequence joined with spaces",
			root: mapping("a", tree.Sequence(tree.Int(1), tree.Int(2), tree.Int(3))),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a", Value: "1 2 3"}},
		},
		{
			name: "null becomes empty",
			root: mapping("a", tree.Null()),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a", Value: ""}},
		},
		{
			name: "sequence of mappings is stringified",
			root: mapping("a", tree.Sequence(mapping("b", tree.Int(2)), tree.String("c"))),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a", Value: "{b: 2} c"}},
		},
		{
			name: "empty sequence yields empty value",
			root: mapping("a", tree.Sequence()),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a", Value: ""}},
		},
		{
			name: "empty nested mapping yields nothing",
			root: mapping("a", mapping(), "b", tree.Bool(false)),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "b", Value: "false"}},
		},
		{
			name: "custom separator",
			root: mapping("a", mapping("b", mapping("c", tree.Float(1.5)))),
			opts: flatten.Options{Separator: "."},
			want: []flatten.Entry{{Key: "a.b.c", Value: "1.5"}},
		},
		{
			name: "empty separator concatenates",
			root: mapping("a", mapping("b", tree.Int(1))),
			opts: flatten.Options{},
			want: []flatten.Entry{{Key: "ab", Value: "1"}},
		},
		{
			name: "key prefix",
			root: mapping("a", tree.Int(1)),
			opts: flatten.Options{Prefix: "app", Separator: "_"},
			want: []flatten.Entry{{Key: "app_a", Value: "1"}},
		},
		{
			name: "colliding keys keep first position and last value",
			root: mapping("a_b", tree.Int(1), "c", tree.Int(3), "a", mapping("b", tree.Int(2))),
			opts: flatten.DefaultOptions(),
			want: []flatten.Entry{{Key: "a_b", Value: "2"}, {Key: "c", Value: "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, flatten.Flatten(tt.root, tt.opts))
		})
	}
}

func TestFlatten_EmptyRoot(t *testing.T) {
	t.Parallel()

	roots := map[string]tree.Node{
		"null":           tree.Null(),
		"empty mapping":  mapping(),
		"empty sequence": tree.Sequence(),
		"zero":           tree.Int(0),
		"empty string":   tree.String(""),
	}

	for name, root := range roots {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, flatten.Flatten(root, flatten.DefaultOptions()))
		})
	}
}
