// SPDX-License-Identifier: MPL-2.0

// Package flatten turns a document tree into an ordered list of compound-key
// entries.
//
// Mapping keys are joined with a separator on the way down. Sequences are not
// descended into: their elements are joined with single spaces into one value.
// Null becomes the empty string and scalars keep their canonical text.
package flatten

import (
	"strings"

	"github.com/envflat/envflat/internal/tree"
)

// DefaultSeparator joins the keys of nested mappings.
const DefaultSeparator = "_"

type (
	// Entry is one flattened key/value pair.
	Entry struct {
		Key   string
		Value string
	}

	// Options controls how keys are built.
	Options struct {
		// Prefix is prepended to every top-level key, joined with Separator.
		// It is not the output prefix written in front of variable names.
		Prefix string
		// Separator joins nested keys. Empty concatenates them.
		Separator string
	}

	collector struct {
		entries []Entry
		index   map[string]int
	}
)

// DefaultOptions returns Options with the default separator and no prefix.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator}
}

// Flatten walks root depth-first in declaration order and returns its entries.
//
// Keys are unique in the result. When two paths produce the same compound key
// the entry stays where the key first appeared and carries the last value.
// A root that is empty in the sense of tree.Node.IsEmpty yields no entries.
func Flatten(root tree.Node, opts Options) []Entry {
	if root.IsEmpty() {
		return nil
	}

	c := &collector{index: make(map[string]int)}
	c.walk(root, opts.Prefix, opts.Separator)
	return c.entries
}

func (c *collector) walk(n tree.Node, key, sep string) {
	switch n.Kind() {
	case tree.KindMapping:
		for _, e := range n.Entries() {
			c.walk(e.Value, childKey(key, e.Key, sep), sep)
		}
	case tree.KindSequence:
		c.add(key, joinItems(n.Items()))
	case tree.KindScalar:
		c.add(key, n.Text())
	case tree.KindNull:
		c.add(key, "")
	}
}

func (c *collector) add(key, value string) {
	if i, ok := c.index[key]; ok {
		c.entries[i].Value = value
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry{Key: key, Value: value})
}

func childKey(prefix, key, sep string) string {
	if prefix == "" {
		return key
	}
	return prefix + sep + key
}

// joinItems renders each element on one line and joins them with spaces.
// Mapping and sequence elements use their flow form.
func joinItems(items []tree.Node) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}
