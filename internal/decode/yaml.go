// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/envflat/envflat/internal/tree"
)

// maxDepth bounds nesting, alias expansion included, while converting a
// document.
const maxDepth = 1000

const (
	yamlNullTag      = "!!null"
	yamlBoolTag      = "!!bool"
	yamlStrTag       = "!!str"
	yamlIntTag       = "!!int"
	yamlFloatTag     = "!!float"
	yamlTimestampTag = "!!timestamp"
	yamlBinaryTag    = "!!binary"
	yamlMergeTag     = "!!merge"
)

var errYAMLMultipleDocuments = errors.New("expected a single document in the stream but found another document")

// decodeYAML parses a single YAML document through the node API so that
// mapping order, anchors and merge keys are all visible.
func decodeYAML(_ string, data []byte) (tree.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Null(), nil
		}
		return tree.Node{}, err
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		return tree.Node{}, errYAMLMultipleDocuments
	case !errors.Is(err, io.EOF):
		return tree.Node{}, err
	}

	c := &yamlConverter{aliases: make(map[*yaml.Node]bool)}
	return c.convert(&doc, 0)
}

// Alias expansion is budgeted the way yaml.v3 budgets it when decoding into
// Go values: small documents may draw up to 99% of their nodes from aliases,
// large ones 10%, scaled linearly in between.
const (
	yamlAliasRatioRangeLow  = 400000
	yamlAliasRatioRangeHigh = 4000000
	yamlAliasRatioRange     = float64(yamlAliasRatioRangeHigh - yamlAliasRatioRangeLow)
)

var errYAMLExcessiveAliasing = errors.New("document contains excessive aliasing")

func yamlAllowedAliasRatio(convertCount int) float64 {
	switch {
	case convertCount <= yamlAliasRatioRangeLow:
		return 0.99
	case convertCount >= yamlAliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(convertCount-yamlAliasRatioRangeLow)/yamlAliasRatioRange)
	}
}

// yamlConverter turns one YAML node tree into a tree.Node.
type yamlConverter struct {
	convertCount int
	aliasCount   int
	aliasDepth   int
	// aliases holds the alias nodes being expanded, to detect cycles.
	aliases map[*yaml.Node]bool
}

// count charges one converted node against the alias budget.
func (c *yamlConverter) count() error {
	c.convertCount++
	if c.aliasDepth > 0 {
		c.aliasCount++
	}
	if c.aliasCount > 100 && c.convertCount > 1000 &&
		float64(c.aliasCount)/float64(c.convertCount) > yamlAllowedAliasRatio(c.convertCount) {
		return errYAMLExcessiveAliasing
	}
	return nil
}

func (c *yamlConverter) convert(n *yaml.Node, depth int) (tree.Node, error) {
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("line %d: document nesting exceeds %d levels", n.Line, maxDepth)
	}
	if err := c.count(); err != nil {
		return tree.Node{}, err
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return tree.Null(), nil
		}
		return c.convert(n.Content[0], depth+1)
	case yaml.AliasNode:
		return c.alias(n, depth, c.convert)
	case yaml.MappingNode:
		if err := checkLocalTag(n); err != nil {
			return tree.Node{}, err
		}
		return c.mapping(n, depth)
	case yaml.SequenceNode:
		if err := checkLocalTag(n); err != nil {
			return tree.Node{}, err
		}
		items := make([]tree.Node, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := c.convert(child, depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			items = append(items, item)
		}
		return tree.Sequence(items...), nil
	case yaml.ScalarNode:
		return convertYAMLScalar(n)
	case 0:
		return tree.Null(), nil
	default:
		return tree.Node{}, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
}

// alias expands an alias node with fn while it counts toward the alias budget.
func (c *yamlConverter) alias(n *yaml.Node, depth int, fn func(*yaml.Node, int) (tree.Node, error)) (tree.Node, error) {
	if n.Alias == nil {
		return tree.Node{}, fmt.Errorf("line %d: unknown anchor %q referenced", n.Line, n.Value)
	}
	if c.aliases[n] {
		return tree.Node{}, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Value)
	}
	c.aliases[n] = true
	c.aliasDepth++
	defer func() {
		c.aliasDepth--
		delete(c.aliases, n)
	}()
	return fn(n.Alias, depth+1)
}

// mapping builds a mapping with merge-key entries first and the mapping's own
// entries after them, so own entries win.
func (c *yamlConverter) mapping(n *yaml.Node, depth int) (tree.Node, error) {
	var merged, own []tree.Entry

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == yamlMergeTag {
			entries, err := c.mergeEntries(valueNode, depth+1)
			if err != nil {
				return tree.Node{}, err
			}
			merged = append(merged, entries...)
			continue
		}

		key, err := c.convert(keyNode, depth+1)
		if err != nil {
			return tree.Node{}, err
		}
		value, err := c.convert(valueNode, depth+1)
		if err != nil {
			return tree.Node{}, err
		}
		own = append(own, tree.Entry{Key: key.String(), Value: value})
	}

	m := tree.NewMapping()
	for _, e := range merged {
		m.Set(e.Key, e.Value)
	}
	for _, e := range own {
		m.Set(e.Key, e.Value)
	}
	return tree.MappingNode(m), nil
}

// mergeEntries returns the entries contributed by a "<<" value: a mapping or
// a sequence of mappings, either possibly behind an alias. In a sequence,
// earlier mappings take precedence, so they are applied last.
func (c *yamlConverter) mergeEntries(n *yaml.Node, depth int) ([]tree.Entry, error) {
	m, err := c.mergeValue(n, depth, true)
	if err != nil {
		return nil, err
	}
	return m.Entries(), nil
}

// mergeValue converts a merge source into a mapping node. A sequence is
// accepted only written inline as the "<<" value, not behind an alias.
func (c *yamlConverter) mergeValue(n *yaml.Node, depth int, allowSequence bool) (tree.Node, error) {
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("line %d: document nesting exceeds %d levels", n.Line, maxDepth)
	}

	switch {
	case n.Kind == yaml.AliasNode:
		return c.alias(n, depth, func(target *yaml.Node, depth int) (tree.Node, error) {
			return c.mergeValue(target, depth, false)
		})
	case n.Kind == yaml.MappingNode:
		return c.convert(n, depth)
	case n.Kind == yaml.SequenceNode && allowSequence:
		m := tree.NewMapping()
		for i := len(n.Content) - 1; i >= 0; i-- {
			item, err := c.mergeValue(n.Content[i], depth+1, false)
			if err != nil {
				return tree.Node{}, err
			}
			for _, e := range item.Entries() {
				m.Set(e.Key, e.Value)
			}
		}
		return tree.MappingNode(m), nil
	default:
		return tree.Node{}, fmt.Errorf("line %d: map merge requires map or sequence of maps as the value", n.Line)
	}
}

func convertYAMLScalar(n *yaml.Node) (tree.Node, error) {
	if err := checkLocalTag(n); err != nil {
		return tree.Node{}, err
	}

	switch tag := n.ShortTag(); tag {
	case yamlNullTag:
		return tree.Null(), nil
	case yamlStrTag:
		return tree.String(n.Value), nil
	case yamlBoolTag:
		var b bool
		if err := n.Decode(&b); err != nil {
			return tree.Node{}, err
		}
		return tree.Bool(b), nil
	case yamlIntTag:
		var v any
		if err := n.Decode(&v); err != nil {
			return tree.Node{}, err
		}
		switch i := v.(type) {
		case int:
			return tree.Int(int64(i)), nil
		case int64:
			return tree.Int(i), nil
		case uint64:
			return tree.Uint(i), nil
		default:
			return tree.Scalar(tree.ScalarInt, n.Value), nil
		}
	case yamlFloatTag:
		var f float64
		if err := n.Decode(&f); err != nil {
			return tree.Node{}, err
		}
		return tree.Float(f), nil
	case yamlTimestampTag:
		return tree.Timestamp(n.Value), nil
	case yamlBinaryTag:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return tree.Node{}, fmt.Errorf("line %d: invalid !!binary value: %w", n.Line, err)
		}
		return tree.Binary(b), nil
	default:
		return tree.String(n.Value), nil
	}
}

// checkLocalTag rejects application-specific tags such as "!Ref", which have
// no string form without a schema.
func checkLocalTag(n *yaml.Node) error {
	tag := n.ShortTag()
	if strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!") {
		return fmt.Errorf("line %d: could not determine a constructor for the tag %q", n.Line, tag)
	}
	return nil
}
