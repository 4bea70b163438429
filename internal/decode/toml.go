// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/envflat/envflat/internal/tree"
)

// decodeTOML validates the document with toml.Unmarshal, then rebuilds it from
// the parser's expression stream, which is the only view that keeps key order.
func decodeTOML(_ string, data []byte) (tree.Node, error) {
	var check map[string]any
	if err := toml.Unmarshal(data, &check); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return tree.Node{}, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return tree.Node{}, err
	}

	root := tree.NewMapping()
	current := root

	var p unstable.Parser
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.KeyValue:
			if err := setTOMLKeyValue(current, expr); err != nil {
				return tree.Node{}, err
			}
		case unstable.Table:
			current = descendTOML(root, tomlKey(expr))
		case unstable.ArrayTable:
			current = appendTOMLArrayTable(root, tomlKey(expr))
		}
	}
	if err := p.Error(); err != nil {
		return tree.Node{}, err
	}

	return tree.MappingNode(root), nil
}

func tomlKey(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// descendTOML walks (and creates) the tables named by path. A path element
// that holds an array of tables refers to its last element.
func descendTOML(m *tree.Mapping, path []string) *tree.Mapping {
	for _, key := range path {
		m = tomlChild(m, key)
	}
	return m
}

func tomlChild(m *tree.Mapping, key string) *tree.Mapping {
	if existing, ok := m.Get(key); ok {
		switch existing.Kind() {
		case tree.KindMapping:
			return existing.Mapping()
		case tree.KindSequence:
			items := existing.Items()
			if len(items) > 0 {
				if last := items[len(items)-1].Mapping(); last != nil {
					return last
				}
			}
		}
	}
	child := tree.NewMapping()
	m.Set(key, tree.MappingNode(child))
	return child
}

// appendTOMLArrayTable handles [[a.b]]: it appends a new table to the array
// at a.b and returns it.
func appendTOMLArrayTable(root *tree.Mapping, path []string) *tree.Mapping {
	parent := descendTOML(root, path[:len(path)-1])
	last := path[len(path)-1]

	var items []tree.Node
	if existing, ok := parent.Get(last); ok && existing.Kind() == tree.KindSequence {
		items = append(items, existing.Items()...)
	}
	table := tree.NewMapping()
	items = append(items, tree.MappingNode(table))
	parent.Set(last, tree.Sequence(items...))
	return table
}

func setTOMLKeyValue(m *tree.Mapping, kv *unstable.Node) error {
	path := tomlKey(kv)
	value, err := convertTOMLValue(kv.Value())
	if err != nil {
		return err
	}
	descendTOML(m, path[:len(path)-1]).Set(path[len(path)-1], value)
	return nil
}

func convertTOMLValue(n *unstable.Node) (tree.Node, error) {
	switch n.Kind {
	case unstable.String:
		return tree.String(string(n.Data)), nil
	case unstable.Bool:
		return tree.Bool(string(n.Data) == "true"), nil
	case unstable.Integer:
		return tomlInteger(string(n.Data))
	case unstable.Float:
		return tomlFloat(string(n.Data))
	case unstable.DateTime, unstable.LocalDateTime, unstable.LocalDate, unstable.LocalTime:
		return tree.Timestamp(string(n.Data)), nil
	case unstable.Array:
		var items []tree.Node
		it := n.Children()
		for it.Next() {
			item, err := convertTOMLValue(it.Node())
			if err != nil {
				return tree.Node{}, err
			}
			items = append(items, item)
		}
		return tree.Sequence(items...), nil
	case unstable.InlineTable:
		m := tree.NewMapping()
		it := n.Children()
		for it.Next() {
			if err := setTOMLKeyValue(m, it.Node()); err != nil {
				return tree.Node{}, err
			}
		}
		return tree.MappingNode(m), nil
	default:
		return tree.Node{}, fmt.Errorf("unexpected TOML value kind %s", n.Kind)
	}
}

// tomlInteger accepts every TOML integer form: underscores, a sign and the
// 0x/0o/0b prefixes, all of which strconv understands with base 0.
func tomlInteger(raw string) (tree.Node, error) {
	i, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return tree.Node{}, fmt.Errorf("invalid integer %s: %w", raw, err)
	}
	return tree.Int(i), nil
}

func tomlFloat(raw string) (tree.Node, error) {
	s := strings.ReplaceAll(raw, "_", "")
	switch strings.TrimLeft(s, "+-") {
	case "inf":
		if strings.HasPrefix(s, "-") {
			return tree.Float(math.Inf(-1)), nil
		}
		return tree.Float(math.Inf(1)), nil
	case "nan":
		return tree.Float(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return tree.Node{}, fmt.Errorf("invalid float %s: %w", raw, err)
	}
	return tree.Float(f), nil
}
