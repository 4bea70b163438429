// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"encoding/base64"
	"strconv"
	"strings"
)

type (
	// Kind is the tag of a Node.
	Kind int

	// ScalarType records which kind of leaf value a scalar Node was decoded from.
	// The scalar's text is already canonical; the type is kept for emptiness
	// checks and diagnostics.
	ScalarType int

	// Node is a single value of a decoded document.
	// The zero value is a Null node.
	Node struct {
		kind    Kind
		scalar  ScalarType
		text    string
		items   []Node
		mapping *Mapping
	}

	// Entry is one key/value pair of a Mapping.
	Entry struct {
		Key   string
		Value Node
	}

	// Mapping is an insertion-ordered collection of entries.
	// Setting an existing key replaces its value but keeps its position.
	Mapping struct {
		entries []Entry
		index   map[string]int
	}
)

const (
	// KindNull is an explicit null or an absent document.
	KindNull Kind = iota
	// KindScalar is a leaf value.
	KindScalar
	// KindSequence is an ordered list of nodes.
	KindSequence
	// KindMapping is an ordered key to node mapping.
	KindMapping
)

const (
	ScalarString ScalarType = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarTimestamp
	ScalarBinary
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// String returns the lowercase name of the scalar type.
func (t ScalarType) String() string {
	switch t {
	case ScalarString:
		return "string"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarTimestamp:
		return "timestamp"
	case ScalarBinary:
		return "binary"
	default:
		return "scalar(" + strconv.Itoa(int(t)) + ")"
	}
}

// --- Constructors ---

// Null returns a null node.
func Null() Node { return Node{} }

// Scalar returns a scalar node of the given type carrying text verbatim.
func Scalar(typ ScalarType, text string) Node {
	return Node{kind: KindScalar, scalar: typ, text: text}
}

// String returns a string scalar.
func String(s string) Node { return Scalar(ScalarString, s) }

// Int returns an integer scalar in decimal form.
func Int(i int64) Node { return Scalar(ScalarInt, strconv.FormatInt(i, 10)) }

// Uint returns an unsigned integer scalar in decimal form.
func Uint(u uint64) Node { return Scalar(ScalarInt, strconv.FormatUint(u, 10)) }

// Float returns a float scalar formatted with FormatFloat.
func Float(f float64) Node { return Scalar(ScalarFloat, FormatFloat(f)) }

// Bool returns a boolean scalar, "true" or "false".
func Bool(b bool) Node { return Scalar(ScalarBool, strconv.FormatBool(b)) }

// Timestamp returns a timestamp scalar carrying the text as written in the source.
func Timestamp(text string) Node { return Scalar(ScalarTimestamp, text) }

// Binary returns a binary scalar in standard base64.
func Binary(b []byte) Node {
	return Scalar(ScalarBinary, base64.StdEncoding.EncodeToString(b))
}

// Sequence returns a sequence node holding items in order.
func Sequence(items ...Node) Node {
	return Node{kind: KindSequence, items: items}
}

// MappingNode wraps m in a node. A nil m yields an empty mapping.
func MappingNode(m *Mapping) Node {
	if m == nil {
		m = NewMapping()
	}
	return Node{kind: KindMapping, mapping: m}
}

// --- Accessors ---

// Kind returns the node's tag.
func (n Node) Kind() Kind { return n.kind }

// ScalarType returns the scalar type. Only meaningful for KindScalar.
func (n Node) ScalarType() ScalarType { return n.scalar }

// Text returns the canonical text of a scalar, or "" for any other kind.
func (n Node) Text() string {
	if n.kind != KindScalar {
		return ""
	}
	return n.text
}

// Items returns the elements of a sequence, or nil for any other kind.
func (n Node) Items() []Node {
	if n.kind != KindSequence {
		return nil
	}
	return n.items
}

// Entries returns the entries of a mapping in order, or nil for any other kind.
func (n Node) Entries() []Entry {
	if n.kind != KindMapping || n.mapping == nil {
		return nil
	}
	return n.mapping.Entries()
}

// Mapping returns the underlying mapping of a KindMapping node, or nil.
// Changes made through it are visible to every copy of the node.
func (n Node) Mapping() *Mapping {
	if n.kind != KindMapping {
		return nil
	}
	return n.mapping
}

// Len returns the number of items or entries; 0 for scalars and null.
func (n Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return n.mapping.Len()
	default:
		return 0
	}
}

// IsEmpty reports whether the node counts as an empty document root: null,
// an empty mapping or sequence, or a zero scalar ("", 0, 0.0, false).
func (n Node) IsEmpty() bool {
	switch n.kind {
	case KindNull:
		return true
	case KindSequence, KindMapping:
		return n.Len() == 0
	case KindScalar:
		switch n.scalar {
		case ScalarInt:
			return n.text == "0" || n.text == "-0"
		case ScalarFloat:
			return n.text == "0.0" || n.text == "-0.0"
		case ScalarBool:
			return n.text == "false"
		default:
			return n.text == ""
		}
	default:
		return false
	}
}

// String renders the node on a single line in YAML flow style:
// scalars as their text, null as "null", sequences as "[a, b]" and
// mappings as "{k: v}".
func (n Node) String() string {
	var b strings.Builder
	n.writeFlow(&b)
	return b.String()
}

func (n Node) writeFlow(b *strings.Builder) {
	switch n.kind {
	case KindScalar:
		b.WriteString(n.text)
	case KindSequence:
		b.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.writeFlow(b)
		}
		b.WriteByte(']')
	case KindMapping:
		b.WriteByte('{')
		for i, e := range n.Entries() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Key)
			b.WriteString(": ")
			e.Value.writeFlow(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

// --- Mapping ---

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set assigns value to key. A new key is appended; an existing key keeps its
// position and takes the new value.
func (m *Mapping) Set(key string, value Node) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil {
		return Node{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Node{}, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in insertion order. The slice must not be modified.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	return m.entries
}
