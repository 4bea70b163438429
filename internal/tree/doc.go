// SPDX-License-Identifier: MPL-2.0

// Package tree defines the document model shared by every input decoder.
//
// A Node is a closed tagged union: exactly one of Mapping, Sequence, Scalar or
// Null. Consumers switch on Node.Kind instead of inspecting dynamic types, and
// mappings keep their keys in declaration order.
package tree
