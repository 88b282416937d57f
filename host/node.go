package host

import (
	"fmt"
	"strings"
)

// Format identifies the concrete case held by a Node. Unknown codes are
// possible: the host may grow new formats before every engine learns to
// bridge them, so converters must treat the zero and out-of-range cases as
// "present but not representable".
type Format int

const (
	FormatNone Format = iota
	FormatString
	FormatFlag
	FormatInt64
	FormatDouble
	FormatNodeArray
	FormatNodeMap
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatString:
		return "string"
	case FormatFlag:
		return "flag"
	case FormatInt64:
		return "int64"
	case FormatDouble:
		return "double"
	case FormatNodeArray:
		return "array"
	case FormatNodeMap:
		return "map"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Node is the host's tagged value: the single representation used to hand
// typed data across the host/guest boundary. Value holds the case payload:
// string, int64 (both FormatFlag and FormatInt64), float64, []Node, or
// []Pair. Nodes built through the constructors below always carry a payload
// matching their Format.
//
// Nodes are consumed, not retained: a converter walks the tree synchronously
// and must not hold references into it after returning.
type Node struct {
	Format Format
	Value  any
}

// Pair is one entry of a map node. Map entries keep their insertion order
// and the host guarantees key uniqueness.
type Pair struct {
	Key   string
	Value Node
}

// None returns the absent-value node.
func None() Node {
	return Node{Format: FormatNone}
}

// String returns a string node.
func String(s string) Node {
	return Node{Format: FormatString, Value: s}
}

// Flag returns a boolean-flag node. The flag is not a plain bool: the host
// encodes "unset/false" as a negative value and truth as any value >= 0.
func Flag(v int64) Node {
	return Node{Format: FormatFlag, Value: v}
}

// Bool returns a flag node encoding b with the host's sign convention.
func Bool(b bool) Node {
	if b {
		return Flag(1)
	}
	return Flag(-1)
}

// Int returns a 64-bit integer node.
func Int(v int64) Node {
	return Node{Format: FormatInt64, Value: v}
}

// Double returns a floating-point node.
func Double(v float64) Node {
	return Node{Format: FormatDouble, Value: v}
}

// Array returns an ordered list node.
func Array(items ...Node) Node {
	return Node{Format: FormatNodeArray, Value: items}
}

// Map returns a string-keyed map node. Pair order is preserved.
func Map(pairs ...Pair) Node {
	return Node{Format: FormatNodeMap, Value: pairs}
}

// Truth reports the boolean carried by a flag node. The comparison is a
// sign test, not a zero test: false is any negative value.
func (n Node) Truth() bool {
	return n.Value.(int64) >= 0
}

func (n Node) String() string {
	switch n.Format {
	case FormatNone:
		return "none"
	case FormatString:
		return fmt.Sprintf("%q", n.Value)
	case FormatFlag:
		return fmt.Sprintf("flag(%d)", n.Value)
	case FormatInt64:
		return fmt.Sprintf("%d", n.Value)
	case FormatDouble:
		return fmt.Sprintf("%g", n.Value)
	case FormatNodeArray:
		items := n.Value.([]Node)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case FormatNodeMap:
		pairs := n.Value.([]Pair)
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = fmt.Sprintf("%q: %s", p.Key, p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return n.Format.String()
	}
}
