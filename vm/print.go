package vm

import (
	"strconv"
	"strings"
)

const (
	// maxDescribeDepth bounds how deep Describe follows nested arrays.
	maxDescribeDepth = 8
	// maxDescribeElements bounds how many array elements one Describe
	// renders in total. Shared or self-referencing arrays would otherwise
	// multiply at every level.
	maxDescribeElements = 256
)

// Describe renders v for display: numbers and booleans as literals, strings
// by content, classes by name, instances as "a Point", arrays as their
// elements in parentheses. Stale references render as <stale ...> instead
// of failing. Output past the depth or element bounds is elided as "...".
func (t *ObjectTable) Describe(v Value) string {
	d := describer{t: t, budget: maxDescribeElements}
	d.describe(v, 0)
	return d.sb.String()
}

type describer struct {
	t      *ObjectTable
	sb     strings.Builder
	budget int // array elements left to render
}

func (d *describer) describe(v Value, depth int) {
	sb := &d.sb
	if s, ok := v.(ShortString); ok {
		writeString(sb, s.String(), depth)
		return
	}
	r, ok := v.(HeapRef)
	if !ok || r.IsNil() {
		sb.WriteString(printImmediate(v))
		return
	}
	e, err := d.t.resolve(r)
	if err != nil {
		sb.WriteString("<stale " + strconv.FormatUint(uint64(r), 16) + ">")
		return
	}

	switch p := e.payload.(type) {
	case *LongString:
		writeString(sb, string(p.data), depth)
	case *Class:
		sb.WriteString(p.Name)
	case *Array:
		if depth >= maxDescribeDepth {
			sb.WriteString("(...)")
			return
		}
		sb.WriteByte('(')
		for i, elem := range p.elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			if d.budget == 0 {
				sb.WriteString("...")
				break
			}
			d.budget--
			d.describe(elem, depth+1)
		}
		sb.WriteByte(')')
	case *Instance:
		name := "Object"
		if cr, ok := e.header.Type.(HeapRef); ok {
			if c, err := d.t.Class(cr); err == nil {
				name = c.Name
			}
		}
		sb.WriteString(withArticle(name))
	default:
		sb.WriteString(printImmediate(v))
	}
}

// writeString writes s raw at the top level and quoted inside a collection.
func writeString(sb *strings.Builder, s string, depth int) {
	if depth == 0 {
		sb.WriteString(s)
		return
	}
	sb.WriteByte('\'')
	sb.WriteString(strings.ReplaceAll(s, "'", "''"))
	sb.WriteByte('\'')
}

func withArticle(name string) string {
	if name != "" && strings.ContainsRune("AEIOU", rune(name[0])) {
		return "an " + name
	}
	return "a " + name
}
