package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a breadcrumb trail into a validated value, rendered as "a.b[2]".
type Path struct {
	segments []string
}

// Field appends a field-access segment.
func (p Path) Field(name string) Path {
	next := Path{segments: append(append([]string(nil), p.segments...), name)}
	return next
}

// Index appends an array-index segment to the last field segment.
func (p Path) Index(i int) Path {
	if len(p.segments) == 0 {
		return Path{segments: []string{fmt.Sprintf("[%d]", i)}}
	}
	segments := append([]string(nil), p.segments...)
	segments[len(segments)-1] = segments[len(segments)-1] + fmt.Sprintf("[%d]", i)
	return Path{segments: segments}
}

// String renders the path as "root.a.b[2]", or "<root>" when empty.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return "<root>"
	}
	return strings.Join(p.segments, ".")
}

// Root is the path pointing at the value under validation itself.
func Root() Path {
	return Path{}
}

// RootField starts a path at a named top-level field.
func RootField(name string) Path {
	return Root().Field(name)
}

const descriptorTruncateLen = 64

// describeValue renders a short human description of v for error messages,
// truncating long strings with a length marker.
func describeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		if len(t) > descriptorTruncateLen {
			return strconv.Quote(t[:descriptorTruncateLen]) + fmt.Sprintf("...(%d chars)", len(t))
		}
		return strconv.Quote(t)
	default:
		return fmt.Sprintf("%v (%T)", t, t)
	}
}
