package schema

import (
	"fmt"
	"strings"

	"github.com/arloliu/ctfdec/errs"
)

// Root names the dynamic scope a FieldLocation starts from.
type Root uint8

const (
	// RootRelative resolves from the innermost struct being decoded outwards.
	RootRelative Root = iota
	RootPacketHeader
	RootPacketContext
	RootEventHeader
	RootEventCommonContext
	RootEventSpecificContext
	RootEventPayload
)

var rootPrefixes = []struct {
	root   Root
	prefix string
}{
	{RootPacketHeader, "trace.packet.header"},
	{RootPacketContext, "stream.packet.context"},
	{RootEventHeader, "stream.event.header"},
	{RootEventCommonContext, "stream.event.context"},
	{RootEventSpecificContext, "event.context"},
	{RootEventPayload, "event.fields"},
}

func (r Root) String() string {
	for _, p := range rootPrefixes {
		if p.root == r {
			return p.prefix
		}
	}

	return ""
}

// FieldLocation names an already decoded field, either relative to the
// current struct scope or absolute from a dynamic scope root.
type FieldLocation struct {
	Root Root
	Path []string
}

// Relative creates a location resolved from the current scope outwards.
func Relative(path ...string) FieldLocation {
	return FieldLocation{Root: RootRelative, Path: path}
}

// Absolute creates a location resolved from a dynamic scope root.
func Absolute(root Root, path ...string) FieldLocation {
	return FieldLocation{Root: root, Path: path}
}

// ParseLocation parses a dotted location. Paths starting with a dynamic
// scope prefix such as "stream.packet.context." are absolute; anything else
// is relative.
func ParseLocation(s string) (FieldLocation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldLocation{}, fmt.Errorf("%w: empty field location", errs.ErrInvalidSchema)
	}

	root := RootRelative
	rest := s
	for _, p := range rootPrefixes {
		if strings.HasPrefix(s, p.prefix+".") {
			root = p.root
			rest = s[len(p.prefix)+1:]

			break
		}
	}

	path := strings.Split(rest, ".")
	for _, part := range path {
		if part == "" {
			return FieldLocation{}, fmt.Errorf("%w: malformed field location %q", errs.ErrInvalidSchema, s)
		}
	}

	return FieldLocation{Root: root, Path: path}, nil
}

// IsAbsolute reports whether the location starts from a dynamic scope root.
func (l FieldLocation) IsAbsolute() bool {
	return l.Root != RootRelative
}

func (l FieldLocation) String() string {
	p := strings.Join(l.Path, ".")
	if l.Root == RootRelative {
		return p
	}

	return l.Root.String() + "." + p
}
