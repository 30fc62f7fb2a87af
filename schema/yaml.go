package schema

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// yamlDoc is the structural YAML description of a trace schema.
//
//	byte_order: le
//	uuid: 2a6422d0-6cee-11e0-8c08-cb07d7b3a564
//	types:
//	  u32: {type: int, size: 32}
//	packet_header:
//	  fields:
//	    - {name: magic, type: u32}
//	streams:
//	  - id: 0
//	    events:
//	      - {id: 0, name: tick, payload: {fields: [{name: n, type: u32}]}}
type yamlDoc struct {
	ByteOrder    string              `yaml:"byte_order"`
	UUID         string              `yaml:"uuid"`
	Types        map[string]yamlNode `yaml:"types"`
	PacketHeader *yamlNode           `yaml:"packet_header"`
	FieldNames   *yamlFieldNames     `yaml:"field_names"`
	Streams      []yamlStream        `yaml:"streams"`
}

type yamlFieldNames struct {
	Magic           string   `yaml:"magic"`
	UUID            string   `yaml:"uuid"`
	StreamClassID   string   `yaml:"stream_class_id"`
	StreamID        string   `yaml:"stream_id"`
	BeginTimestamp  string   `yaml:"begin_timestamp"`
	EndTimestamp    string   `yaml:"end_timestamp"`
	DiscardedEvents string   `yaml:"discarded_events"`
	ContentSize     string   `yaml:"content_size"`
	PacketSize      string   `yaml:"packet_size"`
	SequenceNumber  string   `yaml:"sequence_number"`
	EventClassID    []string `yaml:"event_class_id"`
	Timestamp       []string `yaml:"timestamp"`
}

type yamlStream struct {
	ID                 uint64      `yaml:"id"`
	PacketContext      *yamlNode   `yaml:"packet_context"`
	EventHeader        *yamlNode   `yaml:"event_header"`
	EventCommonContext *yamlNode   `yaml:"event_common_context"`
	Events             []yamlEvent `yaml:"events"`
}

type yamlEvent struct {
	ID      uint64    `yaml:"id"`
	Name    string    `yaml:"name"`
	Context *yamlNode `yaml:"context"`
	Payload *yamlNode `yaml:"payload"`
}

type yamlNode struct {
	Name string `yaml:"name"`
	Tag  *int64 `yaml:"tag"`
	Type string `yaml:"type"`

	Size      int    `yaml:"size"`
	Signed    bool   `yaml:"signed"`
	ByteOrder string `yaml:"byte_order"`
	Align     int64  `yaml:"align"`
	Encoding  string `yaml:"encoding"`
	Base      int    `yaml:"base"`

	ExpDig  int `yaml:"exp_dig"`
	MantDig int `yaml:"mant_dig"`

	Length      *int      `yaml:"length"`
	LengthType  *yamlNode `yaml:"length_type"`
	LengthField string    `yaml:"length_field"`
	Element     *yamlNode `yaml:"element"`

	Fields []yamlNode `yaml:"fields"`

	Selector string     `yaml:"selector"`
	Cases    []yamlNode `yaml:"cases"`
}

// LoadYAMLFile reads a YAML schema description from path.
func LoadYAMLFile(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	t, err := LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}

	return t, nil
}

// LoadYAML builds a Trace from a structural YAML description. The format
// mirrors the type tree directly; it is not TSDL.
func LoadYAML(data []byte) (*Trace, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", errs.ErrInvalidSchema, err)
	}

	b := &yamlBuilder{types: doc.Types, resolving: make(map[string]bool)}

	var opts []TraceOption
	if doc.ByteOrder != "" {
		order, err := parseByteOrder(doc.ByteOrder)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTraceByteOrder(order))
	}

	if doc.UUID != "" {
		uuid, err := parseUUID(doc.UUID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithUUID(uuid))
	}

	if doc.PacketHeader != nil {
		s, err := b.structNode("packet_header", doc.PacketHeader)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPacketHeader(s))
	}

	if doc.FieldNames != nil {
		names, err := doc.FieldNames.toFieldNames()
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFieldNames(names))
	}

	for _, ys := range doc.Streams {
		sc, err := b.streamClass(ys)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStreamClass(sc))
	}

	return NewTrace(opts...)
}

type yamlBuilder struct {
	types     map[string]yamlNode
	resolving map[string]bool
}

func (b *yamlBuilder) streamClass(ys yamlStream) (*StreamClass, error) {
	var opts []StreamClassOption

	scopes := []struct {
		name string
		node *yamlNode
		with func(*Struct) StreamClassOption
	}{
		{"packet_context", ys.PacketContext, WithPacketContext},
		{"event_header", ys.EventHeader, WithEventHeader},
		{"event_common_context", ys.EventCommonContext, WithEventCommonContext},
	}
	for _, sc := range scopes {
		if sc.node == nil {
			continue
		}
		s, err := b.structNode(fmt.Sprintf("streams[%d].%s", ys.ID, sc.name), sc.node)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sc.with(s))
	}

	for _, ye := range ys.Events {
		path := fmt.Sprintf("streams[%d].events[%d]", ys.ID, ye.ID)
		if ye.Payload == nil {
			return nil, fmt.Errorf("%w: %s has no payload", errs.ErrInvalidSchema, path)
		}
		payload, err := b.structNode(path+".payload", ye.Payload)
		if err != nil {
			return nil, err
		}

		var ctx *Struct
		if ye.Context != nil {
			if ctx, err = b.structNode(path+".context", ye.Context); err != nil {
				return nil, err
			}
		}

		ec, err := NewEventClass(ye.ID, ye.Name, payload, ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithEventClass(ec))
	}

	return NewStreamClass(ys.ID, opts...)
}

func (b *yamlBuilder) structNode(path string, y *yamlNode) (*Struct, error) {
	n, err := b.node(path, y)
	if err != nil {
		return nil, err
	}

	s, ok := n.(*Struct)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a struct, got %s", errs.ErrInvalidSchema, path, n.Kind())
	}

	return s, nil
}

func (b *yamlBuilder) node(path string, y *yamlNode) (Node, error) {
	kind := y.Type
	if kind == "" {
		switch {
		case y.Fields != nil:
			kind = "struct"
		case y.Cases != nil:
			kind = "variant"
		case y.Element != nil:
			kind = "array"
		}
	}

	switch kind {
	case "int", "integer":
		return b.integer(path, y)
	case "float":
		return b.float(path, y)
	case "string":
		return b.str(path, y)
	case "array":
		return b.array(path, y)
	case "struct":
		return b.structure(path, y)
	case "variant":
		return b.variant(path, y)
	case "":
		return nil, fmt.Errorf("%w: %s has no type", errs.ErrInvalidSchema, path)
	default:
		return b.alias(path, kind)
	}
}

func (b *yamlBuilder) alias(path, name string) (Node, error) {
	def, ok := b.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown type %q", errs.ErrInvalidSchema, path, name)
	}
	if b.resolving[name] {
		return nil, fmt.Errorf("%w: %s: recursive type alias %q", errs.ErrInvalidSchema, path, name)
	}

	b.resolving[name] = true
	defer delete(b.resolving, name)

	return b.node("types."+name, &def)
}

func (b *yamlBuilder) integer(path string, y *yamlNode) (*Integer, error) {
	var opts []IntegerOption
	if y.Signed {
		opts = append(opts, WithSigned())
	}
	if y.ByteOrder != "" {
		order, err := parseByteOrder(y.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, WithByteOrder(order))
	}
	if y.Align != 0 {
		opts = append(opts, WithAlign(y.Align))
	}
	if y.Base != 0 {
		opts = append(opts, WithBase(format.DisplayBase(y.Base))) //nolint:gosec
	}
	switch strings.ToLower(y.Encoding) {
	case "", "fixed":
	case "leb128":
		opts = append(opts, WithLEB128())
	default:
		return nil, fmt.Errorf("%w: %s: unknown integer encoding %q", errs.ErrInvalidSchema, path, y.Encoding)
	}

	i, err := NewInteger(y.Size, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return i, nil
}

func (b *yamlBuilder) float(path string, y *yamlNode) (*Float, error) {
	expDig, mantDig := y.ExpDig, y.MantDig
	if expDig == 0 && mantDig == 0 {
		switch y.Size {
		case 32:
			expDig, mantDig = 8, 24
		case 64:
			expDig, mantDig = 11, 53
		}
	}

	var opts []FloatOption
	if y.ByteOrder != "" {
		order, err := parseByteOrder(y.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		opts = append(opts, WithFloatByteOrder(order))
	}
	if y.Align != 0 {
		opts = append(opts, WithFloatAlign(y.Align))
	}

	f, err := NewFloat(expDig, mantDig, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

func (b *yamlBuilder) str(path string, y *yamlNode) (*String, error) {
	switch {
	case y.Length != nil:
		return NewStaticString(*y.Length)
	case y.LengthType != nil:
		n, err := b.node(path+".length_type", y.LengthType)
		if err != nil {
			return nil, err
		}
		lt, ok := n.(*Integer)
		if !ok {
			return nil, fmt.Errorf("%w: %s: length_type must be an integer", errs.ErrInvalidSchema, path)
		}

		return NewPrefixedString(lt)
	default:
		return NewNullTerminatedString(), nil
	}
}

func (b *yamlBuilder) array(path string, y *yamlNode) (*Array, error) {
	if y.Element == nil {
		return nil, fmt.Errorf("%w: %s: array has no element", errs.ErrInvalidSchema, path)
	}

	elem, err := b.node(path+"[]", y.Element)
	if err != nil {
		return nil, err
	}

	switch {
	case y.LengthField != "":
		loc, err := ParseLocation(y.LengthField)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return NewDynamicArray(elem, loc)
	case y.Length != nil:
		return NewArray(elem, *y.Length)
	default:
		return nil, fmt.Errorf("%w: %s: array needs length or length_field", errs.ErrInvalidSchema, path)
	}
}

func (b *yamlBuilder) structure(path string, y *yamlNode) (*Struct, error) {
	fields := make([]Field, 0, len(y.Fields))
	for i := range y.Fields {
		yf := &y.Fields[i]
		n, err := b.node(path+"."+yf.Name, yf)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: yf.Name, Type: n})
	}

	s, err := NewStruct(fields, y.Align)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

func (b *yamlBuilder) variant(path string, y *yamlNode) (*Variant, error) {
	sel, err := ParseLocation(y.Selector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cases := make([]VariantCase, 0, len(y.Cases))
	for i := range y.Cases {
		yc := &y.Cases[i]
		if yc.Tag == nil {
			return nil, fmt.Errorf("%w: %s: case %d has no tag", errs.ErrInvalidSchema, path, i)
		}
		n, err := b.node(fmt.Sprintf("%s<%d>", path, *yc.Tag), yc)
		if err != nil {
			return nil, err
		}
		cases = append(cases, VariantCase{Tag: *yc.Tag, Name: yc.Name, Type: n})
	}

	v, err := NewVariant(sel, cases)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

func (y *yamlFieldNames) toFieldNames() (FieldNames, error) {
	names := DefaultFieldNames()

	overrides := []struct {
		src string
		dst *string
	}{
		{y.Magic, &names.Magic},
		{y.UUID, &names.UUID},
		{y.StreamClassID, &names.StreamClassID},
		{y.StreamID, &names.StreamID},
		{y.BeginTimestamp, &names.BeginTimestamp},
		{y.EndTimestamp, &names.EndTimestamp},
		{y.DiscardedEvents, &names.DiscardedEvents},
		{y.ContentSize, &names.ContentSize},
		{y.PacketSize, &names.PacketSize},
		{y.SequenceNumber, &names.SequenceNumber},
	}
	for _, o := range overrides {
		if o.src != "" {
			*o.dst = o.src
		}
	}

	var err error
	if len(y.EventClassID) > 0 {
		if names.EventClassID, err = eventHeaderLocations(y.EventClassID); err != nil {
			return FieldNames{}, err
		}
	}
	if len(y.Timestamp) > 0 {
		if names.Timestamp, err = eventHeaderLocations(y.Timestamp); err != nil {
			return FieldNames{}, err
		}
	}

	return names, nil
}

// eventHeaderLocations parses paths that default to the event header root.
func eventHeaderLocations(paths []string) ([]FieldLocation, error) {
	locs := make([]FieldLocation, 0, len(paths))
	for _, p := range paths {
		loc, err := ParseLocation(p)
		if err != nil {
			return nil, err
		}
		if !loc.IsAbsolute() {
			loc.Root = RootEventHeader
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func parseByteOrder(s string) (format.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "le", "little", "little-endian":
		return format.LittleEndian, nil
	case "be", "big", "big-endian", "network":
		return format.BigEndian, nil
	case "native", "default":
		return format.ByteOrderDefault, nil
	default:
		return format.ByteOrderDefault, fmt.Errorf("%w: unknown byte order %q", errs.ErrInvalidSchema, s)
	}
}

func parseUUID(s string) ([16]byte, error) {
	var uuid [16]byte

	raw, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil || len(raw) != len(uuid) {
		return uuid, fmt.Errorf("%w: malformed uuid %q", errs.ErrInvalidSchema, s)
	}
	copy(uuid[:], raw)

	return uuid, nil
}
