// Package schema models the type tree that drives decoding.
//
// A type tree is built once, usually by the metadata parser, and is then
// shared read-only by every decode. Nodes expose their kind and attributes
// through accessor methods only; none of them carries decode state, so a
// tree can be used by any number of concurrent decoders without locking.
//
// # Node kinds
//
//   - Integer: fixed-width bit-packed or LEB128 integers
//   - Float: IEEE-754 binary32 and binary64
//   - String: static NUL-bounded buffers, length-prefixed or NUL-terminated
//   - Array: fixed count or length taken from an earlier field
//   - Struct: ordered named fields
//   - Variant: tagged union selected by an earlier integer field
//
// # Building a tree
//
//	u8 := schema.Must(schema.NewInteger(8))
//	payload := schema.Must(schema.NewStruct([]schema.Field{
//	    {Name: "len", Type: u8},
//	    {Name: "data", Type: schema.Must(schema.NewDynamicArray(u8, schema.Relative("len")))},
//	}))
//
// A Trace groups the packet header type with stream and event classes.
// LoadYAML builds a Trace from a structural YAML description.
package schema
