// Package decode turns type tree nodes into values by reading a bit cursor.
//
// Decoding is recursive descent over the schema. Before reading a node the
// cursor is aligned to the node's alignment. Struct fields become visible to
// later fields as soon as they are read, which is what dynamic array lengths
// and variant selectors refer to. Every error returned carries the bit offset
// and schema path of the failing field (see errs.DecodeError).
package decode
