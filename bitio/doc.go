// Package bitio provides a bit-precise sequential reader over a byte buffer.
//
// A Cursor tracks a position in bits and extracts fields of 1 to 64 bits in
// either byte order, following the CTF bit-packing rules:
//
//   - Little-endian fields take bits starting at the least significant bit of
//     each byte, and earlier bits are less significant.
//   - Big-endian fields take bits starting at the most significant bit of
//     each byte, and earlier bits are more significant.
//
// Byte-aligned reads of 8, 16, 32 and 64 bits use the endian engines
// directly. The cursor also decodes unsigned and signed LEB128 varints.
//
// A Cursor is not safe for concurrent use. Create one per decode.
package bitio
