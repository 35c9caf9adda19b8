// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package ir_test

import (
	"testing"

	"go.bitproto.dev/bitproto"
	"go.bitproto.dev/bitproto/compiler"
	"go.bitproto.dev/bitproto/internal/testutil"
	"go.bitproto.dev/bitproto/ir"
)

func TestInterning(t *testing.T) {
	t.Parallel()

	arena := ir.NewArena()
	testutil.ExpectEq(t, arena.Uint(3), arena.Uint(3))
	testutil.ExpectEq(t, arena.Bool(), arena.Bool())
	testutil.ExpectTrue(t, arena.Uint(3) != arena.Uint(4))
	testutil.ExpectTrue(t, arena.Uint(8) != arena.Int(8))
	testutil.ExpectTrue(t, arena.Byte() != arena.Uint(8))
}

func TestNbits(t *testing.T) {
	t.Parallel()

	arena := ir.NewArena()
	testutil.ExpectEq(t, 1, arena.Nbits(arena.Bool()))
	testutil.ExpectEq(t, 24, arena.Nbits(arena.Int(24)))

	arr := arena.NewArray(false, 5, arena.Uint(3))
	testutil.ExpectEq(t, 15, arena.Nbits(arr))
	testutil.ExpectEq(t, 5, arena.StorageSize(arr))

	extArr := arena.NewArray(true, 5, arena.Uint(3))
	testutil.ExpectEq(t, 31, arena.Nbits(extArr))
}

// Compiled schemas map onto the runtime descriptor graph; the encoded bytes
// match the hand-built descriptor tests in the root package.
func TestDescriptor(t *testing.T) {
	t.Parallel()

	result := compiler.CompileSource("scatter.bitproto", []byte(`proto scatter
message M {
	uint3 a = 1
	uint3 b = 2
	uint5 c = 3
	uint4 d = 4
	uint11 e = 5
	uint6 f = 6
}
`))
	testutil.ExpectEq(t, 0, len(result.Errors))

	id, ok := result.Proto.LookupMessage("M")
	testutil.ExpectTrue(t, ok)
	descriptor := ir.Descriptor(result.Proto.Arena, id)
	testutil.ExpectEq(t, 32, descriptor.Nbits)
	testutil.ExpectEq(t, 4, descriptor.ByteSize())

	msg := make([]byte, descriptor.Size)
	bitproto.PutUint(descriptor.FieldData(msg, "a"), 7)
	bitproto.PutUint(descriptor.FieldData(msg, "b"), 7)
	bitproto.PutUint(descriptor.FieldData(msg, "c"), 31)
	bitproto.PutUint(descriptor.FieldData(msg, "d"), 15)
	bitproto.PutUint(descriptor.FieldData(msg, "e"), 2047)
	bitproto.PutUint(descriptor.FieldData(msg, "f"), 63)

	s := make([]byte, descriptor.ByteSize())
	descriptor.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, s)
}

// A type reachable along several paths maps to one descriptor.
func TestDescriptorDeduplicated(t *testing.T) {
	t.Parallel()

	result := compiler.CompileSource("dedup.bitproto", []byte(`proto dedup
message Point {
	int16 x = 1
	int16 y = 2
}
message Segment {
	Point from = 1
	Point to = 2
}
`))
	testutil.ExpectEq(t, 0, len(result.Errors))

	id, ok := result.Proto.LookupMessage("Segment")
	testutil.ExpectTrue(t, ok)
	descriptor := ir.Descriptor(result.Proto.Arena, id)
	testutil.ExpectTrue(t,
		descriptor.Field("from").Type == descriptor.Field("to").Type)
	testutil.ExpectEq(t, 64, descriptor.Nbits)
}

func TestDescriptorExtensible(t *testing.T) {
	t.Parallel()

	result := compiler.CompileSource("ext.bitproto", []byte(`proto ext
message P' {
	uint8 a = 1
}
`))
	testutil.ExpectEq(t, 0, len(result.Errors))

	id, ok := result.Proto.LookupMessage("P")
	testutil.ExpectTrue(t, ok)
	descriptor := ir.Descriptor(result.Proto.Arena, id)
	testutil.ExpectEq(t, 24, descriptor.Nbits)

	msg := make([]byte, descriptor.Size)
	bitproto.PutUint(descriptor.FieldData(msg, "a"), 0x12)
	s := make([]byte, descriptor.ByteSize())
	descriptor.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x08, 0x00, 0x12}, s)
}
