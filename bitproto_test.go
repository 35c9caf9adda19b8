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

package bitproto_test

import (
	"testing"

	"go.bitproto.dev/bitproto"
	"go.bitproto.dev/bitproto/internal/testutil"
)

// tightPacked is the schema of §"scatter"-style tests: six unsigned fields
// totalling exactly 32 bits.
func tightPacked() *bitproto.Type {
	return bitproto.NewMessage(false,
		bitproto.Field{Name: "a", Number: 1, Type: bitproto.NewUint(3)},
		bitproto.Field{Name: "b", Number: 2, Type: bitproto.NewUint(3)},
		bitproto.Field{Name: "c", Number: 3, Type: bitproto.NewUint(5)},
		bitproto.Field{Name: "d", Number: 4, Type: bitproto.NewUint(4)},
		bitproto.Field{Name: "e", Number: 5, Type: bitproto.NewUint(11)},
		bitproto.Field{Name: "f", Number: 6, Type: bitproto.NewUint(6)},
	)
}

func TestEncodeTightPacked(t *testing.T) {
	t.Parallel()

	msgType := tightPacked()
	testutil.ExpectEq(t, 32, msgType.Nbits)
	testutil.ExpectEq(t, 4, msgType.ByteSize())

	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "a"), 7)
	bitproto.PutUint(msgType.FieldData(msg, "b"), 7)
	bitproto.PutUint(msgType.FieldData(msg, "c"), 31)
	bitproto.PutUint(msgType.FieldData(msg, "d"), 15)
	bitproto.PutUint(msgType.FieldData(msg, "e"), 2047)
	bitproto.PutUint(msgType.FieldData(msg, "f"), 63)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectBytesEq(t, msg, decoded)
}

func TestRoundTripScattered(t *testing.T) {
	t.Parallel()

	msgType := tightPacked()
	cases := [][6]uint64{
		{0, 0, 0, 0, 0, 0},
		{5, 1, 17, 9, 1024, 33},
		{1, 6, 30, 2, 2000, 1},
		{7, 0, 0, 15, 1, 62},
	}
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, values := range cases {
		msg := make([]byte, msgType.Size)
		for ii, name := range names {
			bitproto.PutUint(msgType.FieldData(msg, name), values[ii])
		}
		s := make([]byte, msgType.ByteSize())
		msgType.Encode(msg, s)

		decoded := make([]byte, msgType.Size)
		msgType.Decode(decoded, s)
		for ii, name := range names {
			got := bitproto.Uint(msgType.FieldData(decoded, name))
			testutil.ExpectEq(t, values[ii], got)
		}
	}
}

func TestZeroInvariance(t *testing.T) {
	t.Parallel()

	msgType := tightPacked()
	msg := make([]byte, msgType.Size)
	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, make([]byte, 4), s)
}

func TestEncodeSignedArray(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{
			Name:   "p",
			Number: 1,
			Type:   bitproto.NewArray(false, 2, bitproto.NewInt(24)),
		},
	)
	testutil.ExpectEq(t, 48, msgType.Nbits)
	testutil.ExpectEq(t, 8, msgType.Size)

	msg := make([]byte, msgType.Size)
	p := msgType.Field("p")
	bitproto.PutInt(p.Type.ElemData(p.Data(msg), 0), -11)
	bitproto.PutInt(p.Type.ElemData(p.Data(msg), 1), 0)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0xF5, 0xFF, 0xFF, 0x00, 0x00, 0x00}, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, int64(-11), bitproto.Int(p.Type.ElemData(p.Data(decoded), 0)))
	testutil.ExpectEq(t, int64(0), bitproto.Int(p.Type.ElemData(p.Data(decoded), 1)))
}

func TestEncodeEnum(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "c", Number: 1, Type: bitproto.NewEnum(3)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "c"), 3)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x03}, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, uint64(3), bitproto.Uint(msgType.FieldData(decoded, "c")))
}

// Unknown enum values are not validated; they round-trip unchanged.
func TestEnumUnknownValueRoundTrips(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "c", Number: 1, Type: bitproto.NewEnum(3)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "c"), 6)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, uint64(6), bitproto.Uint(msgType.FieldData(decoded, "c")))
}

func TestEndianness(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "x", Number: 1, Type: bitproto.NewUint(32)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "x"), 0x01020304)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x04, 0x03, 0x02, 0x01}, s)
}

func TestSignExtension(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "y", Number: 1, Type: bitproto.NewInt(24)},
	)
	cases := []struct {
		encoded []byte
		want    int64
	}{
		{[]byte{0xFF, 0xFF, 0xFF}, -1},
		{[]byte{0xFF, 0xFF, 0x7F}, 8388607},
		{[]byte{0x00, 0x00, 0x80}, -8388608},
	}
	for _, tc := range cases {
		decoded := make([]byte, msgType.Size)
		msgType.Decode(decoded, tc.encoded)
		testutil.ExpectEq(t, tc.want, bitproto.Int(msgType.FieldData(decoded, "y")))
	}
}

func TestBitSpanningScalar(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "a", Number: 1, Type: bitproto.NewUint(3)},
		bitproto.Field{Name: "b", Number: 2, Type: bitproto.NewUint(32)},
	)
	testutil.ExpectEq(t, 35, msgType.Nbits)
	testutil.ExpectEq(t, 5, msgType.ByteSize())

	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "a"), 5)
	bitproto.PutUint(msgType.FieldData(msg, "b"), 0xDEADBEEF)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x7D, 0xF7, 0x6D, 0xF5, 0x06}, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, uint64(5), bitproto.Uint(msgType.FieldData(decoded, "a")))
	testutil.ExpectEq(t, uint64(0xDEADBEEF), bitproto.Uint(msgType.FieldData(decoded, "b")))
}

func TestBoolNormalization(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "ok", Number: 1, Type: bitproto.NewBool()},
	)
	msg := make([]byte, msgType.Size)
	// Any nonzero storage byte encodes as true.
	msg[0] = 0x80

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x01}, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, byte(1), decoded[0])
}

// Field numbers define wire order regardless of construction order.
func TestFieldNumberOrder(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "second", Number: 10, Type: bitproto.NewUint(8)},
		bitproto.Field{Name: "first", Number: 2, Type: bitproto.NewUint(8)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "first"), 0xAA)
	bitproto.PutUint(msgType.FieldData(msg, "second"), 0xBB)

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0xAA, 0xBB}, s)
}

func TestAliasTransparent(t *testing.T) {
	t.Parallel()

	alias := bitproto.NewAlias(bitproto.NewArray(false, 3, bitproto.NewByte()))
	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "data", Number: 1, Type: alias},
	)
	testutil.ExpectEq(t, 24, msgType.Nbits)

	msg := []byte{0x11, 0x22, 0x33}
	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)
	testutil.ExpectBytesEq(t, []byte{0x11, 0x22, 0x33}, s)
}

// The standard-width array fast path and the element loop must produce
// identical bytes; int16 elements exercise both the contiguous copy and the
// per-element sign extension.
func TestArrayFastPathSigned(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "pad", Number: 1, Type: bitproto.NewUint(3)},
		bitproto.Field{
			Name:   "v",
			Number: 2,
			Type:   bitproto.NewArray(false, 4, bitproto.NewInt(16)),
		},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "pad"), 2)
	v := msgType.Field("v")
	values := []int64{-2, 0x1234, -30000, 7}
	for k, value := range values {
		bitproto.PutInt(v.Type.ElemData(v.Data(msg), k), value)
	}

	s := make([]byte, msgType.ByteSize())
	msgType.Encode(msg, s)

	decoded := make([]byte, msgType.Size)
	msgType.Decode(decoded, s)
	testutil.ExpectEq(t, uint64(2), bitproto.Uint(msgType.FieldData(decoded, "pad")))
	for k, value := range values {
		got := bitproto.Int(v.Type.ElemData(v.Data(decoded), k))
		testutil.ExpectEq(t, value, got)
	}
}

func TestNestedMessageRoundTrip(t *testing.T) {
	t.Parallel()

	inner := bitproto.NewMessage(false,
		bitproto.Field{Name: "x", Number: 1, Type: bitproto.NewUint(7)},
		bitproto.Field{Name: "y", Number: 2, Type: bitproto.NewInt(9)},
	)
	outer := bitproto.NewMessage(false,
		bitproto.Field{Name: "head", Number: 1, Type: bitproto.NewUint(5)},
		bitproto.Field{Name: "inner", Number: 2, Type: inner},
		bitproto.Field{Name: "tail", Number: 3, Type: bitproto.NewBool()},
	)
	testutil.ExpectEq(t, 22, outer.Nbits)

	msg := make([]byte, outer.Size)
	bitproto.PutUint(outer.FieldData(msg, "head"), 21)
	innerData := outer.FieldData(msg, "inner")
	bitproto.PutUint(inner.FieldData(innerData, "x"), 99)
	bitproto.PutInt(inner.FieldData(innerData, "y"), -200)
	bitproto.PutBool(outer.FieldData(msg, "tail"), true)

	s := make([]byte, outer.ByteSize())
	outer.Encode(msg, s)

	decoded := make([]byte, outer.Size)
	outer.Decode(decoded, s)
	testutil.ExpectBytesEq(t, msg, decoded)
	innerDecoded := outer.FieldData(decoded, "inner")
	testutil.ExpectEq(t, int64(-200), bitproto.Int(inner.FieldData(innerDecoded, "y")))
}
