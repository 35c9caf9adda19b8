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

func formatJSON(t *bitproto.Type, msg []byte) string {
	out := make([]byte, 4096)
	n := bitproto.FormatJSON(t, msg, out)
	return string(out[:n])
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()

	inner := bitproto.NewMessage(false,
		bitproto.Field{Name: "x", Number: 1, Type: bitproto.NewUint(7)},
	)
	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "ok", Number: 1, Type: bitproto.NewBool()},
		bitproto.Field{Name: "n", Number: 2, Type: bitproto.NewUint(3)},
		bitproto.Field{
			Name:   "p",
			Number: 3,
			Type:   bitproto.NewArray(false, 2, bitproto.NewInt(24)),
		},
		bitproto.Field{Name: "c", Number: 4, Type: bitproto.NewEnum(3)},
		bitproto.Field{Name: "inner", Number: 5, Type: inner},
	)

	msg := make([]byte, msgType.Size)
	bitproto.PutBool(msgType.FieldData(msg, "ok"), true)
	bitproto.PutUint(msgType.FieldData(msg, "n"), 5)
	p := msgType.Field("p")
	bitproto.PutInt(p.Type.ElemData(p.Data(msg), 0), -11)
	bitproto.PutInt(p.Type.ElemData(p.Data(msg), 1), 7)
	bitproto.PutUint(msgType.FieldData(msg, "c"), 3)
	bitproto.PutUint(inner.FieldData(msgType.FieldData(msg, "inner"), "x"), 99)

	want := `{"ok":true,"n":5,"p":[-11,7],"c":3,"inner":{"x":99}}`
	testutil.ExpectEq(t, want, formatJSON(msgType, msg))
}

func TestFormatJSONZero(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "ok", Number: 1, Type: bitproto.NewBool()},
		bitproto.Field{Name: "n", Number: 2, Type: bitproto.NewInt(13)},
	)
	msg := make([]byte, msgType.Size)
	testutil.ExpectEq(t, `{"ok":false,"n":0}`, formatJSON(msgType, msg))
}

// 64-bit unsigned values render as bare decimal, above 2^53 included.
func TestFormatJSONUint64(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "u", Number: 1, Type: bitproto.NewUint(64)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutUint(msgType.FieldData(msg, "u"), 18446744073709551615)
	testutil.ExpectEq(t, `{"u":18446744073709551615}`, formatJSON(msgType, msg))
}

func TestFormatJSONInt64Min(t *testing.T) {
	t.Parallel()

	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "i", Number: 1, Type: bitproto.NewInt(64)},
	)
	msg := make([]byte, msgType.Size)
	bitproto.PutInt(msgType.FieldData(msg, "i"), -9223372036854775808)
	testutil.ExpectEq(t, `{"i":-9223372036854775808}`, formatJSON(msgType, msg))
}

func TestFormatJSONAlias(t *testing.T) {
	t.Parallel()

	alias := bitproto.NewAlias(bitproto.NewArray(false, 2, bitproto.NewByte()))
	msgType := bitproto.NewMessage(false,
		bitproto.Field{Name: "data", Number: 1, Type: alias},
	)
	msg := []byte{0x0A, 0xFF}
	testutil.ExpectEq(t, `{"data":[10,255]}`, formatJSON(msgType, msg))
}
