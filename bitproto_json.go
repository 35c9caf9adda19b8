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

package bitproto

// FormatJSON writes the canonical JSON form of the value stored at data into
// out, returning the number of bytes written. Booleans render as true/false,
// integers and bytes as bare decimal (uint64 values above 2^53 included),
// enums as their numeric value, arrays as [...], and messages as {...} with
// fields in schema order. No whitespace is emitted and no allocation is
// performed; the caller sizes out.
func FormatJSON(t *Type, data []byte, out []byte) int {
	w := jsonWriter{out: out}
	w.value(t, data)
	return w.n
}

type jsonWriter struct {
	out []byte
	n   int
}

func (w *jsonWriter) value(t *Type, data []byte) {
	switch t.Kind {
	case KindBool:
		if data[0] != 0 {
			w.string("true")
		} else {
			w.string("false")
		}
	case KindUint, KindByte, KindEnum:
		w.uint(Uint(data))
	case KindInt:
		w.int(Int(data))
	case KindAlias:
		w.value(t.Elem, data)
	case KindArray:
		w.byte('[')
		for k := 0; k < t.Cap; k++ {
			if k > 0 {
				w.byte(',')
			}
			w.value(t.Elem, t.ElemData(data, k))
		}
		w.byte(']')
	case KindMessage:
		w.byte('{')
		for ii := range t.Fields {
			field := &t.Fields[ii]
			if ii > 0 {
				w.byte(',')
			}
			w.byte('"')
			w.string(field.Name)
			w.byte('"')
			w.byte(':')
			w.value(field.Type, field.Data(data))
		}
		w.byte('}')
	}
}

func (w *jsonWriter) byte(c byte) {
	w.out[w.n] = c
	w.n++
}

func (w *jsonWriter) string(s string) {
	w.n += copy(w.out[w.n:], s)
}

func (w *jsonWriter) uint(v uint64) {
	var scratch [20]byte
	ii := len(scratch)
	for {
		ii--
		scratch[ii] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	w.n += copy(w.out[w.n:], scratch[ii:])
}

func (w *jsonWriter) int(v int64) {
	if v < 0 {
		w.byte('-')
		w.uint(uint64(-(v + 1)) + 1)
		return
	}
	w.uint(uint64(v))
}
