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

import (
	"encoding/binary"
)

// Process continues an encode or decode with the given context, reading or
// writing the value stored at data. Most callers want Encode or Decode; this
// entry point exists for values embedded in larger storage.
func (t *Type) Process(ctx *ProcessContext, data []byte) {
	t.process(ctx, data)
}

func (t *Type) process(ctx *ProcessContext, data []byte) {
	switch t.Kind {
	case KindBool:
		processBool(ctx, data)
	case KindUint, KindByte:
		processBaseType(t.Nbits, ctx, data)
	case KindInt:
		processBaseType(t.Nbits, ctx, data)
		if !ctx.isEncode {
			SignExtend(data, t.Nbits)
		}
	case KindEnum:
		processBaseType(t.Nbits, ctx, data)
	case KindAlias:
		t.Elem.process(ctx, data)
	case KindArray:
		t.processArray(ctx, data)
	case KindMessage:
		t.processMessage(ctx, data)
	}
}

// processBaseType copies the nbits of a single scalar between the context
// buffer and the value storage at data.
func processBaseType(nbits int, ctx *ProcessContext, data []byte) {
	if ctx.isEncode {
		CopyBits(nbits, ctx.s, data, ctx.i, 0)
	} else {
		CopyBits(nbits, data, ctx.s, 0, ctx.i)
	}
	ctx.i += nbits
}

// processBool normalizes at the storage boundary: any nonzero storage byte
// encodes as wire bit 1; the decoded storage byte is always 0 or 1.
func processBool(ctx *ProcessContext, data []byte) {
	var b [1]byte
	if ctx.isEncode {
		if data[0] != 0 {
			b[0] = 1
		}
		CopyBits(1, ctx.s, b[:], ctx.i, 0)
	} else {
		CopyBits(1, b[:], ctx.s, 0, ctx.i)
		data[0] = b[0]
	}
	ctx.i += 1
}

// SignExtend sets the storage bits above wire bit nbits-1 to one when that
// bit is set; when it is clear, data is left unchanged, so the bits above it
// are zero only if they already were. The codec applies it after decoding
// any signed scalar narrower than its storage; encode needs no counterpart
// because only the low nbits are copied to the wire.
func SignExtend(data []byte, nbits int) {
	if nbits == len(data)*8 {
		return
	}
	if data[(nbits-1)>>3]&(1<<uint((nbits-1)&7)) == 0 {
		return
	}
	data[nbits>>3] |= byte(0xFF << uint(nbits&7))
	for b := nbits>>3 + 1; b < len(data); b++ {
		data[b] = 0xFF
	}
}

func (t *Type) processArray(ctx *ProcessContext, data []byte) {
	ahead := 0
	if t.Extensible {
		if ctx.isEncode {
			encodeAhead(ctx, uint16(t.Cap))
		} else {
			ahead = decodeAhead(ctx)
		}
	}
	i0 := ctx.i
	elem := t.Elem

	if !t.Extensible || ctx.isEncode {
		if t.processArrayFast(ctx, data) {
			return
		}
	}

	for k := 0; k < t.Cap; k++ {
		if t.Extensible && !ctx.isEncode && ctx.i >= i0+ahead*elem.Nbits {
			// Producer payload exhausted; remaining elements stay zero.
			break
		}
		elem.process(ctx, data[k*elem.Size:(k+1)*elem.Size])
	}

	if t.Extensible && !ctx.isEncode {
		if ito := i0 + ahead*elem.Nbits; ito >= ctx.i {
			ctx.i = ito
		}
	}
}

// processArrayFast handles arrays of standard-width integer elements
// (8/16/32/64 wire bits) as one contiguous copy, relying on the packed
// element storage. The wire bytes are identical to the element loop.
func (t *Type) processArrayFast(ctx *ProcessContext, data []byte) bool {
	elem := t.Elem
	for elem.Kind == KindAlias {
		elem = elem.Elem
	}
	switch elem.Kind {
	case KindUint, KindInt, KindByte, KindEnum:
	default:
		return false
	}
	if elem.Nbits != elem.Size*8 {
		return false
	}
	processBaseType(t.Cap*elem.Nbits, ctx, data)
	if elem.Kind == KindInt && !ctx.isEncode {
		for k := 0; k < t.Cap; k++ {
			SignExtend(data[k*elem.Size:(k+1)*elem.Size], elem.Nbits)
		}
	}
	return true
}

func (t *Type) processMessage(ctx *ProcessContext, data []byte) {
	ahead := 0
	if t.Extensible {
		if ctx.isEncode {
			encodeAhead(ctx, uint16(t.Nbits-16))
		} else {
			ahead = decodeAhead(ctx)
		}
	}
	i0 := ctx.i

	for ii := range t.Fields {
		field := &t.Fields[ii]
		if t.Extensible && !ctx.isEncode && ctx.i >= i0+ahead {
			// Producer payload exhausted; remaining fields stay zero.
			break
		}
		field.Type.process(ctx, data[field.Offset:field.Offset+field.Type.Size])
	}

	if t.Extensible && !ctx.isEncode {
		if ito := i0 + ahead; ito >= ctx.i {
			ctx.i = ito
		}
	}
}

// encodeAhead writes the 16-bit little-endian extensibility prefix.
func encodeAhead(ctx *ProcessContext, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	CopyBits(16, ctx.s, b[:], ctx.i, 0)
	ctx.i += 16
}

// decodeAhead reads the 16-bit little-endian extensibility prefix.
func decodeAhead(ctx *ProcessContext) int {
	var b [2]byte
	CopyBits(16, b[:], ctx.s, 0, ctx.i)
	ctx.i += 16
	return int(binary.LittleEndian.Uint16(b[:]))
}
