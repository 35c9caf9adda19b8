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

// CopyBits copies n bits from bit position si within src to bit position di
// within dst. Positions are global bit indices; bit k of a buffer is bit
// (k & 7) of byte (k >> 3). This is the codec's entire arithmetic core.
//
// When the destination cursor is byte-aligned, whole 8/16/32-bit units are
// moved at a time; the wide paths engage only when both buffers hold the full
// unit at the cursor, so no read or write ever lands past a buffer's end.
// The other paths clear the landing bits and then OR the copied bits in; the
// remaining bits of a partially written byte keep their previous content.
func CopyBits(n int, dst, src []byte, di, si int) {
	for n > 0 {
		db, dm := di>>3, di&7
		sb, sm := si>>3, si&7
		var c int
		switch {
		case dm == 0 && n+sm >= 32 && sb+4 <= len(src) && db+4 <= len(dst):
			v := binary.LittleEndian.Uint32(src[sb:])
			binary.LittleEndian.PutUint32(dst[db:], v>>sm)
			c = 32 - sm
		case dm == 0 && n+sm >= 16 && sb+2 <= len(src) && db+2 <= len(dst):
			v := binary.LittleEndian.Uint16(src[sb:])
			binary.LittleEndian.PutUint16(dst[db:], v>>sm)
			c = 16 - sm
		case dm == 0 && n+sm >= 8:
			dst[db] = src[sb] >> sm
			c = 8 - sm
		case dm == 0:
			// Tail, n < 8: clear the landing bits, then deposit.
			c = min(8-sm, n)
			keep := byte(0xFF) << c
			dst[db] = dst[db]&keep | (src[sb]>>sm)&^keep
		default:
			c = min(8-dm, min(8-sm, n))
			// Bits above the landing slot [dm, dm+c).
			mask := byte(0xFF << (dm + c))
			dst[db] &= mask | ^(byte(0xFF) << dm)
			if src[sb] != 0 {
				dst[db] |= (src[sb] >> sm << dm) &^ mask
			}
		}
		n -= c
		di += c
		si += c
	}
}
