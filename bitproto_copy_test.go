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
	"fmt"
	"testing"

	"go.bitproto.dev/bitproto"
	"go.bitproto.dev/bitproto/internal/testutil"
)

// copyBitsRef is the bit-at-a-time reference for CopyBits.
func copyBitsRef(n int, dst, src []byte, di, si int) {
	for k := 0; k < n; k++ {
		bit := (src[(si+k)>>3] >> uint((si+k)&7)) & 1
		if bit != 0 {
			dst[(di+k)>>3] |= 1 << uint((di+k)&7)
		} else {
			dst[(di+k)>>3] &^= 1 << uint((di+k)&7)
		}
	}
}

var copySrcPatterns = [][]byte{
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0xA5, 0x5A, 0xC3, 0x3C, 0x0F, 0xF0, 0x81, 0x18, 0x7E, 0xE7},
	{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0xFE, 0x55},
	{0xDE, 0xAD, 0xBE, 0xEF, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
}

func TestCopyBitsSingle(t *testing.T) {
	t.Parallel()

	widths := []int{1, 2, 3, 5, 7, 8, 9, 11, 13, 16, 17, 24, 29, 32, 33, 48, 63, 64}
	for _, src := range copySrcPatterns {
		for _, n := range widths {
			for si := 0; si+n <= len(src)*8; si += 3 {
				for di := 0; di+n <= 64; di += 5 {
					want := make([]byte, 10)
					got := make([]byte, 10)
					copyBitsRef(n, want, src, di, si)
					bitproto.CopyBits(n, got, src, di, si)
					if string(want) != string(got) {
						t.Fatalf(
							"CopyBits(n=%d, di=%d, si=%d, src=%x):"+
								" expected %x, got %x",
							n, di, si, src, want, got,
						)
					}
				}
			}
		}
	}
}

// TestCopyBitsSequential deposits adjacent segments the way the codec does
// when packing message fields: each segment starts where the previous one
// ended.
func TestCopyBitsSequential(t *testing.T) {
	t.Parallel()

	segments := []int{3, 1, 5, 11, 8, 32, 7, 2, 13, 64, 6}
	total := 0
	for _, n := range segments {
		total += n
	}
	dstLen := (total + 7) / 8

	for _, src := range copySrcPatterns {
		want := make([]byte, dstLen)
		got := make([]byte, dstLen)
		di := 0
		for _, n := range segments {
			si := di % (len(src)*8 - 64)
			copyBitsRef(n, want, src, di, si)
			bitproto.CopyBits(n, got, src, di, si)
			di += n
		}
		testutil.ExpectBytesEq(t, want, got)
	}
}

// TestCopyBitsBufferEnd drives the wide fast paths against buffers that end
// exactly at the copied range, checking the portable gating.
func TestCopyBitsBufferEnd(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 64; n++ {
		for si := 0; si < 8; si++ {
			srcLen := (si + n + 7) / 8
			dstLen := (n + 7) / 8
			src := make([]byte, srcLen)
			for ii := range src {
				src[ii] = byte(0xA5 ^ ii)
			}
			want := make([]byte, dstLen)
			got := make([]byte, dstLen)
			copyBitsRef(n, want, src, 0, si)
			bitproto.CopyBits(n, got, src, 0, si)
			if string(want) != string(got) {
				t.Fatalf(
					"CopyBits(n=%d, si=%d) at buffer end:"+
						" expected %x, got %x",
					n, si, want, got,
				)
			}
		}
	}
}

func TestSignExtend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		nbits int
		in    []byte
		want  []byte
	}{
		{24, []byte{0xFF, 0xFF, 0xFF, 0x00}, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{24, []byte{0xFF, 0xFF, 0x7F, 0x00}, []byte{0xFF, 0xFF, 0x7F, 0x00}},
		{24, []byte{0x00, 0x00, 0x80, 0x00}, []byte{0x00, 0x00, 0x80, 0xFF}},
		{3, []byte{0x05}, []byte{0xFD}},
		{3, []byte{0x03}, []byte{0x03}},
		{8, []byte{0x80}, []byte{0x80}},
		{33, []byte{0, 0, 0, 0, 0x01, 0, 0, 0}, []byte{0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("int%d", tc.nbits), func(t *testing.T) {
			got := make([]byte, len(tc.in))
			copy(got, tc.in)
			bitproto.SignExtend(got, tc.nbits)
			testutil.ExpectBytesEq(t, tc.want, got)
		})
	}
}
