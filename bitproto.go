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

// Package bitproto is the runtime codec for bit-packed message types.
//
// The codec is descriptor-driven: a static Type graph describes the wire
// layout of a message, and Encode / Decode copy bits between the message's
// in-memory storage and a caller-supplied byte buffer. The codec performs no
// allocation, no reflection, and no validation of well-formed buffers.
//
// A message value is its packed little-endian storage buffer. Fields are laid
// out in ascending field-number order, each occupying its storage width
// (1, 2, 4, or 8 bytes for scalars), with no padding between fields. Field
// storage offsets are precomputed on the descriptor.
package bitproto

import (
	"encoding/binary"
	"sort"
)

const (
	// MaxMessageBits is the largest encoded width of a single message,
	// including extensibility prefixes.
	MaxMessageBits = 65535

	// MaxArrayCap is the largest array capacity.
	MaxArrayCap = 65535
)

// Kind identifies a Type variant.
type Kind uint8

const (
	KindBool Kind = 1 + iota
	KindUint
	KindInt
	KindByte
	KindEnum
	KindAlias
	KindArray
	KindMessage
)

// Type is the static descriptor of a schema type. Descriptors are created
// once, live for the process lifetime, and are safe to share across
// goroutines. Codec operations borrow them.
type Type struct {
	Kind Kind

	// Nbits is the encoded width in bits, including the 16-bit prefix of an
	// extensible message or array.
	Nbits int

	// Size is the in-memory storage width in bytes.
	Size int

	// Extensible is set on messages and arrays that carry a 16-bit prefix.
	Extensible bool

	// Cap is the element count of an array.
	Cap int

	// Elem is the array element type, the alias target, or the enum's
	// backing uint.
	Elem *Type

	// Fields of a message, in ascending field-number order.
	Fields []Field

	fieldsByName map[string]int
}

// Field is a single numbered field within a message descriptor.
type Field struct {
	Name   string
	Number int
	Type   *Type

	// Offset is the field's storage byte offset within the message value.
	Offset int
}

// Data returns the storage bytes of this field within message value msg.
func (f *Field) Data(msg []byte) []byte {
	return msg[f.Offset : f.Offset+f.Type.Size]
}

// NewBool returns the descriptor of a bool (1 wire bit, 1 storage byte).
func NewBool() *Type {
	return &Type{Kind: KindBool, Nbits: 1, Size: 1}
}

// NewUint returns the descriptor of an unsigned integer of nbits wire bits,
// 1 <= nbits <= 64.
func NewUint(nbits int) *Type {
	return &Type{Kind: KindUint, Nbits: nbits, Size: storageSize(nbits)}
}

// NewInt returns the descriptor of a signed integer of nbits wire bits,
// 1 <= nbits <= 64. Values are sign-extended to their storage width on
// decode.
func NewInt(nbits int) *Type {
	return &Type{Kind: KindInt, Nbits: nbits, Size: storageSize(nbits)}
}

// NewByte returns the descriptor of a byte (8 wire bits, 1 storage byte).
func NewByte() *Type {
	return &Type{Kind: KindByte, Nbits: 8, Size: 1}
}

// NewEnum returns the descriptor of an enum backed by a uint of nbits wire
// bits. Enums are never extensible; unknown values round-trip unchecked.
func NewEnum(nbits int) *Type {
	return &Type{
		Kind:  KindEnum,
		Nbits: nbits,
		Size:  storageSize(nbits),
		Elem:  NewUint(nbits),
	}
}

// NewAlias returns the descriptor of a named alias to an unnamed type.
func NewAlias(to *Type) *Type {
	return &Type{Kind: KindAlias, Nbits: to.Nbits, Size: to.Size, Elem: to}
}

// NewArray returns the descriptor of an array of cap elements. An extensible
// array carries a 16-bit element-count prefix on the wire.
func NewArray(extensible bool, cap int, elem *Type) *Type {
	if cap < 1 || cap > MaxArrayCap {
		panic("bitproto: array capacity out of range")
	}
	nbits := cap * elem.Nbits
	if extensible {
		nbits += 16
	}
	return &Type{
		Kind:       KindArray,
		Nbits:      nbits,
		Size:       cap * elem.Size,
		Extensible: extensible,
		Cap:        cap,
		Elem:       elem,
	}
}

// NewMessage returns the descriptor of a message with the given fields.
// Fields are sorted into ascending field-number order and assigned packed
// storage offsets. An extensible message carries a 16-bit payload-bit-count
// prefix on the wire.
func NewMessage(extensible bool, fields ...Field) *Type {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Number < sorted[b].Number
	})

	t := &Type{
		Kind:         KindMessage,
		Extensible:   extensible,
		fieldsByName: make(map[string]int, len(sorted)),
	}
	nbits := 0
	offset := 0
	for ii := range sorted {
		field := &sorted[ii]
		if ii > 0 && field.Number == sorted[ii-1].Number {
			panic("bitproto: duplicate field number")
		}
		field.Offset = offset
		offset += field.Type.Size
		nbits += field.Type.Nbits
		t.fieldsByName[field.Name] = ii
	}
	if extensible {
		nbits += 16
	}
	if nbits > MaxMessageBits {
		panic("bitproto: message exceeds 65535 bits")
	}
	t.Nbits = nbits
	t.Size = offset
	t.Fields = sorted
	return t
}

// ByteSize returns the encoded byte length of this type.
func (t *Type) ByteSize() int {
	return (t.Nbits + 7) / 8
}

// Field returns the message field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	ii, ok := t.fieldsByName[name]
	if !ok {
		return nil
	}
	return &t.Fields[ii]
}

// FieldData returns the storage bytes of the named field within msg, or nil
// if no such field exists.
func (t *Type) FieldData(msg []byte, name string) []byte {
	field := t.Field(name)
	if field == nil {
		return nil
	}
	return field.Data(msg)
}

// ElemData returns the storage bytes of array element k within data.
func (t *Type) ElemData(data []byte, k int) []byte {
	size := t.Elem.Size
	return data[k*size : (k+1)*size]
}

// Encode writes the encoded form of message value msg into s. The caller
// must size s to at least ByteSize() bytes and pre-zero it: bits of s that
// no field covers, such as the unused high bits of the last byte, are not
// guaranteed to be cleared.
func (t *Type) Encode(msg, s []byte) {
	ctx := ProcessContext{isEncode: true, s: s}
	t.process(&ctx, msg)
}

// Decode reads the encoded bytes in s into message value msg. The caller
// must size s to at least ByteSize() bytes and pre-zero msg.
func (t *Type) Decode(msg, s []byte) {
	ctx := ProcessContext{s: s}
	t.process(&ctx, msg)
}

// ProcessContext carries the state of one encode or decode call. It is
// exclusively owned by that call.
type ProcessContext struct {
	// Indicates whether current processing is encoding.
	isEncode bool
	// Bit cursor into s.
	i int
	// Destination buffer when encoding, source buffer when decoding.
	s []byte
}

// NewEncodeContext returns a ProcessContext for encoding into buffer s.
func NewEncodeContext(s []byte) *ProcessContext {
	return &ProcessContext{isEncode: true, s: s}
}

// NewDecodeContext returns a ProcessContext for decoding from buffer s.
func NewDecodeContext(s []byte) *ProcessContext {
	return &ProcessContext{s: s}
}

func storageSize(nbits int) int {
	switch {
	case nbits <= 8:
		return 1
	case nbits <= 16:
		return 2
	case nbits <= 32:
		return 4
	default:
		return 8
	}
}

// Uint reads the little-endian storage bytes of an unsigned value.
func Uint(data []byte) uint64 {
	switch len(data) {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data))
	default:
		return binary.LittleEndian.Uint64(data)
	}
}

// PutUint writes v into the little-endian storage bytes data, truncated to
// the storage width.
func PutUint(data []byte, v uint64) {
	switch len(data) {
	case 1:
		data[0] = uint8(v)
	case 2:
		binary.LittleEndian.PutUint16(data, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(data, uint32(v))
	default:
		binary.LittleEndian.PutUint64(data, v)
	}
}

// Int reads the little-endian storage bytes of a signed value.
func Int(data []byte) int64 {
	switch len(data) {
	case 1:
		return int64(int8(data[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(data)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(data)))
	default:
		return int64(binary.LittleEndian.Uint64(data))
	}
}

// PutInt writes v into the little-endian storage bytes data, truncated to
// the storage width.
func PutInt(data []byte, v int64) {
	PutUint(data, uint64(v))
}

// Bool reads a bool storage byte.
func Bool(data []byte) bool {
	return data[0] != 0
}

// PutBool writes a bool storage byte.
func PutBool(data []byte, v bool) {
	if v {
		data[0] = 1
	} else {
		data[0] = 0
	}
}
