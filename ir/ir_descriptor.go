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

package ir

import (
	"go.bitproto.dev/bitproto"
)

// Descriptor maps the type addressed by id onto the runtime codec's
// descriptor graph. Descriptors are deduplicated within one call: a type
// reachable along several paths maps to a single *bitproto.Type. The result
// is static and may be shared for the process lifetime.
func Descriptor(a *Arena, id TypeID) *bitproto.Type {
	b := descriptorBuilder{
		arena: a,
		built: make(map[TypeID]*bitproto.Type),
	}
	return b.build(id)
}

type descriptorBuilder struct {
	arena *Arena
	built map[TypeID]*bitproto.Type
}

func (b *descriptorBuilder) build(id TypeID) *bitproto.Type {
	if t, ok := b.built[id]; ok {
		return t
	}

	node := b.arena.Type(id)
	var t *bitproto.Type
	switch node.Kind {
	case KindBool:
		t = bitproto.NewBool()
	case KindUint:
		t = bitproto.NewUint(node.Bits)
	case KindInt:
		t = bitproto.NewInt(node.Bits)
	case KindByte:
		t = bitproto.NewByte()
	case KindEnum:
		t = bitproto.NewEnum(node.Bits)
	case KindAlias:
		t = bitproto.NewAlias(b.build(node.Elem))
	case KindArray:
		t = bitproto.NewArray(node.Extensible, node.Cap, b.build(node.Elem))
	case KindMessage:
		fields := make([]bitproto.Field, 0, len(node.Fields))
		for _, field := range node.Fields {
			fields = append(fields, bitproto.Field{
				Name:   field.Name,
				Number: field.Number,
				Type:   b.build(field.Type),
			})
		}
		t = bitproto.NewMessage(node.Extensible, fields...)
	}
	b.built[id] = t
	return t
}
