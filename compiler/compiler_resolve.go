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

package compiler

import (
	"sort"

	"go.bitproto.dev/bitproto/ir"
	"go.bitproto.dev/bitproto/syntax"
)

func (fc *fileCompiler) compileEnums() {
	for _, pending := range fc.enums {
		fc.compileEnum(pending)
	}
}

func (fc *fileCompiler) compileEnum(pending *pendingEnum) {
	node := pending.node

	backing, ok := node.Backing.(*syntax.BaseType)
	if !ok || backing.Kind != syntax.BaseUint {
		fc.err(errEnumBackingNotUint(node.Name.Get(), node.Backing.Span()))
		return
	}
	if node.Backing.Extensible() {
		fc.err(errEnumExtensible(node.Name.Get(), node.Backing.Span()))
		return
	}
	fc.s.arena.SetEnumBacking(pending.id, backing.Bits)

	var maxValue uint64 = 1<<uint(backing.Bits) - 1
	names := make(map[string]struct{}, len(node.Items))
	values := make(map[uint64]string, len(node.Items))
	items := make([]ir.EnumItem, 0, len(node.Items))
	for _, item := range node.Items {
		name := item.Name.Get()
		if _, conflict := names[name]; conflict {
			fc.err(errDuplicateEnumItem(name, item.Name.Span()))
			continue
		}
		names[name] = struct{}{}

		value := item.Value.Value()
		if value > maxValue {
			fc.err(errEnumValueOverflow(
				name, value, backing.Bits, item.Value.Span(),
			))
			continue
		}
		if prev, conflict := values[value]; conflict {
			fc.err(errDuplicateEnumValue(name, prev, value, item.Value.Span()))
			continue
		}
		values[value] = name

		items = append(items, ir.EnumItem{Name: name, Value: value})
	}
	fc.s.arena.Type(pending.id).Items = items
}

func (fc *fileCompiler) compileAliases() {
	for _, pending := range fc.aliases {
		fc.compileAlias(pending)
	}
}

func (fc *fileCompiler) compileAlias(pending *pendingAlias) {
	node := pending.node
	target := fc.resolveType(pending.sc, node.Type)
	if target == 0 {
		return
	}
	switch fc.s.arena.Type(target).Kind {
	case ir.KindBool, ir.KindByte, ir.KindUint, ir.KindInt, ir.KindArray:
	default:
		fc.err(errAliasTargetNamed(node.Name.Get(), node.Type.Span()))
		return
	}
	fc.s.arena.Type(pending.id).Elem = target
}

func (fc *fileCompiler) compileMessages() {
	for _, pending := range fc.messages {
		fc.compileMessage(pending)
	}
}

func (fc *fileCompiler) compileMessage(pending *pendingMessage) {
	numbers := make(map[int]string, len(pending.fields))
	fields := make([]ir.Field, 0, len(pending.fields))
	for _, fieldNode := range pending.fields {
		name := fieldNode.Name.Get()
		number := int(fieldNode.Number.Value())
		if fieldNode.Number.Value() > 255 || number < 1 {
			fc.err(errFieldNumberOutOfRange(
				name, fieldNode.Number.Value(), fieldNode.Number.Span(),
			))
			continue
		}
		if prev, conflict := numbers[number]; conflict {
			fc.err(errDuplicateFieldNumber(
				name, prev, number, fieldNode.Number.Span(),
			))
			continue
		}
		numbers[number] = name

		fieldType := fc.resolveType(pending.sc, fieldNode.Type)
		if fieldType == 0 {
			continue
		}
		fields = append(fields, ir.Field{
			Name:   name,
			Number: number,
			Type:   fieldType,
		})
	}

	sort.Slice(fields, func(a, b int) bool {
		return fields[a].Number < fields[b].Number
	})
	fc.s.arena.Type(pending.id).Fields = fields
}

// resolveType resolves a type use to an arena node, creating array nodes as
// needed. A failed resolution reports an error and returns 0.
func (fc *fileCompiler) resolveType(sc *scope, expr syntax.TypeExpr) ir.TypeID {
	arena := fc.s.arena
	switch node := expr.(type) {
	case *syntax.BaseType:
		if node.Ext {
			fc.err(errTypeNotExtensible(node.Span()))
			return 0
		}
		switch node.Kind {
		case syntax.BaseBool:
			return arena.Bool()
		case syntax.BaseByte:
			return arena.Byte()
		case syntax.BaseUint:
			return arena.Uint(node.Bits)
		default:
			return arena.Int(node.Bits)
		}

	case *syntax.TypeName:
		if node.Ext {
			// Extensibility is declared on the message or array itself, not
			// at the use site.
			fc.err(errTypeNotExtensible(node.Span()))
			return 0
		}
		return fc.resolveTypeName(sc, node)

	case *syntax.ArrayType:
		cap, ok := fc.evalCap(sc, node.Len)
		if !ok {
			return 0
		}
		elem := fc.resolveType(sc, node.Elem)
		if elem == 0 {
			return 0
		}
		return arena.NewArray(node.Ext, cap, elem)
	}
	return 0
}

func (fc *fileCompiler) evalCap(sc *scope, expr syntax.Node) (int, bool) {
	value, ok := fc.evalInt(sc, expr)
	if !ok {
		return 0, false
	}
	if value < 1 || value > 65535 {
		fc.err(errArrayCapOutOfRange(value, expr.Span()))
		return 0, false
	}
	return int(value), true
}

// resolveTypeName searches the scope chain outward for the first path
// segment, then walks nested declarations. A dotted name whose head is not a
// local declaration is resolved through the import aliases.
func (fc *fileCompiler) resolveTypeName(sc *scope, node *syntax.TypeName) ir.TypeID {
	head := node.Parts[0].Get()
	for cur := sc; cur != nil; cur = cur.parent {
		if id, ok := cur.types[head]; ok {
			return fc.walkNested(id, node, 1)
		}
	}

	if imported := fc.proto.ImportedProto(head); imported != nil {
		if len(node.Parts) < 2 {
			fc.err(errNotAType(node.String(), node.Span()))
			return 0
		}
		id, ok := lookupProtoType(imported, node.Parts[1].Get())
		if !ok {
			fc.err(errUnresolvedType(node.String(), node.Span()))
			return 0
		}
		return fc.walkNested(id, node, 2)
	}

	fc.err(errUnresolvedType(node.String(), node.Span()))
	return 0
}

func (fc *fileCompiler) walkNested(
	id ir.TypeID,
	node *syntax.TypeName,
	from int,
) ir.TypeID {
	arena := fc.s.arena
	for _, part := range node.Parts[from:] {
		t := arena.Type(id)
		if t.Kind != ir.KindMessage {
			fc.err(errNotAType(node.String(), node.Span()))
			return 0
		}
		found := ir.TypeID(0)
		for _, nested := range t.Nested {
			if arena.Type(nested).Name == part.Get() {
				found = nested
				break
			}
		}
		if found == 0 {
			fc.err(errUnresolvedType(node.String(), node.Span()))
			return 0
		}
		id = found
	}
	return id
}

// lookupProtoType finds a proto-scope named type in another compilation
// unit.
func lookupProtoType(p *ir.Proto, name string) (ir.TypeID, bool) {
	for _, list := range [][]ir.TypeID{p.Messages, p.Enums, p.Aliases} {
		for _, id := range list {
			if p.Arena.Type(id).Name == name {
				return id, true
			}
		}
	}
	return 0, false
}
