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
	"math"

	"go.bitproto.dev/bitproto/ir"
	"go.bitproto.dev/bitproto/syntax"
)

func (fc *fileCompiler) compileConsts() {
	for _, entry := range fc.consts {
		fc.evalConst(entry)
	}
}

// evalConst fills in a constant's value. Constants may reference each other
// in any declaration order; reference cycles are rejected.
func (fc *fileCompiler) evalConst(entry *constEntry) bool {
	switch entry.state {
	case evalDone:
		return true
	case evalFailed:
		return false
	case evalRunning:
		fc.err(errCircularConst(entry.c.Name, entry.node.Name.Span()))
		entry.state = evalFailed
		return false
	}
	entry.state = evalRunning

	switch value := entry.node.Value.(type) {
	case *syntax.BoolLit:
		entry.c.Kind = ir.ConstBool
		entry.c.Bool = value.Value()
	case *syntax.StringLit:
		entry.c.Kind = ir.ConstString
		entry.c.String = value.Value()
	default:
		result, ok := fc.evalInt(entry.sc, entry.node.Value)
		if !ok {
			entry.state = evalFailed
			return false
		}
		entry.c.Kind = ir.ConstInt
		entry.c.Int = result
	}
	entry.state = evalDone
	return true
}

// evalInt evaluates an integer constant expression with host-width (int64)
// arithmetic. Bounds are checked by the consumer.
func (fc *fileCompiler) evalInt(sc *scope, expr syntax.Node) (int64, bool) {
	switch node := expr.(type) {
	case *syntax.IntLit:
		if node.Value() > math.MaxInt64 {
			fc.err(errIntValueOverflow(node.Value(), node.Span()))
			return 0, false
		}
		return int64(node.Value()), true

	case *syntax.BinaryExpr:
		x, ok := fc.evalInt(sc, node.X)
		if !ok {
			return 0, false
		}
		y, ok := fc.evalInt(sc, node.Y)
		if !ok {
			return 0, false
		}
		switch node.Op {
		case '+':
			return x + y, true
		case '-':
			return x - y, true
		case '*':
			return x * y, true
		default:
			if y == 0 {
				fc.err(errDivisionByZero(node.Span()))
				return 0, false
			}
			return x / y, true
		}

	case *syntax.DottedName:
		entry := fc.resolveConstRef(sc, node)
		if entry == nil {
			return 0, false
		}
		if !fc.evalConst(entry) {
			return 0, false
		}
		if entry.c.Kind != ir.ConstInt {
			fc.err(errNotIntegerConst(node.String(), node.Span()))
			return 0, false
		}
		return entry.c.Int, true

	case *syntax.BoolLit, *syntax.StringLit:
		fc.err(errExpectedIntegerValue(node.Span()))
		return 0, false
	}
	fc.err(errExpectedIntegerValue(expr.Span()))
	return 0, false
}

// resolveConstRef searches the scope chain outward for the head segment of a
// constant reference; a dotted head names a message path within the local
// scope chain, or else an import alias. Local names shadow import aliases.
func (fc *fileCompiler) resolveConstRef(
	sc *scope,
	node *syntax.DottedName,
) *constEntry {
	head := node.Parts[0].Get()

	if len(node.Parts) == 1 {
		for cur := sc; cur != nil; cur = cur.parent {
			if entry, ok := cur.consts[head]; ok {
				return entry
			}
		}
		fc.err(errUnresolvedConst(node.String(), node.Span()))
		return nil
	}

	local := false
	for cur := sc; cur != nil && !local; cur = cur.parent {
		_, local = cur.types[head]
	}
	if imported := fc.proto.ImportedProto(head); imported != nil && !local {
		// Only proto-scope constants of an import are addressable.
		if len(node.Parts) == 2 {
			consts := fc.s.protoConsts[imported]
			if entry, ok := consts[node.Parts[1].Get()]; ok {
				return entry
			}
		}
		fc.err(errUnresolvedConst(node.String(), node.Span()))
		return nil
	}

	// A dotted reference within the local proto names a constant declared
	// inside a message: walk the message path, then the final segment.
	for cur := sc; cur != nil; cur = cur.parent {
		id, ok := cur.types[head]
		if !ok {
			continue
		}
		for _, part := range node.Parts[1 : len(node.Parts)-1] {
			id = fc.nestedMessage(id, part.Get())
			if id == 0 {
				break
			}
		}
		if id == 0 {
			break
		}
		consts := fc.s.messageConsts[id]
		if entry, ok := consts[node.Parts[len(node.Parts)-1].Get()]; ok {
			return entry
		}
		break
	}

	fc.err(errUnresolvedConst(node.String(), node.Span()))
	return nil
}

func (fc *fileCompiler) nestedMessage(id ir.TypeID, name string) ir.TypeID {
	arena := fc.s.arena
	if arena.Type(id).Kind != ir.KindMessage {
		return 0
	}
	for _, nested := range arena.Type(id).Nested {
		if arena.Type(nested).Name == name {
			return nested
		}
	}
	return 0
}
