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
	"go.bitproto.dev/bitproto/ir"
	"go.bitproto.dev/bitproto/syntax"
)

type optionKind uint8

const (
	optionInt optionKind = 1 + iota
	optionString
)

// protoOptions is the recognized proto-scope option table. The c./go./py.
// entries are emitter hints: validated here, carried on the IR verbatim.
var protoOptions = map[string]optionKind{
	"c.struct_packing_alignment": optionInt,
	"c.name_prefix":              optionString,
	"go.package_path":            optionString,
	"py.module_name":             optionString,
}

var messageOptions = map[string]optionKind{
	"max_bytes": optionInt,
}

func (fc *fileCompiler) compileOptions() {
	for _, pending := range fc.options {
		fc.compileOption(pending)
	}
}

func (fc *fileCompiler) compileOption(pending *pendingOption) {
	node := pending.node
	name := node.Name.String()

	table := protoOptions
	sc := fc.protoScope
	if pending.owner != 0 {
		table = messageOptions
		for _, m := range fc.messages {
			if m.id == pending.owner {
				sc = m.sc
				break
			}
		}
	}

	kind, known := table[name]
	if !known {
		fc.err(errUnknownOption(name, node.Name.Span()))
		return
	}

	option := ir.Option{Name: name}
	switch kind {
	case optionInt:
		value, ok := fc.evalInt(sc, node.Value)
		if !ok {
			return
		}
		option.Kind = ir.ConstInt
		option.Int = value
	case optionString:
		lit, ok := node.Value.(*syntax.StringLit)
		if !ok {
			fc.err(errOptionValueType(name, "string", node.Value.Span()))
			return
		}
		option.Kind = ir.ConstString
		option.String = lit.Value()
	}

	if pending.owner == 0 {
		fc.proto.Options = append(fc.proto.Options, option)
		return
	}

	// max_bytes is the only message option.
	if option.Int < 1 {
		fc.err(errOptionValueRange(name, option.Int, node.Value.Span()))
		return
	}
	fc.s.arena.Type(pending.owner).MaxBytes = int(option.Int)
}

// checkSizes rejects cyclic message containment, then verifies the message
// bit-count limits. Sizing runs only after every field type is resolved.
func (fc *fileCompiler) checkSizes() {
	if len(fc.s.errors) > 0 {
		// Sizing a partially resolved graph would chase zero TypeIDs.
		return
	}

	state := make(map[ir.TypeID]uint8, len(fc.messages))
	for _, pending := range fc.messages {
		if !fc.checkCycle(pending.id, pending, state) {
			return
		}
	}

	arena := fc.s.arena
	for _, pending := range fc.messages {
		nbits := arena.Nbits(pending.id)
		t := arena.Type(pending.id)
		if nbits > ir.MaxMessageBits {
			fc.err(errMessageTooLarge(t.Name, nbits, pending.node.Name.Span()))
			continue
		}
		if t.MaxBytes != 0 {
			nbytes := (nbits + 7) / 8
			if nbytes > t.MaxBytes {
				fc.err(errMessageExceedsMaxBytes(
					t.Name, nbytes, t.MaxBytes, pending.node.Name.Span(),
				))
			}
		}
	}
}

const (
	cycleVisiting uint8 = 1 + iota
	cycleDone
)

func (fc *fileCompiler) checkCycle(
	id ir.TypeID,
	pending *pendingMessage,
	state map[ir.TypeID]uint8,
) bool {
	switch state[id] {
	case cycleDone:
		return true
	case cycleVisiting:
		t := fc.s.arena.Type(id)
		fc.err(errCyclicMessage(t.Name, pending.node.Name.Span()))
		return false
	}
	state[id] = cycleVisiting
	for _, field := range fc.s.arena.Type(id).Fields {
		if !fc.checkCycleType(field.Type, pending, state) {
			return false
		}
	}
	state[id] = cycleDone
	return true
}

func (fc *fileCompiler) checkCycleType(
	id ir.TypeID,
	pending *pendingMessage,
	state map[ir.TypeID]uint8,
) bool {
	t := fc.s.arena.Type(id)
	switch t.Kind {
	case ir.KindAlias, ir.KindArray:
		return fc.checkCycleType(t.Elem, pending, state)
	case ir.KindMessage:
		return fc.checkCycle(id, pending, state)
	}
	return true
}
