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

// Package layout precomputes per-message bit plans for the straight-line
// lowering: every scalar leaf of a message flattened to one copy step with a
// fixed storage offset and wire bit position. Code emitters unroll a plan
// into branch-free encode/decode bodies; Encode and Decode execute a plan
// directly, producing wire bytes identical to the descriptor-driven codec.
//
// Plans cannot represent the extensibility protocol: prefix values and
// decode-time skips depend on the producer's schema, not only on bit
// positions. Building a plan whose root reaches an extensible entity fails.
package layout

import (
	"fmt"

	"go.bitproto.dev/bitproto"
	"go.bitproto.dev/bitproto/ir"
)

// Step copies one scalar between message storage and the wire.
type Step struct {
	// Offset is the scalar's storage byte offset within the message value.
	Offset int

	// Bit is the scalar's wire bit position within the encoded message.
	Bit int

	// Nbits is the scalar's wire width.
	Nbits int

	// Size is the scalar's storage width in bytes.
	Size int

	// Signed scalars are sign-extended into their storage after decode.
	Signed bool

	// Bool scalars normalize nonzero storage to wire bit 1 on encode.
	Bool bool
}

// Plan is a message flattened to its ordered scalar copy steps.
type Plan struct {
	Root  ir.TypeID
	Nbits int

	// Size is the message's storage width in bytes.
	Size int

	Steps []Step
}

// Error is a plan-construction failure.
type Error struct {
	message string
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return err.message
}

func errNotMessage(kind ir.Kind) error {
	return &Error{
		message: fmt.Sprintf("layout plans require a message root, got %v", kind),
	}
}

func errExtensible(name string) error {
	if name == "" {
		name = "(array)"
	}
	return &Error{
		message: fmt.Sprintf(
			"'%s' is extensible and cannot be lowered to a bit plan", name,
		),
	}
}

// Build flattens the message addressed by id into a Plan.
func Build(a *ir.Arena, id ir.TypeID) (*Plan, error) {
	root := a.Type(id)
	if root.Kind != ir.KindMessage {
		return nil, errNotMessage(root.Kind)
	}
	p := &Plan{
		Root:  id,
		Nbits: a.Nbits(id),
		Size:  a.StorageSize(id),
	}
	if err := p.flatten(a, id, 0, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// flatten appends the steps of the type addressed by id, stored at byte
// offset within the root value and encoded at wire bit position bit.
func (p *Plan) flatten(a *ir.Arena, id ir.TypeID, offset, bit int) error {
	t := a.Type(id)
	switch t.Kind {
	case ir.KindBool:
		p.Steps = append(p.Steps, Step{
			Offset: offset,
			Bit:    bit,
			Nbits:  1,
			Size:   1,
			Bool:   true,
		})
	case ir.KindUint, ir.KindByte, ir.KindEnum, ir.KindInt:
		p.Steps = append(p.Steps, Step{
			Offset: offset,
			Bit:    bit,
			Nbits:  a.Nbits(id),
			Size:   a.StorageSize(id),
			Signed: t.Kind == ir.KindInt,
		})
	case ir.KindAlias:
		return p.flatten(a, t.Elem, offset, bit)
	case ir.KindArray:
		if t.Extensible {
			return errExtensible(t.Name)
		}
		elemSize := a.StorageSize(t.Elem)
		elemBits := a.Nbits(t.Elem)
		for k := 0; k < t.Cap; k++ {
			err := p.flatten(a, t.Elem, offset+k*elemSize, bit+k*elemBits)
			if err != nil {
				return err
			}
		}
	case ir.KindMessage:
		if t.Extensible {
			return errExtensible(t.Name)
		}
		for _, field := range t.Fields {
			if err := p.flatten(a, field.Type, offset, bit); err != nil {
				return err
			}
			offset += a.StorageSize(field.Type)
			bit += a.Nbits(field.Type)
		}
	}
	return nil
}

// ByteSize returns the encoded byte length of the planned message.
func (p *Plan) ByteSize() int {
	return (p.Nbits + 7) / 8
}

// Encode runs the plan against message value msg, writing into the
// pre-zeroed buffer s.
func (p *Plan) Encode(msg, s []byte) {
	for ii := range p.Steps {
		step := &p.Steps[ii]
		data := msg[step.Offset : step.Offset+step.Size]
		if step.Bool {
			var b [1]byte
			if data[0] != 0 {
				b[0] = 1
			}
			bitproto.CopyBits(1, s, b[:], step.Bit, 0)
			continue
		}
		bitproto.CopyBits(step.Nbits, s, data, step.Bit, 0)
	}
}

// Decode runs the plan against buffer s, writing into the pre-zeroed message
// value msg.
func (p *Plan) Decode(msg, s []byte) {
	for ii := range p.Steps {
		step := &p.Steps[ii]
		data := msg[step.Offset : step.Offset+step.Size]
		bitproto.CopyBits(step.Nbits, data, s, 0, step.Bit)
		if step.Signed {
			bitproto.SignExtend(data, step.Nbits)
		}
	}
}
