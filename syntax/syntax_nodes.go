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

package syntax

import (
	"strings"
)

// Span is a half-open byte range within a source file.
type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

// Position maps the start of a span to a 1-based line and column within src.
func Position(src []byte, span Span) (line, col int) {
	line, col = 1, 1
	end := int(span.start)
	if end > len(src) {
		end = len(src)
	}
	for _, c := range src[:end] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Node is any element of the syntax tree.
type Node interface {
	Span() Span
}

// File is the parsed form of one schema source file.
type File struct {
	// Name is the declared proto name.
	Name  *Ident
	Decls []Decl
	span  Span
}

func (f *File) Span() Span {
	return f.span
}

// Decl is a statement that may appear at proto scope or (except Import)
// within a message body.
type Decl interface {
	Node
	declNode()
}

type Import struct {
	// Alias is nil for an unaliased import.
	Alias *Ident
	Path  *StringLit
	span  Span
}

type Option struct {
	Name  *DottedName
	Value Node
	span  Span
}

type Const struct {
	Name  *Ident
	Value Node
	span  Span
}

type Alias struct {
	Name *Ident
	Type TypeExpr
	span Span
}

type Enum struct {
	Name    *Ident
	Backing TypeExpr
	Items   []*EnumItem
	span    Span
}

type EnumItem struct {
	Name  *Ident
	Value *IntLit
	span  Span
}

type Message struct {
	Name       *Ident
	Extensible bool
	Decls      []Decl
	span       Span
}

type Field struct {
	Type   TypeExpr
	Name   *Ident
	Number *IntLit
	span   Span
}

func (n *Import) Span() Span   { return n.span }
func (n *Option) Span() Span   { return n.span }
func (n *Const) Span() Span    { return n.span }
func (n *Alias) Span() Span    { return n.span }
func (n *Enum) Span() Span     { return n.span }
func (n *EnumItem) Span() Span { return n.span }
func (n *Message) Span() Span  { return n.span }
func (n *Field) Span() Span    { return n.span }

func (*Import) declNode()  {}
func (*Option) declNode()  {}
func (*Const) declNode()   {}
func (*Alias) declNode()   {}
func (*Enum) declNode()    {}
func (*Message) declNode() {}
func (*Field) declNode()   {}

// TypeExpr is a type use: a base type word, a (possibly dotted) type name,
// or an array of either.
type TypeExpr interface {
	Node
	typeExprNode()

	// Extensible reports whether the use carries a trailing ' sigil.
	Extensible() bool
}

// BaseKind identifies a built-in type word.
type BaseKind uint8

const (
	BaseBool BaseKind = 1 + iota
	BaseByte
	BaseUint
	BaseInt
)

type BaseType struct {
	Kind BaseKind
	// Bits is the declared width of a uint or int; 1 for bool, 8 for byte.
	Bits int
	Ext  bool
	span Span
}

// TypeName is a reference to a named type, optionally qualified by an import
// alias or an enclosing scope chain.
type TypeName struct {
	Parts []*Ident
	Ext   bool
	span  Span
}

type ArrayType struct {
	Elem TypeExpr
	// Len is a constant expression for the array capacity.
	Len  Node
	Ext  bool
	span Span
}

func (n *BaseType) Span() Span  { return n.span }
func (n *TypeName) Span() Span  { return n.span }
func (n *ArrayType) Span() Span { return n.span }

func (*BaseType) typeExprNode()  {}
func (*TypeName) typeExprNode()  {}
func (*ArrayType) typeExprNode() {}

func (n *BaseType) Extensible() bool  { return n.Ext }
func (n *TypeName) Extensible() bool  { return n.Ext }
func (n *ArrayType) Extensible() bool { return n.Ext }

func (n *TypeName) String() string {
	parts := make([]string, len(n.Parts))
	for ii, part := range n.Parts {
		parts[ii] = part.Get()
	}
	return strings.Join(parts, ".")
}

type Ident struct {
	raw  string
	span Span
}

func (n *Ident) Span() Span {
	return n.span
}

func (n *Ident) Get() string {
	return n.raw
}

// DottedName is a dot-separated identifier path, as used by option names and
// constant references.
type DottedName struct {
	Parts []*Ident
	span  Span
}

func (n *DottedName) Span() Span {
	return n.span
}

func (n *DottedName) String() string {
	parts := make([]string, len(n.Parts))
	for ii, part := range n.Parts {
		parts[ii] = part.Get()
	}
	return strings.Join(parts, ".")
}

type IntLit struct {
	raw   string
	value uint64
	span  Span
}

func (n *IntLit) Span() Span {
	return n.span
}

func (n *IntLit) Value() uint64 {
	return n.value
}

type BoolLit struct {
	raw   string
	value bool
	span  Span
}

func (n *BoolLit) Span() Span {
	return n.span
}

func (n *BoolLit) Value() bool {
	return n.value
}

type StringLit struct {
	raw   string
	value string
	span  Span
}

func (n *StringLit) Span() Span {
	return n.span
}

func (n *StringLit) Value() string {
	return n.value
}

// BinaryExpr is a constant-expression operation: '+', '-', '*', or '/'.
type BinaryExpr struct {
	Op   byte
	X, Y Node
	span Span
}

func (n *BinaryExpr) Span() Span {
	return n.span
}
