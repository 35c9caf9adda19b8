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

// Package ir is the resolved schema representation produced by the compiler
// and consumed by descriptor building, layout planning, and code emitters.
//
// All types of a compilation session live in one arena and are addressed by
// stable TypeID indices; parent/child links are indices, never pointers, so
// the graph has no ownership cycles. Base types are interned: every use of
// the same uint width yields the same TypeID. Named types are by identity.
package ir

const (
	// MaxMessageBits is the largest encoded width of a message, including
	// extensibility prefixes.
	MaxMessageBits = 65535

	// MaxArrayCap is the largest array capacity.
	MaxArrayCap = 65535
)

// TypeID addresses a type within an Arena. The zero value is invalid.
type TypeID int32

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

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindByte:
		return "byte"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindArray:
		return "array"
	case KindMessage:
		return "message"
	default:
		return "invalid"
	}
}

// Type is one arena-allocated type node.
type Type struct {
	Kind Kind

	// Name of an enum, alias, or message; empty for unnamed types.
	Name string

	// Bits is the declared width of a uint or int, and the backing width of
	// an enum.
	Bits int

	// Extensible is set on messages and arrays declared with a ' sigil.
	Extensible bool

	// Cap is the element count of an array.
	Cap int

	// Elem is the array element, alias target, or enum backing uint.
	Elem TypeID

	// Fields of a message, in ascending field-number order.
	Fields []Field

	// Nested holds the named types declared inside a message body.
	Nested []TypeID

	// Items of an enum, in declaration order.
	Items []EnumItem

	// Options set on a message (currently only max_bytes).
	MaxBytes int

	nbits int
}

// Field is a numbered message field.
type Field struct {
	Name   string
	Number int
	Type   TypeID
}

// EnumItem is a named enum value.
type EnumItem struct {
	Name  string
	Value uint64
}

// Constant is a named compile-time value: a signed integer, a boolean, or a
// string.
type Constant struct {
	Name string

	Kind ConstKind

	Int    int64
	Bool   bool
	String string
}

type ConstKind uint8

const (
	ConstInt ConstKind = 1 + iota
	ConstBool
	ConstString
)

// Option is one key/value option binding.
type Option struct {
	Name string

	// Exactly one of the value fields is meaningful, per Kind.
	Kind ConstKind

	Int    int64
	Bool   bool
	String string
}

// Proto is one compilation unit: a named schema file with its definitions
// and resolved imports. Protos form a DAG via imports.
type Proto struct {
	Arena *Arena

	// Name is the declared proto name.
	Name string

	// Path is the canonical source path this proto was loaded from.
	Path string

	// Definitions at proto scope, in declaration order.
	Messages  []TypeID
	Enums     []TypeID
	Aliases   []TypeID
	Constants []*Constant

	// Imports in declaration order; aliases are unique.
	Imports []*Import

	Options []Option
}

// Import is one resolved import edge.
type Import struct {
	// Alias is the local namespace name; defaults to the imported proto's
	// declared name when the import statement has no alias.
	Alias string
	Proto *Proto
}

// ImportedProto returns the imported proto registered under alias, or nil.
func (p *Proto) ImportedProto(alias string) *Proto {
	for _, imp := range p.Imports {
		if imp.Alias == alias {
			return imp.Proto
		}
	}
	return nil
}

// Option returns the named proto-scope option, or nil.
func (p *Proto) Option(name string) *Option {
	for ii := range p.Options {
		if p.Options[ii].Name == name {
			return &p.Options[ii]
		}
	}
	return nil
}

// Arena owns every type node of a compilation session.
type Arena struct {
	types []Type

	interned map[internKey]TypeID
}

type internKey struct {
	kind Kind
	bits int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		interned: make(map[internKey]TypeID),
	}
}

// Type returns the node addressed by id.
func (a *Arena) Type(id TypeID) *Type {
	return &a.types[id-1]
}

// Len returns the number of types in the arena.
func (a *Arena) Len() int {
	return len(a.types)
}

func (a *Arena) add(t Type) TypeID {
	a.types = append(a.types, t)
	return TypeID(len(a.types))
}

// Bool returns the interned bool type.
func (a *Arena) Bool() TypeID {
	return a.intern(KindBool, 1)
}

// Byte returns the interned byte type.
func (a *Arena) Byte() TypeID {
	return a.intern(KindByte, 8)
}

// Uint returns the interned uint type of the given width.
func (a *Arena) Uint(bits int) TypeID {
	return a.intern(KindUint, bits)
}

// Int returns the interned int type of the given width.
func (a *Arena) Int(bits int) TypeID {
	return a.intern(KindInt, bits)
}

func (a *Arena) intern(kind Kind, bits int) TypeID {
	key := internKey{kind, bits}
	if id, ok := a.interned[key]; ok {
		return id
	}
	id := a.add(Type{Kind: kind, Bits: bits})
	a.interned[key] = id
	return id
}

// NewEnum adds an enum node. The backing width and items are attached during
// compilation via SetEnumBacking.
func (a *Arena) NewEnum(name string) TypeID {
	return a.add(Type{
		Kind: KindEnum,
		Name: name,
	})
}

// SetEnumBacking fixes an enum's backing uint width.
func (a *Arena) SetEnumBacking(id TypeID, bits int) {
	t := a.Type(id)
	t.Bits = bits
	t.Elem = a.Uint(bits)
}

// NewAlias adds an alias node. The target may be filled in later via Type().
func (a *Arena) NewAlias(name string, to TypeID) TypeID {
	return a.add(Type{
		Kind: KindAlias,
		Name: name,
		Elem: to,
	})
}

// NewArray adds an array node.
func (a *Arena) NewArray(extensible bool, cap int, elem TypeID) TypeID {
	return a.add(Type{
		Kind:       KindArray,
		Extensible: extensible,
		Cap:        cap,
		Elem:       elem,
	})
}

// NewMessage adds an empty message node; fields are attached during
// compilation.
func (a *Arena) NewMessage(name string, extensible bool) TypeID {
	return a.add(Type{
		Kind:       KindMessage,
		Name:       name,
		Extensible: extensible,
	})
}

// Nbits returns the encoded width in bits of the type addressed by id,
// including the 16-bit prefix of extensible messages and arrays. The result
// is memoized on the node. The type graph must be acyclic; the compiler
// rejects cyclic containment before sizing.
func (a *Arena) Nbits(id TypeID) int {
	t := a.Type(id)
	if t.nbits != 0 {
		return t.nbits
	}
	var nbits int
	switch t.Kind {
	case KindBool:
		nbits = 1
	case KindByte:
		nbits = 8
	case KindUint, KindInt, KindEnum:
		nbits = t.Bits
	case KindAlias:
		nbits = a.Nbits(t.Elem)
	case KindArray:
		nbits = t.Cap * a.Nbits(t.Elem)
		if t.Extensible {
			nbits += 16
		}
	case KindMessage:
		for _, field := range t.Fields {
			nbits += a.Nbits(field.Type)
		}
		if t.Extensible {
			nbits += 16
		}
	}
	t.nbits = nbits
	return nbits
}

// StorageSize returns the in-memory width in bytes of the type addressed by
// id: scalars use the smallest of 1/2/4/8 bytes covering their wire width,
// arrays and messages pack their elements and fields without padding.
func (a *Arena) StorageSize(id TypeID) int {
	t := a.Type(id)
	switch t.Kind {
	case KindBool, KindByte:
		return 1
	case KindUint, KindInt, KindEnum:
		return scalarStorageSize(t.Bits)
	case KindAlias:
		return a.StorageSize(t.Elem)
	case KindArray:
		return t.Cap * a.StorageSize(t.Elem)
	case KindMessage:
		size := 0
		for _, field := range t.Fields {
			size += a.StorageSize(field.Type)
		}
		return size
	default:
		return 0
	}
}

func scalarStorageSize(bits int) int {
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	case bits <= 32:
		return 4
	default:
		return 8
	}
}

// Resolve follows alias links to the underlying type.
func (a *Arena) Resolve(id TypeID) TypeID {
	for a.Type(id).Kind == KindAlias {
		id = a.Type(id).Elem
	}
	return id
}

// LookupMessage finds a proto-scope message (or a nested message via dotted
// path segments) by name.
func (p *Proto) LookupMessage(path ...string) (TypeID, bool) {
	if len(path) == 0 {
		return 0, false
	}
	var id TypeID
	found := false
	for _, candidate := range p.Messages {
		if p.Arena.Type(candidate).Name == path[0] {
			id = candidate
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}
	return p.Arena.lookupNested(id, path[1:])
}

func (a *Arena) lookupNested(id TypeID, path []string) (TypeID, bool) {
	for _, name := range path {
		t := a.Type(id)
		found := false
		for _, nested := range t.Nested {
			if a.Type(nested).Name == name {
				id = nested
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return id, true
}
