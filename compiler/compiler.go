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

// Package compiler resolves parsed schema files into the ir representation:
// import graphs, symbol tables, constant evaluation, type checking, bit-size
// computation, extensibility validation, and lint.
package compiler

import (
	pathpkg "path"

	"go.bitproto.dev/bitproto/ir"
	"go.bitproto.dev/bitproto/syntax"
)

// Loader reads schema source files for the compiler. Import paths are
// resolved relative to the importing file's directory before loading.
type Loader interface {
	Load(path string) ([]byte, error)
}

// MapLoader serves sources from an in-memory map, keyed by path.
type MapLoader map[string][]byte

func (m MapLoader) Load(path string) ([]byte, error) {
	src, ok := m[path]
	if !ok {
		return nil, errFileNotFound(path)
	}
	return src, nil
}

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	loader Loader
}

// WithLoader sets the source loader used to resolve imports.
func WithLoader(loader Loader) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.loader = loader
	})
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

// CompileResult carries the compiled proto and every diagnostic produced for
// it and its imports. Proto is nil when Errors is non-empty.
type CompileResult struct {
	Proto *ir.Proto

	Errors   []*Error
	Warnings []*Warning

	// Sources maps canonical paths to the loaded file contents, for
	// span-to-position reporting.
	Sources map[string][]byte
}

// CompileFile loads, parses, and compiles the schema at path, following
// imports through the configured loader.
func CompileFile(path string, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).CompileFile(path)
}

// CompileSource compiles src as if loaded from path. Imports are resolved
// relative to path through the configured loader.
func CompileSource(path string, src []byte, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).CompileSource(path, src)
}

func (opts *CompileOptions) CompileFile(path string) CompileResult {
	s := newSession(opts)
	proto := s.loadProto(pathpkg.Clean(path), "", syntax.Span{})
	return s.result(proto)
}

func (opts *CompileOptions) CompileSource(path string, src []byte) CompileResult {
	s := newSession(opts)
	proto := s.compileSource(pathpkg.Clean(path), src)
	return s.result(proto)
}

type session struct {
	opts  *CompileOptions
	arena *ir.Arena

	protos  map[string]*ir.Proto
	loading map[string]bool
	sources map[string][]byte

	// Per-message constant tables, for dotted constant references.
	messageConsts map[ir.TypeID]map[string]*constEntry
	// Per-proto top-level constant tables, for imported references.
	protoConsts map[*ir.Proto]map[string]*constEntry

	errors   []*Error
	warnings []*Warning
}

func newSession(opts *CompileOptions) *session {
	return &session{
		opts:          opts,
		arena:         ir.NewArena(),
		protos:        make(map[string]*ir.Proto),
		loading:       make(map[string]bool),
		sources:       make(map[string][]byte),
		messageConsts: make(map[ir.TypeID]map[string]*constEntry),
		protoConsts:   make(map[*ir.Proto]map[string]*constEntry),
	}
}

func (s *session) result(proto *ir.Proto) CompileResult {
	result := CompileResult{
		Errors:   s.errors,
		Warnings: s.warnings,
		Sources:  s.sources,
	}
	if len(s.errors) == 0 {
		result.Proto = proto
	}
	return result
}

// loadProto returns the single proto instance for the canonical path,
// compiling it on first use. Import cycles are detected by the in-progress
// set.
func (s *session) loadProto(
	path string,
	importerPath string,
	importSpan syntax.Span,
) *ir.Proto {
	if proto, ok := s.protos[path]; ok {
		return proto
	}
	if s.loading[path] {
		s.errors = append(s.errors, errImportCycle(path, importerPath, importSpan))
		return nil
	}

	if s.opts.loader == nil {
		s.errors = append(s.errors, errNoLoader(path, importerPath, importSpan))
		return nil
	}
	src, err := s.opts.loader.Load(path)
	if err != nil {
		s.errors = append(s.errors, errImportNotFound(path, importerPath, importSpan))
		return nil
	}
	return s.compileSource(path, src)
}

func (s *session) compileSource(path string, src []byte) *ir.Proto {
	s.sources[path] = src
	s.loading[path] = true
	defer delete(s.loading, path)

	file, err := syntax.Parse(src)
	if err != nil {
		s.errors = append(s.errors, errFromSyntax(path, err))
		return nil
	}

	fc := &fileCompiler{
		s:    s,
		path: path,
		file: file,
		proto: &ir.Proto{
			Arena: s.arena,
			Name:  file.Name.Get(),
			Path:  path,
		},
	}
	fc.compile()

	s.protos[path] = fc.proto
	return fc.proto
}

type fileCompiler struct {
	s     *session
	path  string
	file  *syntax.File
	proto *ir.Proto

	protoScope *scope

	consts   []*constEntry
	enums    []*pendingEnum
	aliases  []*pendingAlias
	messages []*pendingMessage
	options  []*pendingOption
}

type scope struct {
	parent *scope
	// owner is the message this scope belongs to; 0 at proto scope.
	owner  ir.TypeID
	types  map[string]ir.TypeID
	consts map[string]*constEntry
}

func newScope(parent *scope, owner ir.TypeID) *scope {
	return &scope{
		parent: parent,
		owner:  owner,
		types:  make(map[string]ir.TypeID),
		consts: make(map[string]*constEntry),
	}
}

type constEntry struct {
	node  *syntax.Const
	sc    *scope
	c     *ir.Constant
	state evalState
}

type evalState uint8

const (
	evalPending evalState = iota
	evalRunning
	evalDone
	evalFailed
)

type pendingEnum struct {
	id   ir.TypeID
	node *syntax.Enum
}

type pendingAlias struct {
	id   ir.TypeID
	node *syntax.Alias
	sc   *scope
}

type pendingMessage struct {
	id     ir.TypeID
	node   *syntax.Message
	sc     *scope
	fields []*syntax.Field
}

type pendingOption struct {
	node *syntax.Option
	// owner is the enclosing message; 0 at proto scope.
	owner     ir.TypeID
	ownerNode *syntax.Message
}

func (fc *fileCompiler) err(err *Error) {
	err.path = fc.path
	fc.s.errors = append(fc.s.errors, err)
}

func (fc *fileCompiler) warn(warning *Warning) {
	warning.path = fc.path
	fc.s.warnings = append(fc.s.warnings, warning)
}

func (fc *fileCompiler) compile() {
	fc.registerImports()

	fc.protoScope = newScope(nil, 0)
	for _, decl := range fc.file.Decls {
		fc.registerDecl(fc.protoScope, nil, decl)
	}

	fc.compileEnums()
	fc.compileAliases()
	fc.compileMessages()
	fc.compileConsts()
	fc.compileOptions()
	fc.checkSizes()
	fc.lint()
}

func (fc *fileCompiler) registerImports() {
	dir := pathpkg.Dir(fc.path)
	for _, decl := range fc.file.Decls {
		node, ok := decl.(*syntax.Import)
		if !ok {
			continue
		}
		importPath := pathpkg.Join(dir, node.Path.Value())
		imported := fc.s.loadProto(importPath, fc.path, node.Path.Span())
		if imported == nil {
			continue
		}

		alias := imported.Name
		if node.Alias != nil {
			alias = node.Alias.Get()
		}
		if fc.proto.ImportedProto(alias) != nil {
			fc.err(errImportAliasConflict(alias, node.Span()))
			continue
		}
		fc.proto.Imports = append(fc.proto.Imports, &ir.Import{
			Alias: alias,
			Proto: imported,
		})
	}
}

func (fc *fileCompiler) registerDecl(
	sc *scope,
	parent *pendingMessage,
	decl syntax.Decl,
) {
	arena := fc.s.arena
	switch node := decl.(type) {
	case *syntax.Import:
		// Handled by registerImports; the parser only accepts imports at
		// proto scope.

	case *syntax.Option:
		pending := &pendingOption{node: node}
		if parent != nil {
			pending.owner = parent.id
			pending.ownerNode = parent.node
		}
		fc.options = append(fc.options, pending)

	case *syntax.Const:
		name := node.Name.Get()
		if !fc.declare(sc, name, node.Name.Span()) {
			return
		}
		entry := &constEntry{
			node: node,
			sc:   sc,
			c:    &ir.Constant{Name: name},
		}
		sc.consts[name] = entry
		fc.consts = append(fc.consts, entry)
		if parent == nil {
			fc.proto.Constants = append(fc.proto.Constants, entry.c)
			fc.protoConsts()[name] = entry
		} else {
			fc.ownerConsts(parent.id)[name] = entry
		}

	case *syntax.Alias:
		name := node.Name.Get()
		if !fc.declare(sc, name, node.Name.Span()) {
			return
		}
		id := arena.NewAlias(name, 0)
		sc.types[name] = id
		fc.aliases = append(fc.aliases, &pendingAlias{id: id, node: node, sc: sc})
		if parent == nil {
			fc.proto.Aliases = append(fc.proto.Aliases, id)
		} else {
			fc.nest(parent, id)
		}

	case *syntax.Enum:
		name := node.Name.Get()
		if !fc.declare(sc, name, node.Name.Span()) {
			return
		}
		id := arena.NewEnum(name)
		sc.types[name] = id
		fc.enums = append(fc.enums, &pendingEnum{id: id, node: node})
		if parent == nil {
			fc.proto.Enums = append(fc.proto.Enums, id)
		} else {
			fc.nest(parent, id)
		}

	case *syntax.Message:
		name := node.Name.Get()
		if !fc.declare(sc, name, node.Name.Span()) {
			return
		}
		id := arena.NewMessage(name, node.Extensible)
		sc.types[name] = id
		pending := &pendingMessage{
			id:   id,
			node: node,
			sc:   newScope(sc, id),
		}
		fc.messages = append(fc.messages, pending)
		if parent == nil {
			fc.proto.Messages = append(fc.proto.Messages, id)
		} else {
			fc.nest(parent, id)
		}
		for _, child := range node.Decls {
			fc.registerDecl(pending.sc, pending, child)
		}

	case *syntax.Field:
		parent.fields = append(parent.fields, node)
	}
}

func (fc *fileCompiler) nest(parent *pendingMessage, id ir.TypeID) {
	t := fc.s.arena.Type(parent.id)
	t.Nested = append(t.Nested, id)
}

// declare reserves name within sc, reporting a conflict with an existing
// declaration. A name matching an import alias is allowed: the local
// declaration wins, with a lint warning.
func (fc *fileCompiler) declare(sc *scope, name string, span syntax.Span) bool {
	if _, conflict := sc.types[name]; conflict {
		fc.err(errDuplicateName(name, span))
		return false
	}
	if _, conflict := sc.consts[name]; conflict {
		fc.err(errDuplicateName(name, span))
		return false
	}
	if fc.proto.ImportedProto(name) != nil {
		fc.warn(warnShadowsImport(name, span))
	}
	return true
}

func (fc *fileCompiler) protoConsts() map[string]*constEntry {
	consts, ok := fc.s.protoConsts[fc.proto]
	if !ok {
		consts = make(map[string]*constEntry)
		fc.s.protoConsts[fc.proto] = consts
	}
	return consts
}

func (fc *fileCompiler) ownerConsts(owner ir.TypeID) map[string]*constEntry {
	consts, ok := fc.s.messageConsts[owner]
	if !ok {
		consts = make(map[string]*constEntry)
		fc.s.messageConsts[owner] = consts
	}
	return consts
}
