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

// Package syntax lexes and parses bitproto schema source files.
//
// The grammar is line-oriented: statements end at a newline or an optional
// semicolon, '//' comments run to end of line, and a trailing ' sigil marks
// a message declaration or array type extensible.
package syntax

import (
	"strconv"
	"strings"
)

// Parse parses one schema source file.
func Parse(src []byte) (*File, error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	return p.parseFile()
}

type parser struct {
	src    []byte
	tokens *Tokens

	haveToken bool
	token     Token
	offset    uint32
	lastEnd   uint32
	err       error
}

func (p *parser) ensureToken() error {
	if p.err != nil {
		return p.err
	}
	if p.haveToken {
		return nil
	}
	if err := p.tokens.Next(&p.token); err != nil {
		p.err = err
		return p.err
	}
	p.haveToken = true
	return nil
}

func (p *parser) text() string {
	return string(p.src[p.offset : p.offset+uint32(p.token.Len)])
}

func (p *parser) tokenSpan() Span {
	return Span{
		start: p.offset,
		len:   uint32(p.token.Len),
	}
}

func (p *parser) consume() {
	p.lastEnd = p.offset + uint32(p.token.Len)
	p.offset = p.lastEnd
	p.haveToken = false
}

func (p *parser) spanFrom(start uint32) Span {
	return Span{start: start, len: p.lastEnd - start}
}

// skipSpace consumes horizontal whitespace within a statement.
func (p *parser) skipSpace() {
	for {
		if err := p.ensureToken(); err != nil {
			return
		}
		if p.token.Kind != T_SPACE {
			return
		}
		p.consume()
	}
}

// skipBlank consumes whitespace, newlines, and comments between statements.
func (p *parser) skipBlank() {
	for {
		if err := p.ensureToken(); err != nil {
			return
		}
		switch p.token.Kind {
		case T_SPACE, T_NEWLINE, T_COMMENT:
			p.consume()
		default:
			return
		}
	}
}

// stmtEnd consumes an optional trailing semicolon.
func (p *parser) stmtEnd() {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return
	}
	if p.token.Kind == T_SEMICOLON {
		p.consume()
	}
}

func (p *parser) sigil(kind TokenKind) {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return
	}
	if p.token.Kind != kind {
		p.err = errExpectedSigil(kind, p.token.Kind, p.text(), p.tokenSpan())
		return
	}
	p.consume()
}

func (p *parser) trySigil(kind TokenKind) bool {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return false
	}
	if p.token.Kind != kind {
		return false
	}
	p.consume()
	return true
}

func (p *parser) tryKeyword(keyword string) bool {
	if err := p.ensureToken(); err != nil {
		return false
	}
	if p.token.Kind != T_IDENT || p.text() != keyword {
		return false
	}
	p.consume()
	return true
}

func (p *parser) ident() *Ident {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	if p.token.Kind != T_IDENT {
		p.err = errExpectedIdent(p.token.Kind, p.text(), p.tokenSpan())
		return nil
	}
	node := &Ident{
		raw:  p.text(),
		span: p.tokenSpan(),
	}
	p.consume()
	return node
}

func (p *parser) intLit() *IntLit {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}

	raw := p.text()
	var value uint64
	var parseErr error
	switch p.token.Kind {
	case T_INT_LIT:
		value, parseErr = strconv.ParseUint(raw, 10, 64)
	case T_HEX_INT_LIT:
		value, parseErr = strconv.ParseUint(raw[2:], 16, 64)
	default:
		p.err = errExpectedIntLit(p.token.Kind, raw, p.tokenSpan())
		return nil
	}
	if parseErr != nil {
		p.err = errIntLitOutOfRange(raw, p.tokenSpan())
		return nil
	}

	node := &IntLit{
		raw:   raw,
		value: value,
		span:  p.tokenSpan(),
	}
	p.consume()
	return node
}

func (p *parser) stringLit() *StringLit {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	if p.token.Kind != T_STRING_LIT {
		p.err = errExpectedStringLit(p.token.Kind, p.text(), p.tokenSpan())
		return nil
	}

	raw := p.text()
	span := p.tokenSpan()
	value, err := unescape(raw, span)
	if err != nil {
		p.err = err
		return nil
	}
	node := &StringLit{
		raw:   raw,
		value: value,
		span:  span,
	}
	p.consume()
	return node
}

func unescape(raw string, span Span) (string, error) {
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for ii := 0; ii < len(body); ii++ {
		c := body[ii]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		ii++
		switch c := body[ii]; c {
		case '"', '\\':
			sb.WriteByte(c)
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		default:
			escSpan := Span{
				start: span.start + 1 + uint32(ii),
				len:   1,
			}
			return "", errInvalidEscape(c, escSpan)
		}
	}
	return sb.String(), nil
}

func (p *parser) dottedName() *DottedName {
	start := p.offset
	first := p.ident()
	if first == nil {
		return nil
	}
	parts := []*Ident{first}
	for p.trySigil(T_DOT) {
		part := p.ident()
		if part == nil {
			return nil
		}
		parts = append(parts, part)
	}
	return &DottedName{
		Parts: parts,
		span:  p.spanFrom(start),
	}
}

func (p *parser) parseFile() (*File, error) {
	p.skipBlank()
	if err := p.ensureToken(); err != nil {
		return nil, err
	}
	if !p.tryKeyword("proto") {
		return nil, errExpectedProto(p.token.Kind, p.text(), p.tokenSpan())
	}
	name := p.ident()
	p.stmtEnd()

	var decls []Decl
	for p.err == nil {
		p.skipBlank()
		if err := p.ensureToken(); err != nil {
			break
		}
		if p.token.Kind == T_EOF {
			break
		}
		stmtStart := p.offset
		if p.tryKeyword("proto") {
			return nil, errDuplicateProto(p.spanFrom(stmtStart))
		}
		decl := p.parseDecl(false)
		if decl == nil {
			break
		}
		decls = append(decls, decl)
	}
	if p.err != nil {
		return nil, p.err
	}

	return &File{
		Name:  name,
		Decls: decls,
		span:  Span{start: 0, len: uint32(len(p.src))},
	}, nil
}

func (p *parser) parseDecl(inMessage bool) Decl {
	if err := p.ensureToken(); err != nil {
		return nil
	}
	start := p.offset

	switch {
	case p.tryKeyword("import"):
		if inMessage {
			p.err = errStatementNotInMessage("import", p.spanFrom(start))
			return nil
		}
		return p.parseImport(start)
	case p.tryKeyword("option"):
		return p.parseOption(start)
	case p.tryKeyword("const"):
		return p.parseConst(start)
	case p.tryKeyword("type"):
		return p.parseAlias(start)
	case p.tryKeyword("enum"):
		return p.parseEnum(start)
	case p.tryKeyword("message"):
		return p.parseMessage(start)
	}

	if inMessage && p.token.Kind == T_IDENT {
		return p.parseField(start)
	}
	p.err = errUnknownStatement(p.token.Kind, p.text(), p.tokenSpan())
	return nil
}

func (p *parser) parseImport(start uint32) Decl {
	var alias *Ident
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	if p.token.Kind == T_IDENT {
		alias = p.ident()
	}
	path := p.stringLit()
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Import{
		Alias: alias,
		Path:  path,
		span:  p.spanFrom(start),
	}
}

func (p *parser) parseOption(start uint32) Decl {
	name := p.dottedName()
	p.sigil(T_EQ)
	value := p.parseValue()
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Option{
		Name:  name,
		Value: value,
		span:  p.spanFrom(start),
	}
}

func (p *parser) parseConst(start uint32) Decl {
	name := p.ident()
	p.sigil(T_EQ)
	value := p.parseValue()
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Const{
		Name:  name,
		Value: value,
		span:  p.spanFrom(start),
	}
}

func (p *parser) parseAlias(start uint32) Decl {
	name := p.ident()
	p.sigil(T_EQ)
	typeExpr := p.parseType()
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Alias{
		Name: name,
		Type: typeExpr,
		span: p.spanFrom(start),
	}
}

func (p *parser) parseEnum(start uint32) Decl {
	name := p.ident()
	p.sigil(T_COLON)
	backing := p.parseType()
	p.sigil(T_OPEN_CURL)

	var items []*EnumItem
	for p.err == nil {
		p.skipBlank()
		if p.trySigil(T_CLOSE_CURL) {
			break
		}
		itemStart := p.offset
		itemName := p.ident()
		p.sigil(T_EQ)
		value := p.intLit()
		p.stmtEnd()
		if p.err != nil {
			return nil
		}
		items = append(items, &EnumItem{
			Name:  itemName,
			Value: value,
			span:  p.spanFrom(itemStart),
		})
	}
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Enum{
		Name:    name,
		Backing: backing,
		Items:   items,
		span:    p.spanFrom(start),
	}
}

func (p *parser) parseMessage(start uint32) Decl {
	name := p.ident()
	extensible := p.trySigil(T_SQUOTE)
	p.sigil(T_OPEN_CURL)

	var decls []Decl
	for p.err == nil {
		p.skipBlank()
		if p.trySigil(T_CLOSE_CURL) {
			break
		}
		decl := p.parseDecl(true)
		if decl == nil {
			return nil
		}
		decls = append(decls, decl)
	}
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Message{
		Name:       name,
		Extensible: extensible,
		Decls:      decls,
		span:       p.spanFrom(start),
	}
}

func (p *parser) parseField(start uint32) Decl {
	typeExpr := p.parseType()
	name := p.ident()
	p.sigil(T_EQ)
	number := p.intLit()
	p.stmtEnd()
	if p.err != nil {
		return nil
	}
	return &Field{
		Type:   typeExpr,
		Name:   name,
		Number: number,
		span:   p.spanFrom(start),
	}
}

func (p *parser) parseType() TypeExpr {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	if p.token.Kind != T_IDENT {
		p.err = errExpectedType(p.token.Kind, p.text(), p.tokenSpan())
		return nil
	}

	start := p.offset
	word := p.text()
	wordSpan := p.tokenSpan()
	p.consume()

	var elem TypeExpr
	switch {
	case word == "bool":
		elem = &BaseType{Kind: BaseBool, Bits: 1, span: wordSpan}
	case word == "byte":
		elem = &BaseType{Kind: BaseByte, Bits: 8, span: wordSpan}
	case isTypeWord(word, "uint"):
		bits, ok := typeWidth(word, "uint")
		if !ok {
			p.err = errInvalidTypeWidth(word, wordSpan)
			return nil
		}
		elem = &BaseType{Kind: BaseUint, Bits: bits, span: wordSpan}
	case isTypeWord(word, "int"):
		bits, ok := typeWidth(word, "int")
		if !ok {
			p.err = errInvalidTypeWidth(word, wordSpan)
			return nil
		}
		elem = &BaseType{Kind: BaseInt, Bits: bits, span: wordSpan}
	default:
		parts := []*Ident{{raw: word, span: wordSpan}}
		for p.trySigil(T_DOT) {
			part := p.ident()
			if part == nil {
				return nil
			}
			parts = append(parts, part)
		}
		elem = &TypeName{Parts: parts, span: p.spanFrom(start)}
	}

	if !p.trySigil(T_OPEN_SQUARE) {
		if p.trySigil(T_SQUOTE) {
			setTypeExt(elem)
		}
		return elem
	}

	length := p.parseExpr()
	p.sigil(T_CLOSE_SQUARE)
	if p.err != nil {
		return nil
	}
	arr := &ArrayType{
		Elem: elem,
		Len:  length,
		span: p.spanFrom(start),
	}
	if p.trySigil(T_OPEN_SQUARE) {
		p.err = errNestedArray(p.spanFrom(start))
		return nil
	}
	if p.trySigil(T_SQUOTE) {
		arr.Ext = true
		arr.span = p.spanFrom(start)
	}
	return arr
}

func setTypeExt(t TypeExpr) {
	switch t := t.(type) {
	case *BaseType:
		t.Ext = true
	case *TypeName:
		t.Ext = true
	case *ArrayType:
		t.Ext = true
	}
}

// isTypeWord reports whether word is prefix followed by one or more digits.
func isTypeWord(word, prefix string) bool {
	if !strings.HasPrefix(word, prefix) || len(word) == len(prefix) {
		return false
	}
	for _, c := range word[len(prefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func typeWidth(word, prefix string) (int, bool) {
	bits, err := strconv.Atoi(word[len(prefix):])
	if err != nil || bits < 1 || bits > 64 {
		return 0, false
	}
	return bits, true
}

// parseValue parses a constant or option value: a string literal, a boolean
// literal, or an integer constant expression.
func (p *parser) parseValue() Node {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	switch p.token.Kind {
	case T_STRING_LIT:
		return p.stringLit()
	case T_IDENT:
		switch p.text() {
		case "true", "yes":
			node := &BoolLit{raw: p.text(), value: true, span: p.tokenSpan()}
			p.consume()
			return node
		case "false", "no":
			node := &BoolLit{raw: p.text(), value: false, span: p.tokenSpan()}
			p.consume()
			return node
		}
	}
	return p.parseExpr()
}

// parseExpr parses an integer constant expression with the usual precedence:
// '*' and '/' bind tighter than '+' and '-'.
func (p *parser) parseExpr() Node {
	start := p.offset
	x := p.parseTerm()
	for p.err == nil {
		var op byte
		if p.trySigil(T_PLUS) {
			op = '+'
		} else if p.trySigil(T_MINUS) {
			op = '-'
		} else {
			break
		}
		y := p.parseTerm()
		if p.err != nil {
			return nil
		}
		x = &BinaryExpr{Op: op, X: x, Y: y, span: p.spanFrom(start)}
	}
	return x
}

func (p *parser) parseTerm() Node {
	start := p.offset
	x := p.parseFactor()
	for p.err == nil {
		var op byte
		if p.trySigil(T_STAR) {
			op = '*'
		} else if p.trySigil(T_SLASH) {
			op = '/'
		} else {
			break
		}
		y := p.parseFactor()
		if p.err != nil {
			return nil
		}
		x = &BinaryExpr{Op: op, X: x, Y: y, span: p.spanFrom(start)}
	}
	return x
}

func (p *parser) parseFactor() Node {
	p.skipSpace()
	if err := p.ensureToken(); err != nil {
		return nil
	}
	switch p.token.Kind {
	case T_INT_LIT, T_HEX_INT_LIT:
		if node := p.intLit(); node != nil {
			return node
		}
		return nil
	case T_OPEN_PAREN:
		p.consume()
		node := p.parseExpr()
		p.sigil(T_CLOSE_PAREN)
		if p.err != nil {
			return nil
		}
		return node
	case T_IDENT:
		return p.dottedName()
	}
	p.err = errExpectedValue(p.token.Kind, p.text(), p.tokenSpan())
	return nil
}
