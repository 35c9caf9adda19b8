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
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)
)

type Token struct {
	Len  uint16
	Kind TokenKind
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT

	T_SEMICOLON
	T_SQUOTE
	T_COLON
	T_DOT
	T_EQ

	T_PLUS
	T_MINUS
	T_STAR
	T_SLASH

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_INT_LIT
	T_HEX_INT_LIT

	T_STRING_LIT

	T_IDENT
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_SPACE:
		return "SPACE"
	case T_NEWLINE:
		return "NEWLINE"
	case T_COMMENT:
		return "COMMENT"
	case T_SEMICOLON:
		return "SEMICOLON"
	case T_SQUOTE:
		return "SQUOTE"
	case T_COLON:
		return "COLON"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_PLUS:
		return "PLUS"
	case T_MINUS:
		return "MINUS"
	case T_STAR:
		return "STAR"
	case T_SLASH:
		return "SLASH"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_INT_LIT:
		return "INT_LIT"
	case T_HEX_INT_LIT:
		return "HEX_INT_LIT"
	case T_STRING_LIT:
		return "STRING_LIT"
	case T_IDENT:
		return "IDENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8()
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{
			Kind: T_EOF,
		}
		return nil
	}

	c := t.src[0]
	var kind TokenKind
	switch c {
	case '\t', ' ':
		return t.nextSpace(token)
	case '\n':
		kind = T_NEWLINE
		goto len1
	case ';':
		kind = T_SEMICOLON
		goto len1
	case '\'':
		kind = T_SQUOTE
		goto len1
	case ':':
		kind = T_COLON
		goto len1
	case '.':
		kind = T_DOT
		goto len1
	case '=':
		kind = T_EQ
		goto len1
	case '+':
		kind = T_PLUS
		goto len1
	case '-':
		kind = T_MINUS
		goto len1
	case '*':
		kind = T_STAR
		goto len1
	case '{':
		kind = T_OPEN_CURL
		goto len1
	case '}':
		kind = T_CLOSE_CURL
		goto len1
	case '(':
		kind = T_OPEN_PAREN
		goto len1
	case ')':
		kind = T_CLOSE_PAREN
		goto len1
	case '[':
		kind = T_OPEN_SQUARE
		goto len1
	case ']':
		kind = T_CLOSE_SQUARE
		goto len1
	case '/':
		if len(t.src) >= 2 && t.src[1] == '/' {
			return t.nextComment(token)
		}
		kind = T_SLASH
		goto len1
	case '"':
		return t.nextStringLit(token)
	case '\r':
		if len(t.src) >= 2 && t.src[1] == '\n' {
			*token = Token{
				Kind: T_NEWLINE,
				Len:  2,
			}
			t.offset += 2
			t.src = t.src[2:]
			return nil
		}
		// A stray carriage return is plain whitespace.
		return t.nextSpace(token)
	default:
		goto big
	}

len1:
	*token = Token{
		Kind: kind,
		Len:  1,
	}
	t.offset += 1
	t.src = t.src[1:]
	return nil

big:
	if c >= '0' && c <= '9' {
		return t.nextIntLit(token)
	}

	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
		return t.nextIdent(token)
	}

	r, _ := utf8.DecodeRune(t.src)
	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

func (t *Tokens) nextSpace(token *Token) error {
	src := t.src
	for len(src) > 0 {
		if src[0] == ' ' || src[0] == '\t' {
			src = src[1:]
			continue
		}
		if src[0] == '\r' && (len(src) < 2 || src[1] != '\n') {
			src = src[1:]
			continue
		}
		break
	}
	tokenLen, err := t.checkTokenLen(len(t.src) - len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_SPACE,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = src
	return nil
}

func (t *Tokens) nextComment(token *Token) error {
	src := t.src
	for ii, c := range src {
		if c == '\n' || c == '\r' {
			src = src[:ii]
			break
		}
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: T_COMMENT,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) nextIntLit(token *Token) error {
	src := t.src
	kind := T_INT_LIT

	if src[0] == '0' && len(src) >= 2 && (src[1] == 'x' || src[1] == 'X') {
		kind = T_HEX_INT_LIT
		digits := 0
		invalid := false
		rest := src[2:]
		for ii, c := range rest {
			if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f') {
				digits++
				continue
			}
			if (c >= 'G' && c <= 'Z') || (c >= 'g' && c <= 'z') || c == '_' {
				invalid = true
				continue
			}
			rest = rest[:ii]
			break
		}
		if digits == 0 || invalid {
			return errIntLitInvalid(t.offset, src[:2+len(rest)])
		}
		src = src[:2+len(rest)]
	} else {
		invalid := false
		for ii, c := range src {
			if c >= '0' && c <= '9' {
				continue
			}
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
				invalid = true
				continue
			}
			src = src[:ii]
			break
		}
		if invalid {
			return errIntLitInvalid(t.offset, src)
		}
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: kind,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) nextStringLit(token *Token) error {
	src := t.src
	escaped := false
	ok := false
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		if c == '"' {
			src = t.src[:ii+1]
			ok = true
			break
		}
		if c == '\n' || (c == '\r' && ii+1 < len(t.src) && t.src[ii+1] == '\n') {
			return errStringLitUnterminated(t.offset, uint32(ii))
		}
		if (c <= 0x1F || c == 0x7F) && c != '\t' {
			return errForbiddenControlCharacter(t.offset+uint32(ii), c)
		}
		escaped = c == '\\'
	}
	if !ok {
		return errStringLitUnterminated(t.offset, uint32(len(src)))
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: T_STRING_LIT,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) nextIdent(token *Token) error {
	src := t.src
	for ii, c := range src {
		if ii == 0 {
			continue
		}
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		src = src[:ii]
		break
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: T_IDENT,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) checkTokenLen(len int) (uint16, error) {
	if len > maxTokenLen {
		return 0, errTokenTooLong(t.offset, len)
	}
	return uint16(len), nil
}
