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
)

// Error is a lexical (E1xxx) or syntactic (E2xxx) diagnostic.
type Error struct {
	code    uint32
	message string
	span    Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() Span {
	return err.span
}

func errSourceTooLong(srcLen int) error {
	return &Error{
		code:    1000,
		message: fmt.Sprintf("Source too long (%d bytes)", srcLen),
	}
}

func errInvalidUtf8() error {
	return &Error{
		code:    1001,
		message: "Source is not valid UTF-8",
	}
}

func errForbiddenControlCharacter(offset uint32, c byte) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Forbidden control character 0x%02X", c),
		span:    Span{start: offset, len: 1},
	}
}

func errUnexpectedCharacter(offset uint32, r rune) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Unexpected character %q", r),
		span:    Span{start: offset, len: 1},
	}
}

func errStringLitUnterminated(offset, len uint32) error {
	return &Error{
		code:    1004,
		message: "Unterminated string literal",
		span:    Span{start: offset, len: len},
	}
}

func errInvalidEscape(c byte, span Span) error {
	return &Error{
		code:    1005,
		message: fmt.Sprintf("Invalid escape '\\%c' in string literal", c),
		span:    span,
	}
}

func errIntLitInvalid(offset uint32, raw []byte) error {
	return &Error{
		code:    1006,
		message: fmt.Sprintf("Invalid integer literal %q", raw),
		span:    Span{start: offset, len: uint32(len(raw))},
	}
}

func errTokenTooLong(offset uint32, len int) error {
	return &Error{
		code:    1007,
		message: fmt.Sprintf("Token too long (%d bytes)", len),
		span:    Span{start: offset, len: 1},
	}
}

func errIntLitOutOfRange(raw string, span Span) error {
	return &Error{
		code:    1008,
		message: fmt.Sprintf("Integer literal %s does not fit in 64 bits", raw),
		span:    span,
	}
}

func errInvalidTypeWidth(word string, span Span) error {
	return &Error{
		code:    1009,
		message: fmt.Sprintf("Invalid bit width in type %q (expected 1..64)", word),
		span:    span,
	}
}

func errExpectedSigil(want TokenKind, got TokenKind, token string, span Span) error {
	return &Error{
		code:    2000,
		message: fmt.Sprintf("Expected %v, got %v %q", want, got, token),
		span:    span,
	}
}

func errExpectedIdent(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2001,
		message: fmt.Sprintf("Expected an identifier, got %v %q", got, token),
		span:    span,
	}
}

func errExpectedProto(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2002,
		message: fmt.Sprintf(
			"Expected a 'proto' declaration, got %v %q", got, token,
		),
		span: span,
	}
}

func errExpectedIntLit(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2003,
		message: fmt.Sprintf("Expected an integer literal, got %v %q", got, token),
		span:    span,
	}
}

func errExpectedStringLit(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2004,
		message: fmt.Sprintf("Expected a string literal, got %v %q", got, token),
		span:    span,
	}
}

func errNestedArray(span Span) error {
	return &Error{
		code:    2005,
		message: "Array of arrays is not supported",
		span:    span,
	}
}

func errUnknownStatement(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2006,
		message: fmt.Sprintf("Unknown statement starting at %v %q", got, token),
		span:    span,
	}
}

func errExpectedType(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2007,
		message: fmt.Sprintf("Expected a type, got %v %q", got, token),
		span:    span,
	}
}

func errExpectedValue(got TokenKind, token string, span Span) error {
	return &Error{
		code:    2008,
		message: fmt.Sprintf("Expected a value, got %v %q", got, token),
		span:    span,
	}
}

func errDuplicateProto(span Span) error {
	return &Error{
		code:    2009,
		message: "Duplicate 'proto' declaration",
		span:    span,
	}
}

func errStatementNotInMessage(keyword string, span Span) error {
	return &Error{
		code:    2010,
		message: fmt.Sprintf("'%s' statement is not allowed inside a message", keyword),
		span:    span,
	}
}
