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
	"fmt"

	"go.bitproto.dev/bitproto/syntax"
)

// Warning is a non-fatal lint diagnostic (W41xx).
type Warning struct {
	code    uint32
	message string
	span    syntax.Span
	path    string
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Span() syntax.Span {
	return w.span
}

// Path is the canonical path of the file the diagnostic was reported in.
func (w *Warning) Path() string {
	return w.path
}

func warnProtoNameNotSnake(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4100,
		message: fmt.Sprintf("Proto name '%s' should be snake_case", name),
		span:    span,
	}
}

func warnTypeNameNotPascal(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4101,
		message: fmt.Sprintf("Type name '%s' should be PascalCase", name),
		span:    span,
	}
}

func warnShadowsImport(name string, span syntax.Span) *Warning {
	return &Warning{
		code: 4102,
		message: fmt.Sprintf(
			"Declaration '%s' shadows an import alias; the local name wins",
			name,
		),
		span: span,
	}
}

func warnConstNameNotUpperSnake(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4103,
		message: fmt.Sprintf("Constant name '%s' should be UPPER_SNAKE_CASE", name),
		span:    span,
	}
}

func warnEnumItemNotUpperSnake(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4104,
		message: fmt.Sprintf("Enum item '%s' should be UPPER_SNAKE_CASE", name),
		span:    span,
	}
}

func warnEnumMissingZero(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4105,
		message: fmt.Sprintf("Enum '%s' should define a zero value", name),
		span:    span,
	}
}

func warnFieldNameNotSnake(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4106,
		message: fmt.Sprintf("Field name '%s' should be snake_case", name),
		span:    span,
	}
}
