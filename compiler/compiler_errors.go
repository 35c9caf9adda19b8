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
	"errors"
	"fmt"

	"go.bitproto.dev/bitproto/syntax"
)

// Error is a semantic (E3xxx) diagnostic, or a lexical/syntactic diagnostic
// (E1xxx/E2xxx) re-reported from the parse of a source file.
type Error struct {
	code    uint32
	message string
	span    syntax.Span
	path    string
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

func (err *Error) Span() syntax.Span {
	return err.span
}

// Path is the canonical path of the file the diagnostic was reported in.
func (err *Error) Path() string {
	return err.path
}

// errFromSyntax re-reports a lexical or syntactic error against the file it
// was parsed from, preserving its code and span.
func errFromSyntax(path string, err error) *Error {
	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		return &Error{
			code:    synErr.Code(),
			message: synErr.Message(),
			span:    synErr.Span(),
			path:    path,
		}
	}
	return &Error{
		code:    2999,
		message: err.Error(),
		path:    path,
	}
}

func errFileNotFound(path string) error {
	return fmt.Errorf("file not found: %s", path)
}

func errDuplicateName(name string, span syntax.Span) *Error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Duplicate name '%s' in scope", name),
		span:    span,
	}
}

func errUnresolvedType(name string, span syntax.Span) *Error {
	return &Error{
		code:    3003,
		message: fmt.Sprintf("Type '%s' is not defined", name),
		span:    span,
	}
}

func errNotAType(name string, span syntax.Span) *Error {
	return &Error{
		code:    3004,
		message: fmt.Sprintf("Name '%s' does not refer to a type", name),
		span:    span,
	}
}

func errUnresolvedConst(name string, span syntax.Span) *Error {
	return &Error{
		code:    3005,
		message: fmt.Sprintf("Constant '%s' is not defined", name),
		span:    span,
	}
}

func errImportNotFound(path, importerPath string, span syntax.Span) *Error {
	return &Error{
		code:    3101,
		message: fmt.Sprintf("Imported file %q not found", path),
		span:    span,
		path:    importerPath,
	}
}

func errNoLoader(path, importerPath string, span syntax.Span) *Error {
	return &Error{
		code:    3104,
		message: fmt.Sprintf("No loader configured to read %q", path),
		span:    span,
		path:    importerPath,
	}
}

func errImportAliasConflict(alias string, span syntax.Span) *Error {
	return &Error{
		code:    3102,
		message: fmt.Sprintf("Import alias '%s' is already in use", alias),
		span:    span,
	}
}

func errImportCycle(path, importerPath string, span syntax.Span) *Error {
	return &Error{
		code:    3103,
		message: fmt.Sprintf("Import of %q forms a cycle", path),
		span:    span,
		path:    importerPath,
	}
}

func errExpectedIntegerValue(span syntax.Span) *Error {
	return &Error{
		code:    3201,
		message: "Expected an integer constant expression",
		span:    span,
	}
}

func errIntValueOverflow(value uint64, span syntax.Span) *Error {
	return &Error{
		code:    3202,
		message: fmt.Sprintf("Integer value %d overflows evaluation width", value),
		span:    span,
	}
}

func errNotIntegerConst(name string, span syntax.Span) *Error {
	return &Error{
		code:    3203,
		message: fmt.Sprintf("Constant '%s' is not an integer", name),
		span:    span,
	}
}

func errDivisionByZero(span syntax.Span) *Error {
	return &Error{
		code:    3204,
		message: "Division by zero in constant expression",
		span:    span,
	}
}

func errCircularConst(name string, span syntax.Span) *Error {
	return &Error{
		code:    3205,
		message: fmt.Sprintf("Constant '%s' references itself", name),
		span:    span,
	}
}

func errCyclicMessage(name string, span syntax.Span) *Error {
	return &Error{
		code:    3301,
		message: fmt.Sprintf("Message '%s' contains itself", name),
		span:    span,
	}
}

func errMessageTooLarge(name string, nbits int, span syntax.Span) *Error {
	return &Error{
		code: 3302,
		message: fmt.Sprintf(
			"Message '%s' is %d bits; the limit is 65535", name, nbits,
		),
		span: span,
	}
}

func errMessageExceedsMaxBytes(
	name string,
	nbytes, maxBytes int,
	span syntax.Span,
) *Error {
	return &Error{
		code: 3303,
		message: fmt.Sprintf(
			"Message '%s' is %d bytes; max_bytes is %d", name, nbytes, maxBytes,
		),
		span: span,
	}
}

func errEnumExtensible(name string, span syntax.Span) *Error {
	return &Error{
		code:    3401,
		message: fmt.Sprintf("Enum '%s' cannot be extensible", name),
		span:    span,
	}
}

func errAliasTargetNamed(name string, span syntax.Span) *Error {
	return &Error{
		code: 3402,
		message: fmt.Sprintf(
			"Alias '%s' must target a bool, byte, uint, int, or array type",
			name,
		),
		span: span,
	}
}

func errEnumBackingNotUint(name string, span syntax.Span) *Error {
	return &Error{
		code:    3403,
		message: fmt.Sprintf("Enum '%s' must be backed by a uint type", name),
		span:    span,
	}
}

func errEnumValueOverflow(
	name string,
	value uint64,
	bits int,
	span syntax.Span,
) *Error {
	return &Error{
		code: 3404,
		message: fmt.Sprintf(
			"Enum value %s=%d does not fit in %d bits", name, value, bits,
		),
		span: span,
	}
}

func errDuplicateEnumItem(name string, span syntax.Span) *Error {
	return &Error{
		code:    3405,
		message: fmt.Sprintf("Duplicate enum item '%s'", name),
		span:    span,
	}
}

func errDuplicateEnumValue(
	name, prevName string,
	value uint64,
	span syntax.Span,
) *Error {
	return &Error{
		code: 3406,
		message: fmt.Sprintf(
			"Enum value %d of '%s' duplicates '%s'", value, name, prevName,
		),
		span: span,
	}
}

func errTypeNotExtensible(span syntax.Span) *Error {
	return &Error{
		code:    3407,
		message: "Only message declarations and array types may be extensible",
		span:    span,
	}
}

func errFieldNumberOutOfRange(
	name string,
	number uint64,
	span syntax.Span,
) *Error {
	return &Error{
		code: 3501,
		message: fmt.Sprintf(
			"Field number %d of '%s' is out of range 1..255", number, name,
		),
		span: span,
	}
}

func errDuplicateFieldNumber(
	name, prevName string,
	number int,
	span syntax.Span,
) *Error {
	return &Error{
		code: 3502,
		message: fmt.Sprintf(
			"Field number %d of '%s' duplicates '%s'", number, name, prevName,
		),
		span: span,
	}
}

func errArrayCapOutOfRange(cap int64, span syntax.Span) *Error {
	return &Error{
		code: 3503,
		message: fmt.Sprintf(
			"Array capacity %d is out of range 1..65535", cap,
		),
		span: span,
	}
}

func errUnknownOption(name string, span syntax.Span) *Error {
	return &Error{
		code:    3601,
		message: fmt.Sprintf("Unknown option '%s'", name),
		span:    span,
	}
}

func errOptionValueType(name, want string, span syntax.Span) *Error {
	return &Error{
		code: 3602,
		message: fmt.Sprintf(
			"Option '%s' expects a %s value", name, want,
		),
		span: span,
	}
}

func errOptionValueRange(name string, value int64, span syntax.Span) *Error {
	return &Error{
		code:    3603,
		message: fmt.Sprintf("Option '%s' value %d is out of range", name, value),
		span:    span,
	}
}
