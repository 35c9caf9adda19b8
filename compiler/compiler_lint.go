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

// Lint rules check naming conventions and enum hygiene. Lint diagnostics are
// warnings: they never fail a compilation.

func (fc *fileCompiler) lint() {
	if !isSnakeCase(fc.file.Name.Get()) {
		fc.warn(warnProtoNameNotSnake(fc.file.Name.Get(), fc.file.Name.Span()))
	}

	for _, pending := range fc.enums {
		name := pending.node.Name
		if !isPascalCase(name.Get()) {
			fc.warn(warnTypeNameNotPascal(name.Get(), name.Span()))
		}
		hasZero := false
		for _, item := range pending.node.Items {
			if !isUpperSnakeCase(item.Name.Get()) {
				fc.warn(warnEnumItemNotUpperSnake(
					item.Name.Get(), item.Name.Span(),
				))
			}
			if item.Value.Value() == 0 {
				hasZero = true
			}
		}
		if !hasZero {
			fc.warn(warnEnumMissingZero(name.Get(), name.Span()))
		}
	}

	for _, pending := range fc.aliases {
		name := pending.node.Name
		if !isPascalCase(name.Get()) {
			fc.warn(warnTypeNameNotPascal(name.Get(), name.Span()))
		}
	}

	for _, pending := range fc.messages {
		name := pending.node.Name
		if !isPascalCase(name.Get()) {
			fc.warn(warnTypeNameNotPascal(name.Get(), name.Span()))
		}
		for _, field := range pending.fields {
			if !isSnakeCase(field.Name.Get()) {
				fc.warn(warnFieldNameNotSnake(
					field.Name.Get(), field.Name.Span(),
				))
			}
		}
	}

	for _, entry := range fc.consts {
		name := entry.node.Name
		if !isUpperSnakeCase(name.Get()) {
			fc.warn(warnConstNameNotUpperSnake(name.Get(), name.Span()))
		}
	}
}

func isSnakeCase(name string) bool {
	for _, c := range name {
		ok := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return len(name) > 0
}

func isUpperSnakeCase(name string) bool {
	for _, c := range name {
		ok := (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return len(name) > 0
}

func isPascalCase(name string) bool {
	if len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for _, c := range name {
		ok := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
