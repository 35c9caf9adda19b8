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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.bitproto.dev/bitproto/compiler"
	"go.bitproto.dev/bitproto/syntax"
)

// osLoader resolves compiler source paths against the filesystem.
type osLoader struct{}

func (osLoader) Load(path string) ([]byte, error) {
	return os.ReadFile(filepath.FromSlash(path))
}

func compileArg(srcPath string) compiler.CompileResult {
	return compiler.CompileFile(
		filepath.ToSlash(srcPath),
		compiler.WithLoader(osLoader{}),
	)
}

func printWarning(result compiler.CompileResult, warn *compiler.Warning) {
	span := warn.Span()
	line, col := syntax.Position(result.Sources[warn.Path()], span)
	fmt.Fprintf(
		os.Stderr, "%s:%d:%d: %v\n",
		warn.Path(), line, col, warn,
	)
}

func printError(result compiler.CompileResult, err *compiler.Error) {
	span := err.Span()
	line, col := syntax.Position(result.Sources[err.Path()], span)
	fmt.Fprintf(
		os.Stderr, "%s:%d:%d: %v\n",
		err.Path(), line, col, err,
	)
}
