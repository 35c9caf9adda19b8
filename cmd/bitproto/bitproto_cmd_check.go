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
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

type cmdCheck struct{}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check SCHEMA",
		summary: "Parse and compile a schema, reporting diagnostics",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {}

func (cmd *cmdCheck) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(os.Stderr, "usage: bitproto check SCHEMA")
		return 1
	}

	result := compileArg(argv[0])
	for _, warn := range result.Warnings {
		printWarning(result, warn)
	}
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			printError(result, err)
		}
		return 1
	}
	return 0
}
