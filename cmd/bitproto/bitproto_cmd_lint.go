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
	"strconv"

	"github.com/spf13/pflag"
)

type cmdLint struct {
	suppress []string
}

func (*cmdLint) help() *commandHelp {
	return &commandHelp{
		usage:   "lint SCHEMA",
		summary: "Report lint warnings for a schema",
	}
}

func (cmd *cmdLint) flags(flags *pflag.FlagSet) {
	flags.StringSliceVarP(
		&cmd.suppress, "suppress", "s", nil,
		"warning codes to suppress (e.g. 4105)",
	)
}

func (cmd *cmdLint) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(os.Stderr, "usage: bitproto lint SCHEMA")
		return 1
	}

	suppressed := make(map[uint32]bool, len(cmd.suppress))
	for _, code := range cmd.suppress {
		parsed, err := strconv.ParseUint(code, 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid warning code %q\n", code)
			return 1
		}
		suppressed[uint32(parsed)] = true
	}

	result := compileArg(argv[0])
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			printError(result, err)
		}
		return 1
	}
	for _, warn := range result.Warnings {
		if suppressed[warn.Code()] {
			continue
		}
		printWarning(result, warn)
	}
	return 0
}
