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
	"strings"

	"github.com/spf13/pflag"

	"go.bitproto.dev/bitproto"
	"go.bitproto.dev/bitproto/ir"
)

type cmdJson struct{}

func (*cmdJson) help() *commandHelp {
	return &commandHelp{
		usage:   "json SCHEMA MESSAGE DATA",
		summary: "Decode an encoded message and print it as JSON",
	}
}

func (cmd *cmdJson) flags(flags *pflag.FlagSet) {}

func (cmd *cmdJson) run(ctx context.Context, argv []string) int {
	if len(argv) != 3 {
		fmt.Fprintln(os.Stderr, "usage: bitproto json SCHEMA MESSAGE DATA")
		return 1
	}

	result := compileArg(argv[0])
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			printError(result, err)
		}
		return 1
	}

	messageName := argv[1]
	id, ok := result.Proto.LookupMessage(strings.Split(messageName, ".")...)
	if !ok {
		fmt.Fprintf(os.Stderr, "no message named %q\n", messageName)
		return 1
	}
	descriptor := ir.Descriptor(result.Proto.Arena, id)

	encoded, err := os.ReadFile(argv[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(encoded) < descriptor.ByteSize() {
		fmt.Fprintf(
			os.Stderr, "%s holds %d bytes; message %q needs %d\n",
			argv[2], len(encoded), messageName, descriptor.ByteSize(),
		)
		return 1
	}

	msg := make([]byte, descriptor.Size)
	descriptor.Decode(msg, encoded)

	out := make([]byte, jsonBufferSize(descriptor))
	n := bitproto.FormatJSON(descriptor, msg, out)
	if _, err := os.Stdout.Write(out[:n]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println()
	return 0
}

// jsonBufferSize bounds the rendered length of a value: up to 20 digits per
// scalar, plus punctuation and quoted field names.
func jsonBufferSize(t *bitproto.Type) int {
	switch t.Kind {
	case bitproto.KindAlias:
		return jsonBufferSize(t.Elem)
	case bitproto.KindArray:
		return 2 + t.Cap*(jsonBufferSize(t.Elem)+1)
	case bitproto.KindMessage:
		size := 2
		for ii := range t.Fields {
			size += len(t.Fields[ii].Name) + 4
			size += jsonBufferSize(t.Fields[ii].Type) + 1
		}
		return size
	default:
		return 20
	}
}
