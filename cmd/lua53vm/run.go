package main

import (
	"context"
	"fmt"
	"os"

	"zombiezen.com/go/log"

	"github.com/gopher53/lua53vm/internal/luacode"
	"github.com/gopher53/lua53vm/internal/luavalue"
	"github.com/gopher53/lua53vm/internal/luavm"
)

func run(ctx context.Context, opts *options) error {
	data, err := os.ReadFile(opts.inputFilename)
	if err != nil {
		return err
	}

	proto, err := luacode.Undump(data)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.inputFilename, err)
	}
	log.Debugf(ctx, "decoded %s: %d instructions, %d constants", opts.inputFilename, len(proto.Code), len(proto.Constants))

	if opts.list > 0 {
		printPrototype(os.Stdout, proto, opts.list > 1)
	}
	if opts.parseOnly {
		return nil
	}

	results, err := luavm.Run(proto)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.inputFilename, err)
	}
	printResults(os.Stdout, results)
	return nil
}

func printResults(w *os.File, results []luavalue.Value) {
	for _, v := range results {
		fmt.Fprintln(w, displayString(v))
	}
}

// displayString renders v the way Lua's tostring() does: numbers and
// strings print their value, nil and booleans print their literal
// spelling, and tables print a type-and-identity placeholder since this
// core has no string library to format one more richly.
func displayString(v luavalue.Value) string {
	if s, ok := luavalue.ToDisplayString(v); ok {
		return s
	}
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%s: %p", luavalue.TypeName(v), v)
	}
}
