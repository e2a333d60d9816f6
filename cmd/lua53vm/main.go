// Command lua53vm loads a precompiled Lua 5.3 binary chunk, optionally
// disassembles it, and runs its main function on the register-based
// virtual machine in package luavm.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

var initLogOnce sync.Once

func initLogging(verbose bool) {
	initLogOnce.Do(func() {
		minLevel := log.Info
		if verbose {
			minLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLevel,
			Output: log.New(os.Stderr, "lua53vm: ", log.StdFlags, nil),
		})
	})
}

type options struct {
	inputFilename string
	list          int
	parseOnly     bool
	verbose       bool
}

func newRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "lua53vm FILE",
		Short:                 "decode and run a precompiled Lua 5.3 chunk",
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(options)
	c.Flags().CountVarP(&opts.list, "list", "l", "list the chunk's disassembly (repeat to include nested functions)")
	c.Flags().BoolVarP(&opts.parseOnly, "parse-only", "p", false, "decode (and list, with -l) only; do not execute")
	c.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "show debug-level logging")
	c.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(opts.verbose)
		return nil
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.inputFilename = args[0]
		return run(cmd.Context(), opts)
	}
	return c
}

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "lua53vm:", err)
		os.Exit(1)
	}
}
