package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// HelpData is implemented by every command so usage errors can render a
// consistent help block.
type HelpData interface {
	Program() string
	Synopsis() string
	FlagSet() *flag.FlagSet
}

// UsageError carries the command whose usage should be printed. It renders
// help instead of an error message and exits zero.
type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "usage: %s %s\n", e.of.Program(), e.of.Synopsis())
	if fs := e.of.FlagSet(); fs != nil {
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		if len(flags) > 0 {
			b.WriteString("\nflags:\n")
			for _, f := range flags {
				fmt.Fprintf(&b, "  -%s", f.Name)
				if f.DefValue != "" && f.DefValue != "false" {
					fmt.Fprintf(&b, " (default %s)", f.DefValue)
				}
				fmt.Fprintf(&b, "\n        %s\n", f.Usage)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func usageFunc(of HelpData) func() {
	return func() {
		fmt.Fprintln(os.Stderr, (&UsageError{of: of}).Error())
	}
}
