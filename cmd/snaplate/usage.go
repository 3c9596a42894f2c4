package main

import (
	"flag"
	"fmt"
	"strings"
)

// HelpData is implemented by the root command and every subcommand so a
// UsageError can render the right usage text.
type HelpData interface {
	Program() string
	Synopsis() string
	FlagSet() *flag.FlagSet
}

// UsageError renders usage for the command it wraps. It is printed without
// a non-zero exit status; genuine failures use plain errors.
type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "usage: %s\n", e.of.Synopsis())
	if fs := e.of.FlagSet(); fs != nil {
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		if len(flags) > 0 {
			fmt.Fprintf(&b, "\nflags:\n")
			for _, f := range flags {
				def := ""
				if f.DefValue != "" && f.DefValue != "false" {
					def = fmt.Sprintf(" (default %s)", f.DefValue)
				}
				fmt.Fprintf(&b, "  -%s\n        %s%s\n", f.Name, f.Usage, def)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func usageFunc(h HelpData) func() {
	return func() {
		fmt.Println((&UsageError{of: h}).Error())
	}
}
