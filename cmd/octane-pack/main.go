// Command octane-pack is a thin CLI over the octane, octanezip and dct
// packages: ambient plumbing around the codecs, not a feature surface in
// its own right (spec.md §1/§6 scope the CLI itself out).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

var debug = flag.Bool("debug", false, "format error messages with additional detail")

type cmd struct {
	fn   func(ctx context.Context, args []string) error
	help string
}

func funcmain() error {
	flag.Parse()

	verbs := map[string]cmd{
		"pack":        {pack, "pack <profile> <source-dir> <output.zip>"},
		"unpack-info": {unpackInfo, "unpack-info <profile> <archive.zip>"},
		"dct":         {dctDump, "dct <file.dct>"},
		"dom":         {domConvert, "dom [-endian little|big] <input> <output>"},
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "octane-pack [-flags] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		for _, c := range verbs {
			fmt.Fprintf(os.Stderr, "\t%s\n", c.help)
		}
		os.Exit(2)
	}
	verb, rest := args[0], args[1:]

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		os.Exit(2)
	}
	return v.fn(context.Background(), rest)
}

func main() {
	if err := funcmain(); err != nil {
		if *debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
