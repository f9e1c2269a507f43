// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package complete prints the completions offered for
// an intrinsic name prefix.
package complete

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/cli"
)

// Main prints the completion summaries for
// the prefix in args.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("complete", flag.ExitOnError)
	opts := cli.Register(flags)

	var help bool
	var limit int
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.IntVar(&limit, "max", 0, "Print at most the given number of completions (0 for all).")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS] PREFIX\n\n", cli.Program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help || flags.NArg() > 1 {
		flags.Usage()
	}

	_, _, sess, err := opts.Setup(ctx, log.Printf)
	if err != nil {
		return err
	}

	completions := sess.Completions(flags.Arg(0))
	if limit > 0 && len(completions) > limit {
		completions = completions[:limit]
	}

	for _, c := range completions {
		fmt.Fprintln(w, c.Summary)
	}

	return nil
}
