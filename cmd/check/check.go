// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package check loads the configured catalogs and reports
// any problems with them.
package check

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/cli"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/config"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/logging"
)

// Main loads the catalogs, then prints
// statistics and diagnostics.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("check", flag.ExitOnError)
	opts := cli.Register(flags)

	var help, quiet bool
	var minVersion string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.BoolVar(&quiet, "q", false, "Only print the summary, not each diagnostic.")
	flags.StringVar(&minVersion, "min-version", "", "Require at least the given catalog version.")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS]\n\n", cli.Program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help || flags.NArg() != 0 {
		flags.Usage()
	}

	c, err := opts.Config()
	if err != nil {
		return err
	}

	if minVersion != "" {
		c.MinCatalogVersion = minVersion
	}

	// Diagnostics are printed below, so
	// they are not logged as well.
	st, loadErr := cli.OpenStore(ctx, c, logging.Discard())
	if st == nil {
		return loadErr
	}

	if !quiet {
		for _, diag := range st.Diagnostics() {
			fmt.Fprintln(w, diag)
		}
	}

	stats := st.Stats()
	fmt.Fprintf(w, "%s: %d intrinsics, %d mnemonics.\n", st.Source(), len(st.Names()), st.Mnemonics().Len())
	fmt.Fprint(w, stats.String())
	fmt.Fprintf(w, "Reported %d diagnostics.\n", len(st.Diagnostics()))

	var errs []error
	if loadErr != nil {
		errs = append(errs, loadErr)
	}

	if err := config.CheckCatalogVersion(c.MinCatalogVersion, st.Version()); err != nil {
		errs = append(errs, err)
	} else if v := st.Version(); v != "" {
		fmt.Fprintf(w, "Catalog version %s.\n", v)
	}

	return errors.Join(errs...)
}
