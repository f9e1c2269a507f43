// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package lookup prints the documentation for intrinsics
// and instruction mnemonics.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/cli"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/store"
)

// Main prints the documentation for each
// intrinsic or mnemonic named in args.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("lookup", flag.ExitOnError)
	opts := cli.Register(flags)

	var help, asJSON bool
	var width int
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.BoolVar(&asJSON, "json", false, "Print the catalog records as JSON.")
	flags.IntVar(&width, "width", -1, "Wrap descriptions to the given width (default from config).")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS] NAME...\n\n", cli.Program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help || flags.NArg() == 0 {
		flags.Usage()
	}

	c, st, sess, err := opts.Setup(ctx, log.Printf)
	if err != nil {
		return err
	}

	if width >= 0 {
		c.WrapWidth = width
		sess, err = cli.NewSession(st, c)
		if err != nil {
			return err
		}
	}

	var errs []error
	for i, name := range flags.Args() {
		if i > 0 && !asJSON {
			// Add a spacer.
			fmt.Fprintln(w)
		}

		if x, ok := intrinsic.ParseIntrinsic(name); ok && st.HasEntry(x) {
			if asJSON {
				err = printJSON(w, st.Variants(x))
				if err != nil {
					return err
				}

				continue
			}

			doc, _ := sess.QuickInfo(name)
			fmt.Fprintln(w, doc)
			if ref := st.DocumentationReference(x); ref != "" {
				fmt.Fprintf(w, "\nReference: %s\n", ref)
			}

			continue
		}

		if printMnemonic(w, st, name) {
			continue
		}

		errs = append(errs, fmt.Errorf("unknown intrinsic or mnemonic %q", name))
	}

	return errors.Join(errs...)
}

func printJSON(w io.Writer, records []*intrinsic.Record) error {
	data, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %v", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", data)

	return err
}

// printMnemonic prints what is known about
// an instruction mnemonic, returning false
// if nothing is.
func printMnemonic(w io.Writer, st *store.Store, name string) bool {
	table := st.Mnemonics()
	intrinsics := st.IntrinsicsFor(name)
	if !table.Has(name) && len(intrinsics) == 0 {
		return false
	}

	fmt.Fprintln(w, strings.ToUpper(name))
	if desc := table.Description(name); desc != "" {
		fmt.Fprintf(w, "  %s\n", desc)
	}

	if ref := table.Reference(name); ref != "" {
		fmt.Fprintf(w, "  Reference: %s\n", ref)
	}

	for _, sig := range table.Signatures(name) {
		fmt.Fprintf(w, "  %s", sig.SignatureDoc)
		if sig.Arch != "" {
			fmt.Fprintf(w, "  [%s]", sig.Arch)
		}

		fmt.Fprintln(w)
		if sig.Documentation != "" {
			fmt.Fprintf(w, "      %s\n", sig.Documentation)
		}
	}

	if len(intrinsics) != 0 {
		names := make([]string, len(intrinsics))
		for i, x := range intrinsics {
			names[i] = x.String()
		}

		fmt.Fprintf(w, "  Intrinsics: %s\n", strings.Join(names, ", "))
	}

	return true
}
