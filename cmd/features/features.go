// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package features lists the CPU feature flags.
package features

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/cli"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
)

// Main prints the known CPU features, and
// whether the running CPU and the current
// settings enable each one.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("features", flag.ExitOnError)
	opts := cli.Register(flags)

	var help, host bool
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.BoolVar(&host, "host", false, "Only print the features of the running CPU.")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS]\n\n", cli.Program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help || flags.NArg() != 0 {
		flags.Usage()
	}

	hostFeatures := intrinsic.HostFeatures()
	if host {
		fmt.Fprintln(w, hostFeatures)
		return nil
	}

	c, err := opts.Config()
	if err != nil {
		return err
	}

	enabled, err := c.EnabledFeatures()
	if err != nil {
		return err
	}

	return writeTable(w, intrinsic.Features(), hostFeatures, enabled)
}

// writeTable prints one row per feature,
// with trailing spaces removed.
func writeTable(w io.Writer, features []intrinsic.FeatureInfo, host, enabled intrinsic.CpuFeature) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Feature", "Name", "Host", "Enabled"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, info := range features {
		table.Append([]string{info.Display, info.Name, yesNo(host.Has(info.Feature)), yesNo(enabled.Has(info.Feature))})
	}

	table.Render()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return ""
}
