// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Command intrinsics-dude looks up x86 SIMD intrinsics
// in the vendor's intrinsics catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"

	"github.com/HJLebbink/intrinsics-dude-sub001/cmd/check"
	"github.com/HJLebbink/intrinsics-dude-sub001/cmd/complete"
	"github.com/HJLebbink/intrinsics-dude-sub001/cmd/features"
	"github.com/HJLebbink/intrinsics-dude-sub001/cmd/lookup"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/cli"
)

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	log.SetPrefix("")
}

type Command struct {
	Name        string
	Description string
	Func        func(ctx context.Context, w io.Writer, args []string) error
}

var (
	commandsNames = make([]string, 0, 4)
	commandsMap   = make(map[string]*Command)
)

func RegisterCommand(name, description string, fun func(ctx context.Context, w io.Writer, args []string) error) {
	if commandsMap[name] != nil {
		panic("command " + name + " already registered")
	}

	if fun == nil {
		panic("command " + name + " registered with nil implementation")
	}

	commandsNames = append(commandsNames, name)
	commandsMap[name] = &Command{Name: name, Description: description, Func: fun}
}

func init() {
	RegisterCommand("check", "Load the configured catalogs and report any problems", check.Main)
	RegisterCommand("complete", "Print the completions for an intrinsic name prefix", complete.Main)
	RegisterCommand("features", "List the known CPU features", features.Main)
	RegisterCommand("lookup", "Print the documentation for intrinsics or mnemonics", lookup.Main)
}

func main() {
	sort.Strings(commandsNames)

	var help bool
	flag.BoolVar(&help, "h", false, "Show this message and exit.")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage\n  %s COMMAND [OPTIONS]\n\n", cli.Program)
		fmt.Fprintf(os.Stderr, "Commands:\n")
		maxWidth := 0
		for _, name := range commandsNames {
			if maxWidth < len(name) {
				maxWidth = len(name)
			}
		}

		for _, name := range commandsNames {
			cmd := commandsMap[name]
			fmt.Fprintf(os.Stderr, "  %-*s  %s\n", maxWidth, name, cmd.Description)
		}

		os.Exit(2)
	}

	flag.Parse()

	args := flag.Args()
	if help || len(args) == 0 {
		flag.Usage()
	}

	name := args[0]
	cmd, ok := commandsMap[name]
	if !ok {
		flag.Usage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.SetPrefix(name + ": ")
	err := cmd.Func(ctx, os.Stdout, args[1:])
	if err != nil {
		stop()
		log.Fatal(err)
	}
}
