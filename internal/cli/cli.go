// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package cli contains the setup shared by the
// intrinsics-dude subcommands: the common flags,
// loading the configuration, and loading the
// catalogs it names.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/catalog"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/config"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/session"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/store"
)

// Program is the name of the running binary.
var Program = filepath.Base(os.Args[0])

// Options holds the flags common to every
// subcommand.
type Options struct {
	flags *flag.FlagSet

	ConfigPath string
	Catalog    string
	Features   string
	HideMMX    bool
	LogLevel   string
}

// Register adds the common flags to flags.
func Register(flags *flag.FlagSet) *Options {
	o := &Options{flags: flags}
	flags.StringVar(&o.ConfigPath, "config", "", "Load settings from the given TOML file.")
	flags.StringVar(&o.Catalog, "catalog", "", "Load the intrinsics catalog at the given path.")
	flags.StringVar(&o.Features, "features", "", "Enable the given comma-separated CPU features (or \"host\").")
	flags.BoolVar(&o.HideMMX, "hide-mmx", false, "Hide intrinsics that use MMX registers.")
	flags.StringVar(&o.LogLevel, "log-level", "", "Log catalog diagnostics at or above the given level.")

	return o
}

// Config returns the settings from the config
// file, the environment, and any flags that
// were set, in increasing precedence.
func (o *Options) Config() (*config.Config, error) {
	c := config.Default()
	if o.ConfigPath != "" {
		var err error
		c, err = config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	c.ApplyEnv()

	o.flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "catalog":
			c.Catalog = o.Catalog
		case "features":
			c.Features = o.Features
		case "hide-mmx":
			c.HideMMX = o.HideMMX
		case "log-level":
			c.LogLevel = o.LogLevel
		}
	})

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// OpenStore loads the catalogs named in c.
//
// Catalogs that cannot be read are logged and
// skipped, so the returned store is always
// usable. The returned error describes any
// catalogs that could not be loaded.
func OpenStore(ctx context.Context, c *config.Config, logger *slog.Logger) (*store.Store, error) {
	st := store.New(store.WithLogger(logger))

	var errs []error
	mnemonics := c.Mnemonics
	switch {
	case c.Catalog == "":
		errs = append(errs, errors.New("no intrinsics catalog configured"))
	case catalog.FormatOf(c.Catalog) == catalog.FormatTSV:
		// A tab-delimited catalog is a mnemonic
		// table, loaded ahead of the others.
		mnemonics = append([]string{c.Catalog}, c.Mnemonics...)
	default:
		if err := st.LoadFile(ctx, c.Catalog); err != nil {
			errs = append(errs, err)
		}
	}

	if len(mnemonics)+len(c.MnemonicOverrides) != 0 {
		if err := st.LoadMnemonicFiles(ctx, mnemonics, c.MnemonicOverrides); err != nil {
			errs = append(errs, err)
		}
	}

	for _, path := range c.Descriptions {
		if _, err := st.LoadDescriptionOverridesFile(path); err != nil {
			errs = append(errs, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return st, errors.Join(errs...)
}

// Setup loads the configuration and catalogs
// and returns a session over them. Problems
// loading the catalogs are reported with
// warn, but are not fatal.
func (o *Options) Setup(ctx context.Context, warn func(format string, v ...any)) (*config.Config, *store.Store, *session.Session, error) {
	c, err := o.Config()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := c.Logger()
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := OpenStore(ctx, c, logger)
	if st == nil {
		return nil, nil, nil, err
	}

	if err != nil {
		warn("Warning: %v", err)
	}

	sess, err := NewSession(st, c)
	if err != nil {
		return nil, nil, nil, err
	}

	return c, st, sess, nil
}

// NewSession returns a session over st using
// the settings in c.
func NewSession(st *store.Store, c *config.Config) (*session.Session, error) {
	features, err := c.EnabledFeatures()
	if err != nil {
		return nil, fmt.Errorf("invalid features: %w", err)
	}

	settings := session.Settings{
		Enabled:      features,
		HideMMX:      c.HideMMX,
		SummaryWidth: c.SummaryWidth,
		WrapWidth:    c.WrapWidth,
	}

	return session.New(st, settings), nil
}
