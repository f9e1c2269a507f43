// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package config loads the settings of the
// intrinsics-dude tool from a TOML file and the
// environment.
//
// Settings are applied in order of increasing
// precedence: the defaults, the config file, the
// environment, and finally any command-line flags
// handled by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
	"golang.org/x/mod/semver"

	"github.com/HJLebbink/intrinsics-dude-sub001/internal/intrinsic"
	"github.com/HJLebbink/intrinsics-dude-sub001/internal/logging"
)

// HostFeatures is the feature name that
// stands for the features of the running
// CPU.
const HostFeatures = "host"

// Environment variables that override the
// config file.
const (
	EnvCatalog      = "INTRINSICS_CATALOG"
	EnvFeatures     = "INTRINSICS_FEATURES"
	EnvHideMMX      = "INTRINSICS_HIDE_MMX"
	EnvWrapWidth    = "INTRINSICS_WRAP_WIDTH"
	EnvSummaryWidth = "INTRINSICS_SUMMARY_WIDTH"
	EnvLogLevel     = "INTRINSICS_LOG_LEVEL"
)

// Config describes the catalogs to load
// and the user's settings.
type Config struct {
	Catalog           string   `toml:"catalog"`            // The intrinsics catalog.
	Descriptions      []string `toml:"descriptions"`       // Handwritten description overrides.
	Mnemonics         []string `toml:"mnemonics"`          // Regular mnemonic catalogs.
	MnemonicOverrides []string `toml:"mnemonic_overrides"` // Handcrafted mnemonic catalogs.

	Features     string `toml:"features"` // A comma-separated feature list, which may include "host".
	HideMMX      bool   `toml:"hide_mmx"`
	WrapWidth    int    `toml:"wrap_width"`
	SummaryWidth int    `toml:"summary_width"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// MinCatalogVersion is the oldest catalog
	// version accepted by the check command.
	MinCatalogVersion string `toml:"min_catalog_version"`
}

// Default returns the default settings.
func Default() Config {
	return Config{
		Features:     HostFeatures,
		WrapWidth:    80,
		SummaryWidth: 100,
		LogLevel:     "error",
		LogFormat:    string(logging.FormatText),
	}
}

// Load returns the default settings,
// updated with those in the TOML file at
// path. Relative catalog paths in the file
// are resolved against the file's
// directory. Unknown keys are an error.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		sort.Strings(keys)

		return c, fmt.Errorf("failed to parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	dir := filepath.Dir(path)
	c.Catalog = resolve(dir, c.Catalog)
	for _, list := range [][]string{c.Descriptions, c.Mnemonics, c.MnemonicOverrides} {
		for i, p := range list {
			list[i] = resolve(dir, p)
		}
	}

	return c, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// ApplyEnv overrides c with any settings in
// the environment.
func (c *Config) ApplyEnv() {
	c.Catalog = env.Str(EnvCatalog, c.Catalog)
	c.Features = env.Str(EnvFeatures, c.Features)
	if env.Has(EnvHideMMX) {
		c.HideMMX = env.Bool(EnvHideMMX)
	}

	c.WrapWidth = env.Int(EnvWrapWidth, c.WrapWidth)
	c.SummaryWidth = env.Int(EnvSummaryWidth, c.SummaryWidth)
	c.LogLevel = env.Str(EnvLogLevel, c.LogLevel)
}

// EnabledFeatures parses the feature list.
// The name "host" adds the features of the
// running CPU.
func (c *Config) EnabledFeatures() (intrinsic.CpuFeature, error) {
	var features intrinsic.CpuFeature
	var unknown []string
	for _, tok := range strings.Split(c.Features, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case strings.EqualFold(tok, HostFeatures):
			features |= intrinsic.HostFeatures()
		default:
			f, ok := intrinsic.ParseFeature(tok)
			if !ok {
				unknown = append(unknown, tok)
				continue
			}

			features |= f
		}
	}

	if len(unknown) != 0 {
		return features, fmt.Errorf("unknown CPU features: %s", strings.Join(unknown, ", "))
	}

	return features, nil
}

// Logger returns a logger for the configured
// level and format, writing to standard error.
func (c *Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}

	return logging.New(os.Stderr, level, format), nil
}

// Validate checks the settings for
// consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.WrapWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid wrap width %d: must not be negative", c.WrapWidth))
	}

	if c.SummaryWidth < 0 {
		errs = append(errs, fmt.Errorf("invalid summary width %d: must not be negative", c.SummaryWidth))
	}

	if _, err := c.EnabledFeatures(); err != nil {
		errs = append(errs, err)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}

	if c.MinCatalogVersion != "" && !semver.IsValid(canonicalVersion(c.MinCatalogVersion)) {
		errs = append(errs, fmt.Errorf("invalid minimum catalog version %q", c.MinCatalogVersion))
	}

	return errors.Join(errs...)
}

// canonicalVersion adds the "v" prefix that
// semver expects to catalog versions such as
// "3.6.9".
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	return v
}

// CheckCatalogVersion returns an error if
// the catalog version got is older than min.
// An empty min accepts any catalog.
func CheckCatalogVersion(min, got string) error {
	if min == "" {
		return nil
	}

	minVersion := canonicalVersion(min)
	if !semver.IsValid(minVersion) {
		return fmt.Errorf("invalid minimum catalog version %q", min)
	}

	if got == "" {
		return fmt.Errorf("catalog has no version: want %s or later", min)
	}

	gotVersion := canonicalVersion(got)
	if !semver.IsValid(gotVersion) {
		return fmt.Errorf("invalid catalog version %q", got)
	}

	if semver.Compare(gotVersion, minVersion) < 0 {
		return fmt.Errorf("catalog version %s is older than %s", got, min)
	}

	return nil
}
