// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
)

// Format is the form of a catalog source.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatHTML
	FormatTSV
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatTSV:
		return "tsv"
	default:
		return "unknown"
	}
}

// FormatOf determines the format of the
// catalog at path from its extension. Any
// compression extension is ignored.
func FormatOf(path string) Format {
	path = strings.ToLower(path)
	path = strings.TrimSuffix(path, ".gz")
	path = strings.TrimSuffix(path, ".zst")
	switch filepath.Ext(path) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".tsv", ".tab", ".txt":
		return FormatTSV
	default:
		return FormatUnknown
	}
}

// readCloser closes a decompressor along
// with the file beneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, fn := range rc.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Open opens the catalog at path. Files
// ending in ".gz" or ".zst" are
// decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		closeZstd := func() error {
			zr.Close()
			return nil
		}

		return &readCloser{Reader: zr, closers: []func() error{closeZstd, f.Close}}, nil
	default:
		return f, nil
	}
}

// ReadFile reads the whole catalog at
// path, decompressing it if necessary.
func ReadFile(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

// File is the content of one catalog
// source, or the error from reading it.
type File struct {
	Path string
	Data []byte
	Err  error
}

// maxParallelReads limits the number of
// catalog files open at once.
const maxParallelReads = 8

// ReadFiles reads the catalogs at paths
// concurrently. The results are in the
// same order as paths. An error reading
// one file is stored in its File and does
// not stop the others. The returned error
// is only set if ctx is cancelled.
func ReadFiles(ctx context.Context, paths []string) ([]File, error) {
	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		files[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			files[i].Data, files[i].Err = ReadFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}
