// Package util opens pipeline inputs and outputs, (de)compressing them
// according to their file suffix.
package util

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// Stdio is the path that stands for the standard input or output.
const Stdio = "-"

// Input is an input file, decompressed if its name ends in ".lz4" or any
// suffix known to compress.NewReaderPath (such as ".gz" and ".bz2").
type Input struct {
	io.Reader
	f  file.File
	dc io.ReadCloser
}

// Open opens path for reading.  Stdio reads the standard input.
func Open(ctx context.Context, path string) (*Input, error) {
	if path == Stdio {
		return &Input{Reader: os.Stdin}, nil
	}
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	in := &Input{Reader: f.Reader(ctx), f: f}
	if strings.HasSuffix(path, ".lz4") {
		in.Reader = lz4.NewReader(in.Reader)
	} else if dc := compress.NewReaderPath(in.Reader, f.Name()); dc != nil {
		in.Reader, in.dc = dc, dc
	}
	return in, nil
}

// Close closes the file.
func (in *Input) Close(ctx context.Context) error {
	if in.f == nil {
		return nil
	}
	e := errors.Once{}
	if in.dc != nil {
		e.Set(in.dc.Close())
	}
	e.Set(in.f.Close(ctx))
	return e.Err()
}

// Output is an output file, compressed with gzip if its name ends in ".gz" or
// with lz4 if it ends in ".lz4".
type Output struct {
	io.Writer
	f file.File
	c io.WriteCloser
}

// Create creates path.  Stdio writes the standard output.
func Create(ctx context.Context, path string) (*Output, error) {
	if path == Stdio {
		return &Output{Writer: os.Stdout}, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	out := &Output{Writer: f.Writer(ctx), f: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		out.c = gzip.NewWriter(out.Writer)
	case strings.HasSuffix(path, ".lz4"):
		out.c = lz4.NewWriter(out.Writer)
	}
	if out.c != nil {
		out.Writer = out.c
	}
	return out, nil
}

// Close flushes the compressor, if any, and closes the file.
func (out *Output) Close(ctx context.Context) error {
	if out.f == nil {
		return nil
	}
	e := errors.Once{}
	if out.c != nil {
		e.Set(out.c.Close())
	}
	e.Set(out.f.Close(ctx))
	return e.Err()
}
