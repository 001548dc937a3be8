// Package fasta reads reference sequences from FASTA files, either fully
// into memory or on demand through a samtools-style ".fai" index
// (http://www.htslib.org/doc/faidx.html).
//
// A FASTA file is a list of records, each a '>' header followed by sequence
// lines:
//
//   >chr7 optional description
//   ACGTAC
//   GAGGAC
//   GCG
//
// The sequence name is the header text up to the first space or tab.
//
// Fasta values returned by this package are safe for concurrent use.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// Longest sequence line accepted by New.
const maxLineSize = 300 << 20

// Fasta gives access to the named sequences of a FASTA file.
type Fasta interface {
	// Get returns bases [start, end) of the named sequence, 0-based.
	Get(seqName string, start, end uint64) (string, error)
	// Len returns the number of bases in the named sequence.
	Len(seqName string) (uint64, error)
	// SeqNames lists the sequence names in file order.
	SeqNames() []string
}

func seqNameOf(header string) string {
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		return header[:i]
	}
	return header
}

func notFound(seqName string) error {
	return errors.E(errors.NotExist, fmt.Sprintf("fasta: no sequence %q", seqName))
}

func checkRange(seqName string, start, end, n uint64) error {
	switch {
	case end <= start:
		return errors.E(errors.Invalid, fmt.Sprintf("fasta: empty range %s:%d-%d", seqName, start, end))
	case end > n:
		return errors.E(errors.Invalid, fmt.Sprintf("fasta: range %s:%d-%d exceeds sequence length %d", seqName, start, end, n))
	}
	return nil
}

// memFasta holds every sequence in memory.
type memFasta struct {
	names  []string
	byName map[string]string
}

// New reads all of r into memory.  Duplicate sequence names and sequence
// lines before the first header are errors.
func New(r io.Reader) (Fasta, error) {
	var (
		f       = &memFasta{byName: map[string]string{}}
		sc      = bufio.NewScanner(r)
		name    string
		body    strings.Builder
		inEntry bool
		lineNum int
	)
	sc.Buffer(nil, maxLineSize)
	add := func() error {
		if _, dup := f.byName[name]; dup {
			return errors.E(errors.Invalid, fmt.Sprintf("fasta.New: sequence %q appears twice", name))
		}
		f.byName[name] = body.String()
		f.names = append(f.names, name)
		body.Reset()
		return nil
	}
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "":
		case line[0] == '>':
			if inEntry {
				if err := add(); err != nil {
					return nil, err
				}
			}
			name, inEntry = seqNameOf(line[1:]), true
		case !inEntry:
			return nil, errors.E(errors.Invalid, fmt.Sprintf("fasta.New: line %d: sequence data before the first header", lineNum))
		default:
			body.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.E(err, "fasta.New")
	}
	if inEntry {
		if err := add(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *memFasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.byName[seqName]
	if !ok {
		return "", notFound(seqName)
	}
	if err := checkRange(seqName, start, end, uint64(len(s))); err != nil {
		return "", err
	}
	return s[start:end], nil
}

func (f *memFasta) Len(seqName string) (uint64, error) {
	s, ok := f.byName[seqName]
	if !ok {
		return 0, notFound(seqName)
	}
	return uint64(len(s)), nil
}

func (f *memFasta) SeqNames() []string { return f.names }
