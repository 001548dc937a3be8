package splice

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/splice/encoding/fasta"
)

// Reference provides random access to reference sequences.  Implementations
// must be safe for concurrent use.
type Reference interface {
	// Fetch returns length bases of sequence name starting at the 1-indexed
	// position start, in upper case.  It fails if any requested position is
	// outside [1, Len(name)].
	Fetch(name string, start, length int64) (string, error)
	// Len returns the length of sequence name.
	Len(name string) (int64, error)
}

type fastaReference struct {
	fa fasta.Fasta
}

// NewReference adapts a Fasta to the Reference interface.
func NewReference(fa fasta.Fasta) Reference {
	return fastaReference{fa}
}

func (r fastaReference) Len(name string) (int64, error) {
	n, err := r.fa.Len(name)
	if err != nil {
		return 0, errors.E(errors.NotExist, err)
	}
	return int64(n), nil
}

func (r fastaReference) Fetch(name string, start, length int64) (string, error) {
	n, err := r.Len(name)
	if err != nil {
		return "", err
	}
	if start < 1 || length < 0 || start+length-1 > n {
		return "", errors.E(errors.Invalid, fmt.Sprintf("reference fetch %s:%d+%d is out of bounds [1,%d]", name, start, length, n))
	}
	if length == 0 {
		return "", nil
	}
	seq, err := r.fa.Get(name, uint64(start-1), uint64(start-1+length))
	if err != nil {
		return "", errors.E(err, fmt.Sprintf("reference fetch %s:%d+%d", name, start, length))
	}
	return strings.ToUpper(seq), nil
}

// OpenReference opens a FASTA file as a Reference.  A local file is read on
// demand through its "<path>.fai" index, which is generated in memory if
// absent.  Any other path is loaded into memory.
func OpenReference(ctx context.Context, path string) (ref Reference, err error) {
	scheme, _, err := file.ParsePath(path)
	if err != nil {
		return nil, err
	}
	if scheme != "" {
		var in file.File
		if in, err = file.Open(ctx, path); err != nil {
			return nil, err
		}
		defer file.CloseAndReport(ctx, in, &err)
		fa, ferr := fasta.New(in.Reader(ctx))
		if ferr != nil {
			return nil, errors.E(ferr, path)
		}
		return NewReference(fa), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close() // nolint: errcheck
		}
	}()
	var index bytes.Buffer
	if idx, ierr := file.Open(ctx, path+".fai"); ierr == nil {
		_, err = index.ReadFrom(idx.Reader(ctx))
		if cerr := idx.Close(ctx); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, errors.E(err, path+".fai")
		}
	} else {
		log.Printf("%s.fai not found, indexing %s", path, path)
		if err = fasta.GenerateIndex(&index, f); err != nil {
			return nil, errors.E(err, path)
		}
	}
	// f stays open for the lifetime of the returned Reference.
	fa, err := fasta.NewIndexed(f, &index)
	if err != nil {
		return nil, errors.E(err, path)
	}
	return NewReference(fa), nil
}
