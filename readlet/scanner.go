package readlet

import (
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Alignment is one aligned readlet.
type Alignment struct {
	RName   string
	Reverse bool
	// Pos is the 0-based leftmost reference position.
	Pos int64
	// Len is the readlet length.
	Len int64
	// Index is the readlet ordinal within its read.
	Index int
}

// Read collects the aligned readlets of one read.
type Read struct {
	// Name is the read name, including its sample label.
	Name string
	// Seq is the full read sequence as originally sequenced.
	Seq string
	// Total is the number of readlets the read was split into.
	Total      int
	Alignments []Alignment
}

type pendingRead struct {
	read Read
	seen int
}

// ScannerStats counts the records consumed by a Scanner.
type ScannerStats struct {
	Records  int
	Unmapped int
	// Reads counts reads whose readlets were all seen.
	Reads int
	// Unaligned counts reads none of whose readlets aligned.  They are not
	// returned by Scan.
	Unaligned int
}

// Scanner groups readlet SAM records into reads.  A read is complete once
// all of its readlets, aligned or not, have been seen; reads are returned in
// completion order.  Readlets of different reads may interleave.
//
// Usage:
//
//   sc, err := readlet.NewScanner(r)
//   for sc.Scan() {
//     read := sc.Read()
//   }
//   if err := sc.Err(); err != nil { ... }
type Scanner struct {
	in      *sam.Reader
	pending map[string]*pendingRead
	read    Read
	stats   ScannerStats
	err     error
}

// NewScanner creates a Scanner over SAM text.
func NewScanner(r io.Reader) (*Scanner, error) {
	in, err := sam.NewReader(r)
	if err != nil {
		return nil, errors.E(err, "readlet.NewScanner")
	}
	return &Scanner{in: in, pending: map[string]*pendingRead{}}, nil
}

// Scan advances to the next read with at least one aligned readlet.  It
// returns false at the end of input or on error.  Readlets still pending at
// the end of input are an error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		rec, err := s.in.Read()
		if err == io.EOF {
			if len(s.pending) > 0 {
				s.err = errors.E(errors.Invalid, fmt.Sprintf("readlet.Scanner: %d read(s) have missing readlets at end of input", len(s.pending)))
			}
			return false
		}
		if err != nil {
			s.err = errors.E(err, fmt.Sprintf("readlet.Scanner: record %d", s.stats.Records+1))
			return false
		}
		s.stats.Records++
		name, err := ParseName(rec.Name)
		if err != nil {
			s.err = err
			return false
		}
		p := s.pending[name.Read]
		if p == nil {
			p = &pendingRead{read: Read{Name: name.Read, Seq: name.Seq, Total: name.Total}}
			s.pending[name.Read] = p
		} else if p.read.Total != name.Total {
			s.err = errors.E(errors.Invalid, fmt.Sprintf("readlet.Scanner: read %s has inconsistent readlet totals %d and %d", name.Read, p.read.Total, name.Total))
			return false
		}
		p.seen++
		if rec.Flags&sam.Unmapped == 0 && rec.Ref != nil {
			p.read.Alignments = append(p.read.Alignments, Alignment{
				RName:   rec.Ref.Name(),
				Reverse: rec.Flags&sam.Reverse != 0,
				Pos:     int64(rec.Pos),
				Len:     int64(rec.Seq.Length),
				Index:   name.Index,
			})
		} else {
			s.stats.Unmapped++
		}
		if p.seen < p.read.Total {
			continue
		}
		delete(s.pending, name.Read)
		s.stats.Reads++
		if len(p.read.Alignments) == 0 {
			s.stats.Unaligned++
			continue
		}
		s.read = p.read
		return true
	}
}

// Read returns the read found by the last successful Scan.
func (s *Scanner) Read() Read { return s.read }

// Err returns the first error encountered.
func (s *Scanner) Err() error { return s.err }

// Stats returns the counts so far.
func (s *Scanner) Stats() ScannerStats { return s.stats }
