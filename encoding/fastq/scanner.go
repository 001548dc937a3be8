// Package fastq reads FASTQ files and converts them into the tab-delimited
// read lines accepted by readlet.Readletize.
package fastq

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

// A Read is a FASTQ read. Name is the ID line without the leading '@' and
// without any comment following the first whitespace.
type Read struct {
	Name, Seq, Qual string
}

// Scanner reads FASTQ records one at a time. Scanners are not threadsafe.
//
// Scanner requires ID lines to begin with "@", line 3 to begin with "+" and
// the sequence and quality strings to be of equal length.
type Scanner struct {
	b    *bufio.Scanner
	line int
	err  error
	done bool
}

// NewScanner constructs a Scanner that reads raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 64<<10), 64<<20)
	return &Scanner{b: b}
}

// Scan reads the next record into read. Once Scan returns false it never
// returns true again; Err tells whether it stopped at the end of the stream.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil || s.done {
		return false
	}
	if !s.b.Scan() {
		s.err = s.b.Err()
		s.done = true
		return false
	}
	s.line++
	id := s.b.Text()
	if len(id) < 2 || id[0] != '@' {
		s.fail("malformed ID line")
		return false
	}
	read.Name = id[1:]
	if i := strings.IndexAny(read.Name, " \t"); i >= 0 {
		read.Name = read.Name[:i]
	}
	if !s.scan() {
		return false
	}
	read.Seq = s.b.Text()
	if !s.scan() {
		return false
	}
	if plus := s.b.Bytes(); len(plus) == 0 || plus[0] != '+' {
		s.fail("malformed separator line")
		return false
	}
	if !s.scan() {
		return false
	}
	read.Qual = s.b.Text()
	if len(read.Qual) != len(read.Seq) {
		s.fail(fmt.Sprintf("sequence and quality lengths differ (%d, %d)", len(read.Seq), len(read.Qual)))
		return false
	}
	return true
}

func (s *Scanner) scan() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.fail("truncated record")
		}
		return false
	}
	s.line++
	return true
}

func (s *Scanner) fail(msg string) {
	s.err = errors.E(errors.Invalid, fmt.Sprintf("fastq: line %d: %s", s.line, msg))
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error { return s.err }

// PairScanner scans a pair of FASTQ streams holding the two mates of each
// read in the same order.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a pair scanner from the R1 and R2 readers.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{r1: NewScanner(r1), r2: NewScanner(r2)}
}

// Scan scans the next read pair into r1, r2.
func (p *PairScanner) Scan(r1, r2 *Read) bool {
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 != ok2 && p.r1.Err() == nil && p.r2.Err() == nil {
		p.err = errors.E(errors.Invalid, "fastq: discordant pair files")
	}
	return ok1 && ok2
}

// Err returns the scanning error, if any.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}
