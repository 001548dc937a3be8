// Package partition maps genomic coordinates to fixed-size bins.
//
// A partition is the bin [N*binSize, (N+1)*binSize) of one reference
// sequence.  Its textual id is "<rname>;<N>".  Records whose strand matters
// carry a stranded id, "<rname>;<N>+" or "<rname>;<N>-", where '-' means the
// reverse strand is the sense strand.
package partition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// ID identifies one partition.
type ID struct {
	RName string
	Bin   int64
}

// String returns the "<rname>;<bin>" form of the id.
func (id ID) String() string {
	return id.RName + ";" + strconv.FormatInt(id.Bin, 10)
}

// Stranded returns the id followed by '-' if reverse is set, '+' otherwise.
func (id ID) Stranded(reverse bool) string {
	if reverse {
		return id.String() + "-"
	}
	return id.String() + "+"
}

// Bounds returns the half-open coordinate range covered by the id.
func (id ID) Bounds(binSize int64) (start, end int64) {
	return id.Bin * binSize, (id.Bin + 1) * binSize
}

// Parse parses an unstranded id.  The reference name may itself contain ';'.
func Parse(s string) (ID, error) {
	i := strings.LastIndexByte(s, ';')
	if i <= 0 {
		return ID{}, errors.E(errors.Invalid, fmt.Sprintf("partition.Parse: malformed partition id %q", s))
	}
	bin, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || bin < 0 {
		return ID{}, errors.E(errors.Invalid, fmt.Sprintf("partition.Parse: malformed bin in partition id %q", s))
	}
	return ID{RName: s[:i], Bin: bin}, nil
}

// ParseStranded parses a stranded id.  It reports whether the strand suffix
// is '-'.
func ParseStranded(s string) (id ID, reverse bool, err error) {
	if len(s) == 0 {
		return ID{}, false, errors.E(errors.Invalid, "partition.ParseStranded: empty partition id")
	}
	switch s[len(s)-1] {
	case '+':
	case '-':
		reverse = true
	default:
		return ID{}, false, errors.E(errors.Invalid, fmt.Sprintf("partition.ParseStranded: partition id %q lacks a strand suffix", s))
	}
	id, err = Parse(s[:len(s)-1])
	return id, reverse, err
}

// For returns the partitions that overlap [start-margin, end+margin), in
// increasing bin order.  The widened range is clamped at 0.  An empty range
// is treated as the single position start.
func For(rname string, start, end, binSize, margin int64) []ID {
	if binSize <= 0 {
		panic(fmt.Sprintf("partition.For: bin size must be positive, got %d", binSize))
	}
	if end <= start {
		end = start + 1
	}
	lo, hi := start-margin, end+margin
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return nil
	}
	first, last := lo/binSize, (hi-1)/binSize
	ids := make([]ID, 0, last-first+1)
	for bin := first; bin <= last; bin++ {
		ids = append(ids, ID{RName: rname, Bin: bin})
	}
	return ids
}
