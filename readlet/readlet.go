// Package readlet splits sequencing reads into short, overlapping readlets
// for independent alignment, and regroups the aligner's readlet alignments
// into per-read units.
//
// A readlet travels through the aligner under the name
// "<read name>;<index>;<total>;<full read sequence>", so that every readlet
// alignment carries enough information to reassemble its read.
package readlet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Opts controls readlet extraction.
type Opts struct {
	// Length is the readlet length.
	Length int
	// Interval is the distance between the starts of consecutive readlets.
	Interval int
}

// DefaultOpts is the default readlet geometry.
var DefaultOpts = Opts{
	Length:   25,
	Interval: 4,
}

// Readlet is one substring of a read.
type Readlet struct {
	// Index is the 0-based ordinal of the readlet; it starts at read offset
	// Index*Opts.Interval.
	Index int
	Seq   string
	Qual  string
}

// Split extracts the readlets of a read.  Readlet i covers
// [i*Interval, i*Interval+Length) and readlets are produced while they fit
// in the read.  A read shorter than Length yields one readlet spanning the
// whole read.  Length and Interval must be positive.
func Split(seq, qual string, opts Opts) ([]Readlet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(seq) < opts.Length {
		return []Readlet{{Index: 0, Seq: seq, Qual: qual}}, nil
	}
	n := (len(seq)-opts.Length)/opts.Interval + 1
	rlets := make([]Readlet, n)
	for i := range rlets {
		off := i * opts.Interval
		rlets[i] = Readlet{Index: i, Seq: seq[off : off+opts.Length]}
		if len(qual) >= off+opts.Length {
			rlets[i].Qual = qual[off : off+opts.Length]
		}
	}
	return rlets, nil
}

func (o Opts) validate() error {
	if o.Length <= 0 || o.Interval <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("readlet: bad readlet geometry %+v", o))
	}
	return nil
}

// Name is the parsed form of a readlet name.
type Name struct {
	Read  string
	Index int
	Total int
	Seq   string
}

func (n Name) String() string {
	return n.Read + ";" + strconv.Itoa(n.Index) + ";" + strconv.Itoa(n.Total) + ";" + n.Seq
}

// ParseName parses "<read name>;<index>;<total>;<seq>".  The read name may
// itself contain ';'.
func ParseName(s string) (Name, error) {
	var toks [3]string
	rest := s
	for i := 2; i >= 0; i-- {
		j := strings.LastIndexByte(rest, ';')
		if j < 0 {
			return Name{}, errors.E(errors.Invalid, fmt.Sprintf("readlet.ParseName: malformed readlet name %q", s))
		}
		toks[i], rest = rest[j+1:], rest[:j]
	}
	n := Name{Read: rest, Seq: toks[2]}
	var err error
	if n.Index, err = strconv.Atoi(toks[0]); err != nil {
		return Name{}, errors.E(errors.Invalid, fmt.Sprintf("readlet.ParseName: bad index in %q", s), err)
	}
	if n.Total, err = strconv.Atoi(toks[1]); err != nil {
		return Name{}, errors.E(errors.Invalid, fmt.Sprintf("readlet.ParseName: bad total in %q", s), err)
	}
	if n.Total <= 0 || n.Index < 0 || n.Index >= n.Total {
		return Name{}, errors.E(errors.Invalid, fmt.Sprintf("readlet.ParseName: index out of range in %q", s))
	}
	return n, nil
}

const labelPrefix = "LB:"

// SampleLabel extracts the sample label from a read name.  The label is the
// text following "LB:" up to the next ';' or the end of the name.
func SampleLabel(name string) (string, error) {
	i := strings.Index(name, labelPrefix)
	if i < 0 {
		return "", errors.E(errors.Invalid, fmt.Sprintf("read name %q has no %s sample label", name, labelPrefix))
	}
	label := name[i+len(labelPrefix):]
	if j := strings.IndexByte(label, ';'); j >= 0 {
		label = label[:j]
	}
	if label == "" {
		return "", errors.E(errors.Invalid, fmt.Sprintf("read name %q has an empty sample label", name))
	}
	return label, nil
}
