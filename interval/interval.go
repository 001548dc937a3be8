package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Interval is the half-open range [Start, End).  Start <= End always holds
// for values returned by New.
type Interval struct {
	Start int64
	End   int64
}

// New returns the interval [start, end).  It fails if start > end.
func New(start, end int64) (Interval, error) {
	if start > end {
		return Interval{}, errors.E(errors.Invalid, fmt.Sprintf("interval.New: start (%d) must not be greater than end (%d)", start, end))
	}
	return Interval{Start: start, End: end}, nil
}

// Len returns the number of positions in the interval.
func (i Interval) Len() int64 { return i.End - i.Start }

// Empty checks whether the interval contains no position.
func (i Interval) Empty() bool { return i.Start == i.End }

// Compare orders intervals by start, then by end.  It returns a negative
// value if a < b, 0 if equal, and a positive value otherwise.
func Compare(a, b Interval) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	}
	return 0
}

// ordered returns (a, b) with a <= b under Compare.
func ordered(a, b Interval) (Interval, Interval) {
	if Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

// Intersect returns the intersection of i and o.  If they don't overlap, the
// result is the empty interval positioned at the start of the smaller one.
func (i Interval) Intersect(o Interval) Interval {
	a, b := ordered(i, o)
	if a.End <= b.Start {
		return Interval{a.Start, a.Start}
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	return Interval{b.Start, end}
}

// Hull returns the smallest interval containing both i and o.
func (i Interval) Hull(o Interval) Interval {
	h := i
	if o.Start < h.Start {
		h.Start = o.Start
	}
	if o.End > h.End {
		h.End = o.End
	}
	return h
}

// Overlaps checks whether i and o share at least one position.
func (i Interval) Overlaps(o Interval) bool {
	a, b := ordered(i, o)
	return a.End > b.Start
}

// Touches checks whether i and o overlap or are adjacent, i.e. whether their
// union is a single interval.
func (i Interval) Touches(o Interval) bool {
	a, b := ordered(i, o)
	return a.End >= b.Start
}

// Contains checks whether pos lies in [Start, End).
func (i Interval) Contains(pos int64) bool {
	return i.Start <= pos && pos < i.End
}

// Subset checks whether i lies within o.
func (i Interval) Subset(o Interval) bool {
	return i.Start >= o.Start && i.End <= o.End
}

// ProperSubset checks whether i lies strictly inside o, touching neither
// boundary.
func (i Interval) ProperSubset(o Interval) bool {
	return i.Start > o.Start && i.End < o.End
}

// Separation returns the number of positions between i and o, or 0 if they
// overlap.
func (i Interval) Separation(o Interval) int64 {
	a, b := ordered(i, o)
	if a.End > b.Start {
		return 0
	}
	return b.Start - a.End
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d,%d)", i.Start, i.End)
}
