package interval

// FlatIntervals is a set of disjoint, non-adjacent intervals.  Adding an
// interval that overlaps or touches existing members replaces them with their
// hull.  Members are kept in insertion order, where a merged hull counts as
// the most recent insertion; callers that need positional order must sort.
//
// The zero value is an empty set.  A FlatIntervals is not thread safe.
type FlatIntervals struct {
	ivals []Interval
}

// Add merges ival into the set.
func (f *FlatIntervals) Add(ival Interval) {
	n := 0
	for _, o := range f.ivals {
		if ival.Touches(o) {
			// A member only extends the hull up to its own extent, and members
			// don't touch each other, so one pass finds every absorbed member.
			ival = ival.Hull(o)
			continue
		}
		f.ivals[n] = o
		n++
	}
	f.ivals = append(f.ivals[:n], ival)
}

// Len returns the number of members.
func (f *FlatIntervals) Len() int { return len(f.ivals) }

// Coverage returns the total number of positions covered by the set.
func (f *FlatIntervals) Coverage() int64 {
	var tot int64
	for _, i := range f.ivals {
		tot += i.Len()
	}
	return tot
}

// Intervals returns the members in insertion order.  The result is owned by
// the set and becomes invalid after the next Add.
func (f *FlatIntervals) Intervals() []Interval { return f.ivals }

// Reset empties the set, retaining its storage.
func (f *FlatIntervals) Reset() { f.ivals = f.ivals[:0] }
