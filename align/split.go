package align

// Split is the result of a boundary search.  Read bases [0, Read) align to
// left[:Ref] and bases [Read, n) align to right[Ref:].
type Split struct {
	Ref   int
	Read  int
	Score int
}

// FindSplit finds the position at which a read segment crosses from the left
// reference window into the right one.
//
// left and right must have the same length L.  They are windows laid out so
// that offset r in left and offset r in right describe the same intron: the
// spliced sequence for split r is left[:r] + right[r:].  For every r in [0, L]
// and every read offset c in [0, len(read)], the combined score is
//
//   NW(left[:r], read[:c]) + NW(right[r:], read[c:])
//
// where the second term is computed on the reversed sequences, so that both
// tables index the same coordinate frame.  FindSplit returns the split of
// maximal combined score.  Ties go to the smallest r, then the smallest c.
//
// ok is false if the windows are empty or differ in length.
func FindSplit(read, left, right string, s Scoring) (split Split, ok bool) {
	if len(left) == 0 || len(left) != len(right) {
		return Split{}, false
	}
	fwd := NewMatrix(left, read, s)
	// bwd.At(a, b) = NW(right[L-a:], read[n-b:]).
	bwd := NewMatrix(reverse(right), reverse(read), s)
	l, n := len(left), len(read)
	first := true
	for r := 0; r <= l; r++ {
		for c := 0; c <= n; c++ {
			total := fwd.At(r, c) + bwd.At(l-r, n-c)
			if first || total > split.Score {
				split = Split{Ref: r, Read: c, Score: total}
				first = false
			}
		}
	}
	return split, true
}
