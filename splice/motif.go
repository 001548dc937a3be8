package splice

import (
	"math"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
)

// Motif is a donor/acceptor dinucleotide pair, as read on the forward
// strand.
type Motif struct {
	Donor    string
	Acceptor string
}

// ForwardMotifs lists the motif pairs of a forward-sense intron in
// descending priority: canonical, then GC-AG, then minor-spliceosome AT-AC.
var ForwardMotifs = []Motif{{"GT", "AG"}, {"GC", "AG"}, {"AT", "AC"}}

// ReverseMotifs are ForwardMotifs as seen on the forward strand when the
// reverse strand is the sense strand.
var ReverseMotifs = []Motif{{"CT", "AC"}, {"CT", "GC"}, {"GT", "AT"}}

// MotifsFor returns the motif list of a strand.
func MotifsFor(reverse bool) []Motif {
	if reverse {
		return ReverseMotifs
	}
	return ForwardMotifs
}

// Site is a ranked splice call [Start, End), 1-indexed.
type Site struct {
	Start int64
	End   int64
	// Z is the summed distance of Start and End from the cluster's mean start
	// and end, in standard deviations.  Lower is better.
	Z        float64
	Donor    string
	Acceptor string
}

// motifOffsets returns every offset at which motif occurs in seq, including
// overlapping occurrences.
func motifOffsets(seq, motif string) []int64 {
	var offs []int64
	for i := 0; i+len(motif) <= len(seq); i++ {
		if seq[i:i+len(motif)] == motif {
			offs = append(offs, int64(i))
		}
	}
	return offs
}

// meanStdev returns the mean and the sample standard deviation of xs, the
// latter floored at 1e-6.
func meanStdev(xs []int64) (mean, stdev float64) {
	for _, x := range xs {
		mean += float64(x)
	}
	mean /= float64(len(xs))
	if len(xs) > 1 {
		for _, x := range xs {
			d := float64(x) - mean
			stdev += d * d
		}
		stdev = math.Sqrt(stdev / float64(len(xs)-1))
	}
	return mean, math.Max(stdev, 1e-6)
}

// fetchWindow fetches the 1-indexed window [lo, hi) clamped to [1, refLen].
// It returns the clamped start.
func fetchWindow(ref Reference, rname string, lo, hi, refLen int64) (int64, string, error) {
	if lo < 1 {
		lo = 1
	}
	if hi > refLen+1 {
		hi = refLen + 1
	}
	if hi <= lo {
		return lo, "", nil
	}
	seq, err := ref.Fetch(rname, lo, hi-lo)
	return lo, seq, err
}

// RankSites lists the possible splice sites of a cluster, best first.
//
// Donor motifs are searched in [Smin, Smax+2) and acceptor motifs in
// [Emin-2, Emax), where S and E range over the members' starts and ends, and
// both windows are clamped to the reference.  Every donor occurrence is
// paired with every acceptor occurrence of the same motif pair.  Within a
// motif pair, sites are ordered by ascending Z (ties by start, then end);
// motif pairs are concatenated in the priority order of motifs.  The result
// is empty if no motif occurs.
func RankSites(ref Reference, rname string, c Cluster, motifs []Motif) ([]Site, error) {
	if len(c) == 0 {
		return nil, errors.E(errors.Invalid, "splice.RankSites: empty cluster")
	}
	refLen, err := ref.Len(rname)
	if err != nil {
		return nil, err
	}
	starts := make([]int64, len(c))
	ends := make([]int64, len(c))
	sMin, sMax, eMin, eMax := c[0].Start, c[0].Start, c[0].End, c[0].End
	for i, m := range c {
		starts[i], ends[i] = m.Start, m.End
		if m.Start < sMin {
			sMin = m.Start
		}
		if m.Start > sMax {
			sMax = m.Start
		}
		if m.End < eMin {
			eMin = m.End
		}
		if m.End > eMax {
			eMax = m.End
		}
	}
	donorLo, donorSeq, err := fetchWindow(ref, rname, sMin, sMax+2, refLen)
	if err != nil {
		return nil, err
	}
	accLo, accSeq, err := fetchWindow(ref, rname, eMin-2, eMax, refLen)
	if err != nil {
		return nil, err
	}
	donorSeq, accSeq = strings.ToUpper(donorSeq), strings.ToUpper(accSeq)
	meanStart, sdStart := meanStdev(starts)
	meanEnd, sdEnd := meanStdev(ends)

	var ranked []Site
	for _, m := range motifs {
		donors := motifOffsets(donorSeq, m.Donor)
		acceptors := motifOffsets(accSeq, m.Acceptor)
		tier := make([]Site, 0, len(donors)*len(acceptors))
		for _, d := range donors {
			for _, a := range acceptors {
				start := donorLo + d
				end := accLo + a + int64(len(m.Acceptor))
				tier = append(tier, Site{
					Start:    start,
					End:      end,
					Z:        math.Abs(float64(start)-meanStart)/sdStart + math.Abs(float64(end)-meanEnd)/sdEnd,
					Donor:    m.Donor,
					Acceptor: m.Acceptor,
				})
			}
		}
		sort.SliceStable(tier, func(i, j int) bool {
			a, b := tier[i], tier[j]
			if a.Z != b.Z {
				return a.Z < b.Z
			}
			if a.Start != b.Start {
				return a.Start < b.Start
			}
			return a.End < b.End
		})
		ranked = append(ranked, tier...)
	}
	return ranked, nil
}
