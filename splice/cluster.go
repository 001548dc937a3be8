package splice

import (
	"fmt"
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
)

// Support is the evidence one read contributes to a candidate intron.
type Support struct {
	Sample string
	// FivePrime is the number of read bases between the 5' end of the read
	// and the intron start, measured on the forward strand.
	FivePrime int64
	// ThreePrime is the number of read bases between the intron end and the
	// 3' end of the read, measured on the forward strand.
	ThreePrime int64
}

// Key identifies a candidate intron [Start, End), 1-indexed.
type Key struct {
	Start int64
	End   int64
}

// Candidates maps candidate introns of one partition to their supporting
// reads, in arrival order.
type Candidates map[Key][]Support

// Add appends one read's support for [start, end).
func (c Candidates) Add(start, end int64, s Support) {
	k := Key{start, end}
	c[k] = append(c[k], s)
}

// Member is one supporting read of a clustered candidate intron.
type Member struct {
	Start int64
	End   int64
	Support
}

// Cluster is a group of same-length candidate introns with nearby ends,
// expanded into one Member per supporting read.  Members are ordered by end
// position, then by arrival.
type Cluster []Member

// lenEnd is the clustering key of a candidate intron.
type lenEnd struct {
	length, end int64
}

// Compare orders lenEnd keys by length, then end, for use in llrb.
func (k lenEnd) Compare(c llrb.Comparable) int {
	k2 := c.(lenEnd)
	switch {
	case k.length != k2.length:
		if k.length < k2.length {
			return -1
		}
		return 1
	case k.end < k2.end:
		return -1
	case k.end > k2.end:
		return 1
	}
	return 0
}

// ClusterStats reports the work done by ClusterCandidates.
type ClusterStats struct {
	Candidates       int
	Clusters         int
	BoundaryFiltered int
}

// ClusterCandidates groups the candidate introns of the partition
// [partStart, partEnd) into clusters.
//
// Candidates are visited by descending read support, then descending length,
// then ascending end.  Each candidate not yet clustered seeds a new cluster
// that absorbs every unclustered candidate of the same length whose end lies
// within radius (inclusive) of the seed's end.  A cluster is kept only if its
// smallest end lies in [partStart, partEnd); otherwise it belongs to an
// adjacent partition.
//
// pid is used only for error messages.
func ClusterCandidates(cands Candidates, partStart, partEnd, radius int64, pid string) ([]Cluster, ClusterStats, error) {
	stats := ClusterStats{Candidates: len(cands)}
	seeds := make([]Key, 0, len(cands))
	unclustered := llrb.Tree{}
	for k := range cands {
		seeds = append(seeds, k)
		unclustered.Insert(lenEnd{k.End - k.Start, k.End})
	}
	sort.Slice(seeds, func(i, j int) bool {
		a, b := seeds[i], seeds[j]
		if na, nb := len(cands[a]), len(cands[b]); na != nb {
			return na > nb
		}
		if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
			return la > lb
		}
		return a.End < b.End
	})

	var clusters []Cluster
	for _, seed := range seeds {
		if unclustered.Len() == 0 {
			break
		}
		key := lenEnd{seed.End - seed.Start, seed.End}
		if unclustered.Get(key) == nil {
			continue
		}
		var absorbed []lenEnd
		unclustered.DoRange(func(c llrb.Comparable) bool {
			absorbed = append(absorbed, c.(lenEnd))
			return false
		}, lenEnd{key.length, key.end - radius}, lenEnd{key.length, key.end + radius + 1})
		before := unclustered.Len()
		for _, k := range absorbed {
			unclustered.Delete(k)
		}
		if unclustered.Len() >= before {
			return nil, stats, errors.E(errors.Integrity,
				fmt.Sprintf("splice.ClusterCandidates: partition %s: clustering made no progress with %d of %d candidates left", pid, before, len(cands)))
		}
		stats.Clusters++
		// absorbed is in (length, end) order, so absorbed[0] has the smallest end.
		if minEnd := absorbed[0].end; minEnd < partStart || minEnd >= partEnd {
			stats.BoundaryFiltered++
			continue
		}
		var c Cluster
		for _, k := range absorbed {
			start := k.end - k.length
			for _, s := range cands[Key{start, k.end}] {
				c = append(c, Member{Start: start, End: k.end, Support: s})
			}
		}
		clusters = append(clusters, c)
	}
	if n := unclustered.Len(); n != 0 {
		return nil, stats, errors.E(errors.Integrity,
			fmt.Sprintf("splice.ClusterCandidates: partition %s: %d of %d candidates left unclustered", pid, n, len(cands)))
	}
	return clusters, stats, nil
}
