package splice

import (
	"strings"
	"testing"

	"github.com/grailbio/splice/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// newTestReference creates a Reference from alternating names and sequences.
func newTestReference(t *testing.T, seqs ...string) Reference {
	var sb strings.Builder
	for i := 0; i+1 < len(seqs); i += 2 {
		sb.WriteString(">" + seqs[i] + "\n" + seqs[i+1] + "\n")
	}
	fa, err := fasta.New(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return NewReference(fa)
}

// siteCoords strips the z-scores from sites.
func siteCoords(sites []Site) []Site {
	out := make([]Site, len(sites))
	for i, s := range sites {
		s.Z = 0
		out[i] = s
	}
	return out
}

func TestMotifOffsets(t *testing.T) {
	expect.EQ(t, motifOffsets("GTGTGT", "GT"), []int64{0, 2, 4})
	expect.EQ(t, motifOffsets("AAAA", "AA"), []int64{0, 1, 2})
	expect.EQ(t, len(motifOffsets("A", "AG")), 0)
}

func TestRankSitesMotifPriority(t *testing.T) {
	// Positions 11-14 are GCGT and 29-32 are AGTT.
	seq := strings.Repeat("C", 10) + "GCGT" + strings.Repeat("C", 14) + "AGTT" + strings.Repeat("C", 8)
	ref := newTestReference(t, "chr1", seq)
	c := Cluster{member(11, 31, "a"), member(13, 33, "a")}

	sites, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, siteCoords(sites), []Site{
		{Start: 13, End: 31, Donor: "GT", Acceptor: "AG"},
		{Start: 11, End: 31, Donor: "GC", Acceptor: "AG"},
	})
}

func TestRankSitesZOrder(t *testing.T) {
	// Positions 11-14 are GTGT and 29-32 are AGAG.
	seq := strings.Repeat("C", 10) + "GTGT" + strings.Repeat("C", 14) + "AGAG" + strings.Repeat("C", 8)
	ref := newTestReference(t, "chr1", seq)
	c := Cluster{member(11, 31, "a"), member(11, 31, "b"), member(11, 31, "c"), member(13, 33, "d")}

	sites, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, siteCoords(sites), []Site{
		{Start: 11, End: 31, Donor: "GT", Acceptor: "AG"},
		{Start: 11, End: 33, Donor: "GT", Acceptor: "AG"},
		{Start: 13, End: 31, Donor: "GT", Acceptor: "AG"},
		{Start: 13, End: 33, Donor: "GT", Acceptor: "AG"},
	})
	// Mean start 11.5 and end 31.5, both with unit standard deviation.
	require.Len(t, sites, 4)
	require.InDelta(t, 1.0, sites[0].Z, 1e-9)
	require.InDelta(t, 2.0, sites[1].Z, 1e-9)
	require.InDelta(t, 3.0, sites[3].Z, 1e-9)
}

func TestRankSitesReverseStrand(t *testing.T) {
	// Positions 11-12 are CT and 29-30 are AC.
	seq := strings.Repeat("G", 10) + "CTG" + strings.Repeat("G", 15) + "ACG" + strings.Repeat("G", 8)
	ref := newTestReference(t, "chr1", seq)
	c := Cluster{member(11, 31, "a"), member(12, 32, "a")}

	sites, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, len(sites), 0)

	sites, err = RankSites(ref, "chr1", c, MotifsFor(true))
	assert.NoError(t, err)
	expect.EQ(t, siteCoords(sites), []Site{{Start: 11, End: 31, Donor: "CT", Acceptor: "AC"}})
}

func TestRankSitesWindowClamping(t *testing.T) {
	seq := "AGCCCCCCCCCCCCCCCCGT"
	ref := newTestReference(t, "chr1", seq)
	// Both windows reach the ends of the sequence.
	c := Cluster{member(19, 3, "a")}
	sites, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, siteCoords(sites), []Site{{Start: 19, End: 3, Donor: "GT", Acceptor: "AG"}})

	// Both windows would extend past the sequence and are clamped.
	c = Cluster{member(20, 2, "a")}
	sites, err = RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, len(sites), 0)

	_, err = RankSites(ref, "chrX", c, ForwardMotifs)
	expect.NotNil(t, err)
	_, err = RankSites(ref, "chr1", nil, ForwardMotifs)
	expect.NotNil(t, err)
}

func TestRankSitesIdempotent(t *testing.T) {
	seq := strings.Repeat("C", 10) + "GTGT" + strings.Repeat("C", 14) + "AGAG" + strings.Repeat("C", 8)
	ref := newTestReference(t, "chr1", seq)
	c := Cluster{member(11, 31, "a"), member(13, 33, "d"), member(12, 32, "e")}
	first, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	again, err := RankSites(ref, "chr1", c, ForwardMotifs)
	assert.NoError(t, err)
	expect.EQ(t, again, first)
}
