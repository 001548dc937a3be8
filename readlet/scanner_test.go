package readlet

import (
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const samHeader = "@HD\tVN:1.0\tSO:unsorted\n@SQ\tSN:chr1\tLN:1000\n@SQ\tSN:chr2\tLN:1000\n"

func samLine(qname string, flag int, rname string, pos int, seq string) string {
	cigar := "*"
	if rname != "*" {
		cigar = strconv.Itoa(len(seq)) + "M"
	}
	return strings.Join([]string{qname, strconv.Itoa(flag), rname, strconv.Itoa(pos), "255", cigar, "*", "0", "0", seq, strings.Repeat("I", len(seq))}, "\t") + "\n"
}

func TestScanner(t *testing.T) {
	sam := samHeader +
		samLine("r1;LB:a;0;3;ACGTACGTAC", 0, "chr1", 101, "ACGT") +
		samLine("r2;LB:a;0;2;TTTTTTT", 4, "*", 0, "TTTT") +
		samLine("r1;LB:a;1;3;ACGTACGTAC", 4, "*", 0, "TACG") +
		samLine("r2;LB:a;1;2;TTTTTTT", 4, "*", 0, "TTTT") +
		samLine("r1;LB:a;2;3;ACGTACGTAC", 16, "chr2", 11, "GTAC")
	sc, err := NewScanner(strings.NewReader(sam))
	assert.NoError(t, err)
	var reads []Read
	for sc.Scan() {
		reads = append(reads, sc.Read())
	}
	assert.NoError(t, sc.Err())
	expect.EQ(t, reads, []Read{{
		Name:  "r1;LB:a",
		Seq:   "ACGTACGTAC",
		Total: 3,
		Alignments: []Alignment{
			{RName: "chr1", Pos: 100, Len: 4, Index: 0},
			{RName: "chr2", Reverse: true, Pos: 10, Len: 4, Index: 2},
		},
	}})
	expect.EQ(t, sc.Stats(), ScannerStats{Records: 5, Unmapped: 3, Reads: 2, Unaligned: 1})
}

func TestScannerIncomplete(t *testing.T) {
	sam := samHeader + samLine("r1;LB:a;0;2;ACGTAC", 0, "chr1", 1, "ACGT")
	sc, err := NewScanner(strings.NewReader(sam))
	assert.NoError(t, err)
	expect.False(t, sc.Scan())
	expect.NotNil(t, sc.Err())
}

func TestScannerBadName(t *testing.T) {
	sam := samHeader + samLine("r1", 0, "chr1", 1, "ACGT")
	sc, err := NewScanner(strings.NewReader(sam))
	assert.NoError(t, err)
	expect.False(t, sc.Scan())
	expect.NotNil(t, sc.Err())
}
