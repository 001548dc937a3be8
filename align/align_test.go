package align

import (
	"math"
	"math/rand"
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/testutil/expect"
)

func TestScore(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ACGT", "", -4},
		{"", "ACG", -3},
		{"ACGT", "ACGT", 4},
		{"ACGT", "ACTT", 2},
		{"ACGT", "AGT", 2},
		{"GATTACA", "GCATGCU", 0},
	}
	for _, tt := range tests {
		expect.EQ(t, Score(tt.a, tt.b, DefaultScoring), tt.want, tt)
		m := NewMatrix(tt.a, tt.b, DefaultScoring)
		expect.EQ(t, m.Score(), tt.want, tt)
		expect.EQ(t, m.Rows(), len(tt.a)+1)
		expect.EQ(t, m.Cols(), len(tt.b)+1)
	}
}

// With zero match reward and unit penalties the alignment score is the
// negated edit distance.
func TestScoreMatchesLevenshtein(t *testing.T) {
	unit := Scoring{Match: 0, Mismatch: -1, Gap: -1}
	r := rand.New(rand.NewSource(0))
	randSeq := func() string {
		b := make([]byte, r.Intn(20))
		for i := range b {
			b[i] = "ACGT"[r.Intn(4)]
		}
		return string(b)
	}
	for i := 0; i < 200; i++ {
		a, b := randSeq(), randSeq()
		expect.EQ(t, Score(a, b, unit), -matchr.Levenshtein(a, b), a, b)
	}
}

func TestMatrixPrefixes(t *testing.T) {
	a, b := "TTACGAAG", "TTACG"
	m := NewMatrix(a, b, DefaultScoring)
	for i := 0; i <= len(a); i++ {
		for j := 0; j <= len(b); j++ {
			expect.EQ(t, m.At(i, j), Score(a[:i], b[:j], DefaultScoring), i, j)
		}
	}
	expect.True(t, len(m.String()) > 0)
}

func TestReverseComplement(t *testing.T) {
	expect.EQ(t, ReverseComplement("ACGTN"), "NACGT")
	expect.EQ(t, ReverseComplement("AACG"), "CGTT")
	expect.EQ(t, ReverseComplement("acgX"), "NCGT")
	expect.EQ(t, reverse("ACGRY"), "YRGCA")
	expect.EQ(t, ReverseComplement(""), "")
}

func TestFindSplit(t *testing.T) {
	left := "TTACGAAGGTTTGTA"
	right := "TAATTTAGATGGAGA"
	read := "TTACGAAGATGGAGA"
	split, ok := FindSplit(read, left, right, DefaultScoring)
	expect.True(t, ok)
	expect.EQ(t, split, Split{Ref: 6, Read: 6, Score: 15})
	expect.EQ(t, left[:split.Ref]+right[split.Ref:], read)

	// Every split reaching the maximum reconstructs the read, and the
	// search is reproducible.
	fwd := NewMatrix(left, read, DefaultScoring)
	bwd := NewMatrix(reverse(right), reverse(read), DefaultScoring)
	l, n := len(left), len(read)
	for r := 0; r <= l; r++ {
		for c := 0; c <= n; c++ {
			total := fwd.At(r, c) + bwd.At(l-r, n-c)
			expect.LE(t, total, split.Score)
			if total == split.Score {
				expect.EQ(t, left[:r]+right[r:], read, r, c)
			}
		}
	}
	again, _ := FindSplit(read, left, right, DefaultScoring)
	expect.EQ(t, again, split)
}

func TestFindSplitDegenerate(t *testing.T) {
	_, ok := FindSplit("ACGT", "", "", DefaultScoring)
	expect.False(t, ok)
	_, ok = FindSplit("ACGT", "AC", "ACG", DefaultScoring)
	expect.False(t, ok)
}

func TestFindSplitNoSignal(t *testing.T) {
	split, ok := FindSplit("AAAAAAAA", "CCCCCCCC", "GGGGGGGG", DefaultScoring)
	expect.True(t, ok)
	expect.LE(t, split.Score, 0)
}

func TestFindSplitAmbiguityCodes(t *testing.T) {
	// R and Y are distinct bases and must never score as a match.
	for _, tt := range []struct{ read, left, right string }{
		{"ACGRRA", "ACGTTT", "GGGYYA"},
		{"RYRY", "YRYR", "RYRY"},
		{"TTRAC", "TTAAA", "CCYAC"},
	} {
		split, ok := FindSplit(tt.read, tt.left, tt.right, DefaultScoring)
		expect.True(t, ok)
		best := math.MinInt32
		for r := 0; r <= len(tt.left); r++ {
			for c := 0; c <= len(tt.read); c++ {
				total := Score(tt.left[:r], tt.read[:c], DefaultScoring) + Score(tt.right[r:], tt.read[c:], DefaultScoring)
				if total > best {
					best = total
				}
			}
		}
		expect.EQ(t, split.Score, best, tt)
	}
}
