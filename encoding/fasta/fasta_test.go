package fasta_test

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/splice/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const (
	fastaData  = ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + ">seq2 A viral sequence\n" + "ACGT\n" + "ACGT\n"
	fastaIndex = "seq1\t12\t6\t5\t6\n" + "seq2\t8\t44\t4\t5\n"
)

func newBoth(t *testing.T) map[string]fasta.Fasta {
	unindexed, err := fasta.New(strings.NewReader(fastaData))
	assert.NoError(t, err)
	indexed, err := fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader(fastaIndex))
	assert.NoError(t, err)
	return map[string]fasta.Fasta{"unindexed": unindexed, "indexed": indexed}
}

func TestGet(t *testing.T) {
	tests := []struct {
		seq     string
		start   uint64
		end     uint64
		want    string
		wantErr bool
	}{
		{"seq1", 1, 2, "C", false},
		{"seq1", 1, 6, "CGTAC", false},
		{"seq1", 0, 12, "ACGTACGTACGT", false},
		{"seq1", 10, 12, "GT", false},
		{"seq2", 0, 8, "ACGTACGT", false},
		{"seq2", 2, 5, "GTA", false},
		{"seq0", 0, 1, "", true},
		{"seq1", 10, 13, "", true},
		{"seq1", 4, 3, "", true},
	}
	for name, fa := range newBoth(t) {
		for _, tt := range tests {
			got, err := fa.Get(tt.seq, tt.start, tt.end)
			expect.EQ(t, err != nil, tt.wantErr, name, tt)
			expect.EQ(t, got, tt.want, name, tt)
		}
	}
}

func TestLenAndSeqNames(t *testing.T) {
	for name, fa := range newBoth(t) {
		n, err := fa.Len("seq1")
		assert.NoError(t, err)
		expect.EQ(t, n, uint64(12), name)
		n, err = fa.Len("seq2")
		assert.NoError(t, err)
		expect.EQ(t, n, uint64(8), name)
		_, err = fa.Len("seq0")
		expect.True(t, errors.Is(errors.NotExist, err), name)
		expect.EQ(t, fa.SeqNames(), []string{"seq1", "seq2"}, name)
	}
}

func TestNewErrors(t *testing.T) {
	_, err := fasta.New(strings.NewReader("ACGT\n>seq1\nACGT\n"))
	expect.NotNil(t, err)
	_, err = fasta.New(strings.NewReader(">seq1\nACGT\n>seq1\nACGT\n"))
	expect.NotNil(t, err)
	_, err = fasta.NewIndexed(strings.NewReader(fastaData), strings.NewReader("seq1\t12\t6\n"))
	expect.NotNil(t, err)
}

func TestConcurrentIndexedGet(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(">chr1\n")
	bases := "ACGT"
	var want strings.Builder
	for line := 0; line < 200; line++ {
		for i := 0; i < 60; i++ {
			c := bases[(line*7+i*3)%4]
			sb.WriteByte(c)
			want.WriteByte(c)
		}
		sb.WriteByte('\n')
	}
	data := sb.String()
	var idx bytes.Buffer
	assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(data)))
	fa, err := fasta.NewIndexed(strings.NewReader(data), &idx)
	assert.NoError(t, err)

	seq := want.String()
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for w := 0; w < len(errs); w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for start := uint64(w); start+100 <= uint64(len(seq)); start += 97 {
				got, err := fa.Get("chr1", start, start+100)
				if err != nil {
					errs[w] = err
					return
				}
				if got != seq[start:start+100] {
					errs[w] = fmt.Errorf("chr1:%d: got %s", start, got)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		expect.NoError(t, err)
	}
}

func TestGenerateIndex(t *testing.T) {
	generateIndex := func(fa string) (faidx string) {
		idx := bytes.Buffer{}
		assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(fa)))
		return idx.String()
	}

	fa := `>E0
GGTGAAATC
CCTGAAATC
AAAATTGCT
>E1
GTCCCTCCCCAGACATGGCCCTGGGAGGC
>E2
CCGCGCCCGCGCCCCCGCCGCC
>E3
GTCAAGGTTGCACAG
>E4
ATGAATCATGTGGTAAAA
`
	fai := generateIndex(fa)
	assert.EQ(t, fai, `E0	27	4	9	10
E1	29	38	29	30
E2	22	72	22	23
E3	15	99	15	16
E4	18	119	18	19
`)
	indexed, err := fasta.NewIndexed(strings.NewReader(fa), strings.NewReader(fai))
	assert.NoError(t, err)
	l, err := indexed.Len("E3")
	assert.NoError(t, err)
	assert.EQ(t, l, uint64(15))
	seq, err := indexed.Get("E3", 0, l)
	assert.NoError(t, err)
	assert.EQ(t, seq, "GTCAAGGTTGCACAG")
	seq, err = indexed.Get("E0", 7, 20)
	assert.NoError(t, err)
	assert.EQ(t, seq, "TCCCTGAAATCAA")

	// DOS line endings.
	assert.EQ(t, generateIndex(">E0\r\nGGGG\r\n>E1\r\nAAAAA\r\n"),
		`E0	4	5	4	6
E1	5	16	5	7
`)

	// No newline at the end.
	assert.EQ(t, generateIndex(">E0\nGGGG\n>E1\nCCCCC\nAAAAA"),
		`E0	4	4	4	5
E1	10	13	5	6
`)
	assert.EQ(t, generateIndex(">E0\nGGGG\n>E1\nAAAAA"),
		`E0	4	4	4	5
E1	5	13	5	5
`)

	idx := bytes.Buffer{}
	assert.Regexp(t, fasta.GenerateIndex(&idx, strings.NewReader("")), "empty FASTA")
	idx.Reset()
	expect.NotNil(t, fasta.GenerateIndex(&idx, strings.NewReader(">E0\nGG\nGGGG\n")))
}
