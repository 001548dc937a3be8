package readlet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	opts := Opts{Length: 4, Interval: 3}
	rlets, err := Split("ACGTACGTAC", "ABCDEFGHIJ", opts)
	require.NoError(t, err)
	require.Len(t, rlets, 3)
	expect.EQ(t, rlets[0], Readlet{0, "ACGT", "ABCD"})
	expect.EQ(t, rlets[1], Readlet{1, "TACG", "DEFG"})
	expect.EQ(t, rlets[2], Readlet{2, "GTAC", "GHIJ"})

	rlets, err = Split("ACG", "III", opts)
	require.NoError(t, err)
	expect.EQ(t, rlets, []Readlet{{0, "ACG", "III"}})

	rlets, err = Split(strings.Repeat("A", 100), strings.Repeat("I", 100), DefaultOpts)
	require.NoError(t, err)
	expect.EQ(t, len(rlets), 19)
	for i, rl := range rlets {
		expect.EQ(t, rl.Index, i)
		expect.EQ(t, len(rl.Seq), DefaultOpts.Length)
	}

	for _, bad := range []Opts{{Length: 4}, {Interval: 3}, {Length: 4, Interval: -1}} {
		_, err = Split("ACGTACGTAC", "ABCDEFGHIJ", bad)
		expect.True(t, errors.Is(errors.Invalid, err), bad)
	}
}

func TestParseName(t *testing.T) {
	n, err := ParseName("r1;LB:lib1;3;10;ACGT")
	assert.NoError(t, err)
	expect.EQ(t, n, Name{Read: "r1;LB:lib1", Index: 3, Total: 10, Seq: "ACGT"})
	expect.EQ(t, n.String(), "r1;LB:lib1;3;10;ACGT")

	for _, bad := range []string{"r1;3;ACGT", "r1;x;10;ACGT", "r1;3;y;ACGT", "r1;10;10;ACGT", "r1;0;0;A"} {
		_, err := ParseName(bad)
		expect.True(t, errors.Is(errors.Invalid, err), bad)
	}
}

func TestSampleLabel(t *testing.T) {
	tests := []struct {
		name, want string
		wantErr    bool
	}{
		{"0;LB:test", "test", false},
		{"read7;LB:lib1;extra", "lib1", false},
		{"LB:x", "x", false},
		{"read7", "", true},
		{"read7;LB:", "", true},
	}
	for _, tt := range tests {
		got, err := SampleLabel(tt.name)
		expect.EQ(t, got, tt.want, tt.name)
		expect.EQ(t, err != nil, tt.wantErr, tt.name)
	}
}

func TestReadletize(t *testing.T) {
	in := strings.Join([]string{
		"r1;LB:a\tACGTACGTAC\tABCDEFGHIJ",
		"r2;LB:b\tACGTAC\tIIIIII\tGGGG\tJJJJ",
		"r3;LB:c\tAC\tII\tr3b;LB:c\tTT\tKK",
		"r4;LB:d\tACGT\tIIII\tr4b\tTTTT\tKKKK",
		"",
	}, "\n")
	var out bytes.Buffer
	stats, err := Readletize(strings.NewReader(in), &out, Opts{Length: 4, Interval: 3})
	assert.NoError(t, err)
	expect.EQ(t, stats, Stats{Lines: 4, Reads: 7, Readlets: 9})
	expect.EQ(t, out.String(), strings.Join([]string{
		"r1;LB:a;0;3;ACGTACGTAC\tACGT\tABCD",
		"r1;LB:a;1;3;ACGTACGTAC\tTACG\tDEFG",
		"r1;LB:a;2;3;ACGTACGTAC\tGTAC\tGHIJ",
		"r2;LB:b;M:1;0;1;ACGTAC\tACGT\tIIII",
		"r2;LB:b;M:2;0;1;GGGG\tGGGG\tJJJJ",
		"r3;LB:c;0;1;AC\tAC\tII",
		"r3b;LB:c;0;1;TT\tTT\tKK",
		"r4;LB:d;0;1;ACGT\tACGT\tIIII",
		"r4b;LB:d;0;1;TTTT\tTTTT\tKKKK",
		"",
	}, "\n"))
}

func TestReadletizeErrors(t *testing.T) {
	for _, in := range []string{
		"r1;LB:a\tACGT\n",
		"r1\tACGT\tIIII\n",
		"r1;LB:a\tA\tI\tC\tI\tG\tI\n",
	} {
		var out bytes.Buffer
		_, err := Readletize(strings.NewReader(in), &out, DefaultOpts)
		expect.NotNil(t, err, in)
	}
	_, err := Readletize(strings.NewReader(""), &bytes.Buffer{}, Opts{Length: 4})
	expect.NotNil(t, err)
}
