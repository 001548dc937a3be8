package splice

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/splice/encoding/fasta"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const referenceFasta = ">chr1 first\nacgtACGTac\nGTA\n>chr2\nTTTT\n"

func checkReference(t *testing.T, ref Reference) {
	n, err := ref.Len("chr1")
	assert.NoError(t, err)
	expect.EQ(t, n, int64(13))

	s, err := ref.Fetch("chr1", 1, 4)
	assert.NoError(t, err)
	expect.EQ(t, s, "ACGT")
	s, err = ref.Fetch("chr1", 9, 5)
	assert.NoError(t, err)
	expect.EQ(t, s, "ACGTA")
	s, err = ref.Fetch("chr2", 4, 0)
	assert.NoError(t, err)
	expect.EQ(t, s, "")

	_, err = ref.Fetch("chr1", 10, 5)
	expect.True(t, errors.Is(errors.Invalid, err))
	_, err = ref.Fetch("chr1", 0, 1)
	expect.True(t, errors.Is(errors.Invalid, err))
	_, err = ref.Len("chr3")
	expect.True(t, errors.Is(errors.NotExist, err))
	_, err = ref.Fetch("chr3", 1, 1)
	expect.True(t, errors.Is(errors.NotExist, err))
}

func TestReference(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(referenceFasta))
	assert.NoError(t, err)
	checkReference(t, NewReference(fa))
}

func TestOpenReference(t *testing.T) {
	ctx := context.Background()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "ref.fa")
	assert.NoError(t, ioutil.WriteFile(path, []byte(referenceFasta), 0644))

	// Without an index.
	ref, err := OpenReference(ctx, path)
	assert.NoError(t, err)
	checkReference(t, ref)

	// With an index.
	var index bytes.Buffer
	assert.NoError(t, fasta.GenerateIndex(&index, strings.NewReader(referenceFasta)))
	assert.NoError(t, ioutil.WriteFile(path+".fai", index.Bytes(), 0644))
	ref, err = OpenReference(ctx, path)
	assert.NoError(t, err)
	checkReference(t, ref)

	_, err = OpenReference(ctx, filepath.Join(tempDir, "missing.fa"))
	expect.NotNil(t, err)
}
