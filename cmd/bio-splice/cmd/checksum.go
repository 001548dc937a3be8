package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/splice/util"
)

// kindChecksum summarizes the lines of one kind ("span", "site", ...).
type kindChecksum struct {
	// Kind is the first field of the lines.
	Kind string
	// NLines is the number of lines.
	NLines int64
	// SumHash is the sum of the seahash values of the lines.  Summing makes
	// the checksum independent of line order.
	SumHash uint64
}

// checksumLines computes per-kind checksums of the lines of r, sorted by
// kind.
func checksumLines(r io.Reader) ([]kindChecksum, error) {
	byKind := map[string]*kindChecksum{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 64<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		kind := line
		if i := bytes.IndexByte(line, '\t'); i >= 0 {
			kind = line[:i]
		}
		c := byKind[string(kind)]
		if c == nil {
			c = &kindChecksum{Kind: string(kind)}
			byKind[c.Kind] = c
		}
		c.NLines++
		c.SumHash += seahash.Sum64(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	csums := make([]kindChecksum, 0, len(byKind))
	for _, c := range byKind {
		csums = append(csums, *c)
	}
	sort.Slice(csums, func(i, j int) bool { return csums[i].Kind < csums[j].Kind })
	return csums, nil
}

func checksum(ctx context.Context, path string, w io.Writer) (err error) {
	in, err := util.Open(ctx, path)
	if err != nil {
		return err
	}
	defer closeInput(ctx, in, &err)
	csums, err := checksumLines(in)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(csums, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(js))
	return err
}
