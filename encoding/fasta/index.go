package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// GenerateIndex generates an index (*.fai) from FASTA.  The index can be later
// passed to NewIndexed() to random-access the FASTA file quickly.
//
// The index format is defined by "samtools faidx"
// (http://www.htslib.org/doc/faidx.html).  Every line of a sequence except
// the last must have the same width; GenerateIndex fails otherwise, since
// such a file can't be random-accessed.
func GenerateIndex(out io.Writer, in io.Reader) error {
	var (
		tsvOut   = tsv.NewWriter(out)
		r        = bufio.NewReader(in)
		cur      *indexEntry
		curName  string
		shortRow bool
		cumByte  uint64
		lineNum  int
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		tsvOut.WriteString(curName)
		tsvOut.WriteInt64(int64(cur.length))
		tsvOut.WriteInt64(int64(cur.offset))
		tsvOut.WriteInt64(int64(cur.lineBase))
		tsvOut.WriteInt64(int64(cur.lineWidth))
		return tsvOut.EndLine()
	}
	for {
		fullLine, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return errors.E(err, "fasta.GenerateIndex")
		}
		eof := err == io.EOF
		lineNum++
		cumByte += uint64(len(fullLine))
		line := bytes.TrimRight(fullLine, "\r\n")
		switch {
		case len(line) == 0:
		case line[0] == '>':
			if err := flush(); err != nil {
				return err
			}
			curName = seqNameOf(string(line[1:]))
			if curName == "" {
				return errors.E(errors.Invalid, fmt.Sprintf("fasta.GenerateIndex: empty sequence name on line %d", lineNum))
			}
			cur = &indexEntry{offset: cumByte}
			shortRow = false
		case cur == nil:
			return errors.E(errors.Invalid, "fasta.GenerateIndex: malformed FASTA file")
		default:
			if cur.lineWidth == 0 {
				cur.lineWidth = uint64(len(fullLine))
				cur.lineBase = uint64(len(line))
			} else if shortRow || uint64(len(line)) > cur.lineBase {
				return errors.E(errors.Invalid, fmt.Sprintf("fasta.GenerateIndex: uneven line length in sequence %s, line %d", curName, lineNum))
			}
			if uint64(len(line)) < cur.lineBase {
				shortRow = true
			}
			cur.length += uint64(len(line))
		}
		if eof {
			break
		}
	}
	if cumByte == 0 {
		return errors.E(errors.Invalid, "empty FASTA file")
	}
	if err := flush(); err != nil {
		return err
	}
	return tsvOut.Flush()
}
