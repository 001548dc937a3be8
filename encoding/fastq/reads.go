package fastq

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// LabelName appends the sample label to a read name unless the name already
// carries one.
func LabelName(name, sample string) string {
	if strings.Contains(name, "LB:") {
		return name
	}
	return name + ";LB:" + sample
}

// ToReads converts FASTQ records into tab-delimited read lines, "name seq
// qual" for single-end input and "name1 seq1 qual1 name2 seq2 qual2" when r2
// is non-nil. Every name is given the sample label. It returns the number of
// lines written.
func ToReads(r1, r2 io.Reader, sample string, out io.Writer) (int, error) {
	if sample == "" || strings.ContainsAny(sample, ";\t") {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("fastq.ToReads: bad sample label %q", sample))
	}
	var (
		w     = tsv.NewWriter(out)
		n     int
		read1 Read
		read2 Read
	)
	write := func(r Read) {
		w.WriteString(LabelName(r.Name, sample))
		w.WriteString(r.Seq)
		w.WriteString(r.Qual)
	}
	if r2 == nil {
		s := NewScanner(r1)
		for s.Scan(&read1) {
			write(read1)
			if err := w.EndLine(); err != nil {
				return n, err
			}
			n++
		}
		if err := s.Err(); err != nil {
			return n, err
		}
		return n, w.Flush()
	}
	s := NewPairScanner(r1, r2)
	for s.Scan(&read1, &read2) {
		write(read1)
		write(read2)
		if err := w.EndLine(); err != nil {
			return n, err
		}
		n++
	}
	if err := s.Err(); err != nil {
		return n, err
	}
	return n, w.Flush()
}
