package readlet

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// Stats counts readletization work.
type Stats struct {
	// Lines is the number of input lines.
	Lines int
	// Reads is the number of reads (mates count separately).
	Reads int
	// Readlets is the number of readlets written.
	Readlets int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Lines += o.Lines
	s.Reads += o.Reads
	s.Readlets += o.Readlets
	return s
}

type mate struct {
	name, seq, qual string
}

// parseReadLine splits a tab-delimited read line.  Unpaired reads have three
// columns (name, seq, qual); paired reads have five (name, seq1, qual1, seq2,
// qual2) or six (name1, seq1, qual1, name2, seq2, qual2).
func parseReadLine(line string) ([]mate, error) {
	toks := strings.Split(line, "\t")
	var mates []mate
	switch len(toks) {
	case 3:
		mates = []mate{{toks[0], toks[1], toks[2]}}
	case 5:
		mates = []mate{{toks[0], toks[1], toks[2]}, {toks[0], toks[3], toks[4]}}
	case 6:
		mates = []mate{{toks[0], toks[1], toks[2]}, {toks[3], toks[4], toks[5]}}
	default:
		return nil, errors.E(errors.Invalid, fmt.Sprintf("wrong number of tokens (%d)", len(toks)))
	}
	// The label of the first name stands for the pair.
	label, err := SampleLabel(mates[0].name)
	if err != nil {
		return nil, err
	}
	if len(mates) == 2 {
		if !strings.Contains(mates[1].name, labelPrefix) {
			mates[1].name += ";" + labelPrefix + label
		}
		// Readlets are regrouped by read name, so mates must not share one.
		if mates[0].name == mates[1].name {
			mates[0].name += ";M:1"
			mates[1].name += ";M:2"
		}
	}
	return mates, nil
}

// Readletize reads tab-delimited reads from in and writes one line per
// readlet to out:
//
//   <name>;<index>;<total>;<read seq> TAB <readlet seq> TAB <readlet qual>
//
// Any malformed read line stops the run with an error.
//
// Reads are scanned line by line rather than through a TSV reader because
// quality strings may contain '"', which CSV-style readers treat as quoting.
func Readletize(in io.Reader, out io.Writer, opts Opts) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}
	var (
		stats   Stats
		scanner = bufio.NewScanner(in)
		w       = tsv.NewWriter(out)
	)
	scanner.Buffer(make([]byte, 64<<10), 64<<20)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		mates, err := parseReadLine(line)
		if err != nil {
			return stats, errors.E(fmt.Sprintf("line %d", stats.Lines), err)
		}
		for _, m := range mates {
			stats.Reads++
			rlets, err := Split(m.seq, m.qual, opts)
			if err != nil {
				return stats, err
			}
			for _, rl := range rlets {
				w.WriteString(Name{Read: m.name, Index: rl.Index, Total: len(rlets), Seq: m.seq}.String())
				w.WriteString(rl.Seq)
				w.WriteString(rl.Qual)
				if err := w.EndLine(); err != nil {
					return stats, err
				}
				stats.Readlets++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, w.Flush()
}
