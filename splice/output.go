package splice

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/tsv"
)

// Call is the accepted splice call of one cluster.
type Call struct {
	RName   string
	Reverse bool
	Site    Site
	// Cluster lists the reads supporting the call.
	Cluster Cluster
}

// Overhangs returns the longest read overhang on each side of the call,
// over all supporting reads.
func (c Call) Overhangs() (left, right int64) {
	for _, m := range c.Cluster {
		if oh := c.Site.Start - m.Start + m.FivePrime; oh > left {
			left = oh
		}
		if oh := m.End - c.Site.End + m.ThreePrime; oh > right {
			right = oh
		}
	}
	return left, right
}

// sampleCount is the number of reads of one sample supporting a call.
type sampleCount struct {
	sample string
	count  int
}

// sampleCounts returns the number of supporting reads per sample, sorted by
// sample label.
func (c Call) sampleCounts() []sampleCount {
	counts := map[string]int{}
	for _, m := range c.Cluster {
		counts[m.Sample]++
	}
	sc := make([]sampleCount, 0, len(counts))
	for s, n := range counts {
		sc = append(sc, sampleCount{s, n})
	}
	sort.Slice(sc, func(i, j int) bool { return sc[i].sample < sc[j].sample })
	return sc
}

// Writer writes splice calls as "span", "site" and "junction" lines.
// Junctions are numbered JUNC00000001, JUNC00000002, ... in the order they are
// written.  Writer is not thread safe.
type Writer struct {
	w         *tsv.Writer
	opts      Opts
	junctions int
	lines     int
}

// NewWriter creates a Writer.  opts selects the kinds of lines written.
func NewWriter(w io.Writer, opts Opts) *Writer {
	return &Writer{w: tsv.NewWriter(w), opts: opts}
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int { return w.lines }

// Junctions returns the number of junction lines written so far.
func (w *Writer) Junctions() int { return w.junctions }

func (w *Writer) endLine() error {
	w.lines++
	return w.w.EndLine()
}

func (w *Writer) writeSite(c Call) {
	w.w.WriteString(c.RName)
	w.w.WriteInt64(c.Site.Start)
	w.w.WriteInt64(c.Site.End)
	w.w.WriteString(c.Site.Donor)
	w.w.WriteString(c.Site.Acceptor)
}

// Write writes the lines of one call.
func (w *Writer) Write(c Call) error {
	if w.opts.PerSpan {
		for _, m := range c.Cluster {
			w.w.WriteString("span")
			w.writeSite(c)
			w.w.WriteString(m.Sample)
			if err := w.endLine(); err != nil {
				return err
			}
		}
	}
	if w.opts.PerSite {
		for _, sc := range c.sampleCounts() {
			w.w.WriteString("site")
			w.writeSite(c)
			w.w.WriteString(sc.sample)
			w.w.WriteInt64(int64(sc.count))
			if err := w.endLine(); err != nil {
				return err
			}
		}
	}
	if w.opts.OutputBED {
		w.junctions++
		left, right := c.Overhangs()
		leftPos, rightPos := c.Site.Start-left, c.Site.End+right
		strand := "+"
		if c.Reverse {
			strand = "-"
		}
		w.w.WriteString("junction")
		w.w.WriteString(c.RName)
		w.w.WriteInt64(leftPos)
		w.w.WriteInt64(rightPos)
		w.w.WriteString(fmt.Sprintf("JUNC%08d", w.junctions))
		w.w.WriteInt64(int64(len(c.Cluster)))
		w.w.WriteString(strand)
		w.w.WriteInt64(leftPos)
		w.w.WriteInt64(rightPos)
		w.w.WriteString("255,0,0")
		w.w.WriteString("2")
		w.w.WriteString(fmt.Sprintf("%d,%d", left, right))
		// blockStarts are relative to leftPos; the second block starts at the
		// intron end.
		w.w.WriteString(fmt.Sprintf("0,%d", c.Site.End-leftPos))
		if err := w.endLine(); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered lines.
func (w *Writer) Flush() error { return w.w.Flush() }
