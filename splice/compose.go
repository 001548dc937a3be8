package splice

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/splice/align"
	"github.com/grailbio/splice/interval"
	"github.com/grailbio/splice/partition"
	"github.com/grailbio/splice/readlet"
)

// ExonRecord is an exonic stretch of one read, assigned to one partition.
// Coordinates are 0-based, half-open.
type ExonRecord struct {
	Partition string
	Start     int64
	End       int64
	RName     string
	Sample    string
}

// IntronRecord is one read's support for a candidate intron, assigned to one
// partition.  It is the input record of the junction Driver.  Start and End
// are 1-indexed; End is exclusive.
type IntronRecord struct {
	// Partition is a stranded partition id.
	Partition string
	Sample    string
	Start     int64
	End       int64
	// FivePrime and ThreePrime are the number of read bases left and right of
	// the intron, on the forward reference strand.
	FivePrime  int64
	ThreePrime int64
}

// Composer turns the readlet alignments of a read into exon and candidate
// intron records.  It is safe for concurrent use.
type Composer struct {
	ref  Reference
	opts ComposeOpts
}

// NewComposer creates a Composer.
func NewComposer(ref Reference, opts ComposeOpts) (*Composer, error) {
	if opts.ReadletInterval <= 0 || opts.BinSize <= 0 || opts.SpliceOverlap < 0 || opts.PartitionOverlap < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("splice.NewComposer: bad options %+v", opts))
	}
	return &Composer{ref: ref, opts: opts}, nil
}

// Composition is the result of composing one read.
type Composition struct {
	Exons   []ExonRecord
	Introns []IntronRecord
	Stats   ComposeStats
}

// strandKey identifies the alignments of a read to one reference strand.
type strandKey struct {
	rname   string
	reverse bool
}

// readFrame holds the alignments of a read to one reference strand.
type readFrame struct {
	blocks interval.FlatIntervals
	// offsets maps every readlet endpoint on the reference to the
	// corresponding offset in the read, both on the forward reference strand.
	offsets map[int64]int64
}

// Compose composes one read.  Alignments to each (reference, strand) are
// composed independently, in order of first appearance.
func (c *Composer) Compose(read readlet.Read) (Composition, error) {
	var out Composition
	sample, err := readlet.SampleLabel(read.Name)
	if err != nil {
		return out, err
	}
	n := int64(len(read.Seq))
	var (
		keys   []strandKey
		frames = map[strandKey]*readFrame{}
		ival   = int64(c.opts.ReadletInterval)
	)
	for _, a := range read.Alignments {
		k := strandKey{a.RName, a.Reverse}
		f := frames[k]
		if f == nil {
			f = &readFrame{offsets: map[int64]int64{}}
			frames[k] = f
			keys = append(keys, k)
		}
		iv, err := interval.New(a.Pos, a.Pos+a.Len)
		if err != nil || a.Len <= 0 {
			return out, errors.E(errors.Invalid, fmt.Sprintf("splice.Compose: read %s: bad readlet alignment %+v", read.Name, a))
		}
		f.blocks.Add(iv)
		readStart := int64(a.Index) * ival
		if a.Reverse {
			f.offsets[iv.Start] = n - (readStart + a.Len)
			f.offsets[iv.End] = n - readStart
		} else {
			f.offsets[iv.Start] = readStart
			f.offsets[iv.End] = readStart + a.Len
		}
		out.Stats.Readlets++
	}
	out.Stats.Reads++
	for _, k := range keys {
		if err := c.composeFrame(read, sample, k, frames[k], &out); err != nil {
			return out, errors.E(err, fmt.Sprintf("splice.Compose: read %s on %s", read.Name, k.rname))
		}
	}
	return out, nil
}

func (c *Composer) addExon(out *Composition, rname, sample string, start, end int64) {
	for _, id := range partition.For(rname, start, end, c.opts.BinSize, 0) {
		out.Exons = append(out.Exons, ExonRecord{Partition: id.String(), Start: start, End: end, RName: rname, Sample: sample})
		out.Stats.Exons++
	}
}

func (c *Composer) addIntron(out *Composition, rname, sample string, reverse bool, start, end, fivePrime, threePrime int64) {
	// Records move to 1-indexed coordinates here.
	start, end = start+1, end+1
	for _, id := range partition.For(rname, end, end+1, c.opts.BinSize, c.opts.PartitionOverlap) {
		out.Introns = append(out.Introns, IntronRecord{
			Partition:  id.Stranded(reverse),
			Sample:     sample,
			Start:      start,
			End:        end,
			FivePrime:  fivePrime,
			ThreePrime: threePrime,
		})
		out.Stats.IntronRecords++
	}
	out.Stats.Introns++
}

// fetch0 fetches the 0-based reference range [start, end).
func (c *Composer) fetch0(rname string, start, end int64) (string, error) {
	return c.ref.Fetch(rname, start+1, end-start)
}

func (c *Composer) composeFrame(read readlet.Read, sample string, k strandKey, f *readFrame, out *Composition) error {
	blocks := append([]interval.Interval(nil), f.blocks.Intervals()...)
	sort.Slice(blocks, func(i, j int) bool { return interval.Compare(blocks[i], blocks[j]) < 0 })
	seq := read.Seq
	if k.reverse {
		seq = align.ReverseComplement(seq)
	}
	n := int64(len(seq))
	for i, b := range blocks {
		out.Stats.Blocks++
		c.addExon(out, k.rname, sample, b.Start, b.End)
		if i+1 == len(blocks) {
			break
		}
		inStart, inEnd := b.End, blocks[i+1].Start
		regionStart, ok1 := f.offsets[inStart]
		regionEnd, ok2 := f.offsets[inEnd]
		if !ok1 || !ok2 {
			return errors.E(errors.Integrity, fmt.Sprintf("no read offset for gap [%d,%d)", inStart, inEnd))
		}
		refGap, readGap := inEnd-inStart, regionEnd-regionStart
		absGap := readGap
		if absGap < 0 {
			absGap = -absGap
		}
		switch {
		case math.Abs(float64(refGap-absGap))/float64(absGap+1) < c.opts.ShortGapTolerance:
			filled, err := c.shortGap(k.rname, seq, inStart, inEnd, regionStart, regionEnd)
			if err != nil {
				return err
			}
			if filled {
				out.Stats.ShortGapsFilled++
				c.addExon(out, k.rname, sample, inStart, inEnd)
			} else {
				out.Stats.ShortGapsDropped++
			}
		// The tolerance test above uses |readGap|, but this one is signed: a
		// negative read gap (readlets overlapping across a deletion) always
		// goes to the intron case.
		case readGap > refGap:
			out.Stats.ExonFills++
			c.addExon(out, k.rname, sample, inStart, inEnd)
		default:
			start, end, split, refined, err := c.refine(k.rname, seq, inStart, inEnd, regionStart, regionEnd)
			if err != nil {
				return err
			}
			fivePrime, threePrime := regionStart, n-regionEnd
			if refined {
				out.Stats.Refined++
				fivePrime, threePrime = split, n-split
			}
			c.addIntron(out, k.rname, sample, k.reverse, start, end, fivePrime, threePrime)
		}
	}
	return nil
}

// shortGap reports whether the unaligned read stretch [regionStart,
// regionEnd) aligns well enough to the reference stretch [inStart, inEnd) to
// be called exonic.
func (c *Composer) shortGap(rname, seq string, inStart, inEnd, regionStart, regionEnd int64) (bool, error) {
	readGap := regionEnd - regionStart
	if readGap <= 0 || regionStart < 0 || regionEnd > int64(len(seq)) {
		return false, nil
	}
	ref, err := c.fetch0(rname, inStart, inEnd)
	if err != nil {
		return false, err
	}
	score := align.Score(ref, seq[regionStart:regionEnd], c.opts.Scoring)
	return float64(score) >= c.opts.MinExonIdentity*float64(readGap), nil
}

// refine searches for the exact boundary of the intron [inStart, inEnd),
// given that read bases [regionStart, regionEnd) are unaligned.  The search
// aligns the unaligned bases, widened by SpliceOverlap on either side, to
// reference windows of the same length anchored at the two intron ends.
//
// It returns the intron and the read offset of the splice.  refined is false
// if the boundary was kept, in which case split is meaningless.
func (c *Composer) refine(rname, seq string, inStart, inEnd, regionStart, regionEnd int64) (start, end, split int64, refined bool, err error) {
	start, end = inStart, inEnd
	if !c.opts.Refine {
		return
	}
	o := int64(c.opts.SpliceOverlap)
	l := regionEnd - regionStart + 2*o
	refLen, err := c.ref.Len(rname)
	if err != nil {
		return
	}
	readLo, readHi := regionStart-o, regionEnd+o
	leftLo, rightHi := inStart-o, inEnd+o
	if l <= 0 || readLo < 0 || readHi > int64(len(seq)) || leftLo < 0 || rightHi > refLen || leftLo+l > refLen || rightHi-l < 0 {
		return
	}
	left, err := c.fetch0(rname, leftLo, leftLo+l)
	if err != nil {
		return
	}
	right, err := c.fetch0(rname, rightHi-l, rightHi)
	if err != nil {
		return
	}
	s, ok := align.FindSplit(seq[readLo:readHi], left, right, c.opts.Scoring)
	if !ok || s.Score <= 0 {
		return
	}
	return leftLo + int64(s.Ref), rightHi - l + int64(s.Ref), readLo + int64(s.Read), true, nil
}

// WriteExon writes an exon record:
//
//   exon <partition> <start, zero-padded to 12 digits> <end> <rname> <sample>
func WriteExon(w *tsv.Writer, r ExonRecord) error {
	w.WriteString("exon")
	w.WriteString(r.Partition)
	w.WriteString(fmt.Sprintf("%012d", r.Start))
	w.WriteInt64(r.End)
	w.WriteString(r.RName)
	w.WriteString(r.Sample)
	return w.EndLine()
}

// WriteIntron writes an intron record in the Driver's input format.
func WriteIntron(w *tsv.Writer, r IntronRecord) error {
	w.WriteString(r.Partition)
	w.WriteString(r.Sample)
	w.WriteInt64(r.Start)
	w.WriteInt64(r.End)
	w.WriteInt64(r.FivePrime)
	w.WriteInt64(r.ThreePrime)
	return w.EndLine()
}

// Run composes every read produced by sc.  Reads are composed in parallel in
// batches of BatchSize; records are written in read order.
func (c *Composer) Run(sc *readlet.Scanner, exons, introns io.Writer) (ComposeStats, error) {
	parallelism := c.opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	batchSize := c.opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultComposeOpts.BatchSize
	}
	var (
		stats   ComposeStats
		exonW   = tsv.NewWriter(exons)
		intronW = tsv.NewWriter(introns)
		batch   = make([]readlet.Read, 0, batchSize)
		results = make([]Composition, batchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		nJobs := parallelism
		if nJobs > len(batch) {
			nJobs = len(batch)
		}
		err := traverse.Each(nJobs, func(jobIdx int) error {
			for i := jobIdx; i < len(batch); i += nJobs {
				var err error
				if results[i], err = c.Compose(batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		for i := range batch {
			r := results[i]
			stats = stats.Merge(r.Stats)
			for _, e := range r.Exons {
				if err := WriteExon(exonW, e); err != nil {
					return err
				}
			}
			for _, in := range r.Introns {
				if err := WriteIntron(intronW, in); err != nil {
					return err
				}
			}
			results[i] = Composition{}
		}
		batch = batch[:0]
		return nil
	}
	for sc.Scan() {
		batch = append(batch, sc.Read())
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}
	if err := exonW.Flush(); err != nil {
		return stats, err
	}
	return stats, intronW.Flush()
}
