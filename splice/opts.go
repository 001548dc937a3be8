package splice

import "github.com/grailbio/splice/align"

// Opts configures junction calling over partitions.
type Opts struct {
	// BinSize is the partition length.
	BinSize int64
	// PartitionOverlap is the number of bases by which partitions are widened
	// on either side when candidate introns are assigned to them.
	PartitionOverlap int64
	// ClusterRadius is the maximum end-position distance (inclusive) between a
	// cluster seed and the same-length candidates it absorbs.
	ClusterRadius int64

	// PerSpan emits one "span" line per read supporting a call.
	PerSpan bool
	// PerSite emits one "site" line per (call, sample).
	PerSite bool
	// OutputBED emits one BED-style "junction" line per call.
	OutputBED bool

	// Parallelism is the number of partitions processed concurrently.  If <= 0,
	// runtime.NumCPU() is used.
	Parallelism int
	// QueueSize bounds the number of processed partitions buffered while
	// waiting for an earlier partition to be written.
	QueueSize int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	BinSize:          10000, // -bin-size
	PartitionOverlap: 20,    // -partition-overlap
	ClusterRadius:    5,     // -cluster-radius
	PerSpan:          true,  // -per-span
	PerSite:          false, // -per-site
	OutputBED:        true,  // -bed
	Parallelism:      0,     // -parallelism
	QueueSize:        256,
}

// ComposeOpts configures per-read alignment composition.
type ComposeOpts struct {
	// ReadletInterval is the distance between the read offsets of consecutive
	// readlets.  It must match the value used to readletize.
	ReadletInterval int
	// SpliceOverlap is the number of aligned bases on either side of an
	// unaligned read stretch included when refining an intron boundary.
	SpliceOverlap int

	// BinSize and PartitionOverlap determine the partitions exon and intron
	// records are assigned to.  They must match the Opts used downstream.
	BinSize          int64
	PartitionOverlap int64

	// ShortGapTolerance is the relative difference between the reference gap
	// and the read gap below which a gap is treated as a local mismatch
	// rather than an intron.
	ShortGapTolerance float64
	// MinExonIdentity is the minimum alignment score, as a fraction of the
	// read gap length, for a local mismatch to be filled as exon.
	MinExonIdentity float64
	// Scoring is used for all alignments.
	Scoring align.Scoring
	// Refine enables intron boundary refinement.
	Refine bool

	// Parallelism is the number of reads composed concurrently.  If <= 0,
	// runtime.NumCPU() is used.
	Parallelism int
	// BatchSize is the number of reads composed per parallel batch.
	BatchSize int
}

// DefaultComposeOpts sets the default values to ComposeOpts.
var DefaultComposeOpts = ComposeOpts{
	ReadletInterval:   4,  // -readlet-interval
	SpliceOverlap:     10, // -splice-overlap
	BinSize:           DefaultOpts.BinSize,
	PartitionOverlap:  DefaultOpts.PartitionOverlap,
	ShortGapTolerance: 0.05,
	MinExonIdentity:   0.9,
	Scoring:           align.DefaultScoring,
	Refine:            true, // -refine
	Parallelism:       0,
	BatchSize:         4096,
}
