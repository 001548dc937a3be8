package splice

import "fmt"

// Stats counts junction-calling work.
type Stats struct {
	// Partitions is the number of partitions processed.
	Partitions int
	// Records is the number of candidate intron records read.
	Records int
	// Candidates is the number of distinct (start, end) candidate introns.
	Candidates int
	// Clusters is the number of clusters formed, before the boundary filter.
	Clusters int
	// BoundaryFiltered is the number of clusters attributed to an adjacent
	// partition.
	BoundaryFiltered int
	// NoMotif is the number of clusters without any donor/acceptor motif.
	NoMotif int
	// RegionFiltered is the number of calls outside the target regions.
	RegionFiltered int
	// Junctions is the number of accepted splice calls.
	Junctions int
	// Lines is the number of output lines.
	Lines int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.Partitions += o.Partitions
	s.Records += o.Records
	s.Candidates += o.Candidates
	s.Clusters += o.Clusters
	s.BoundaryFiltered += o.BoundaryFiltered
	s.NoMotif += o.NoMotif
	s.RegionFiltered += o.RegionFiltered
	s.Junctions += o.Junctions
	s.Lines += o.Lines
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("partitions=%d in/out=%d/%d candidates=%d clusters=%d (boundary-filtered=%d, no-motif=%d, region-filtered=%d) junctions=%d",
		s.Partitions, s.Records, s.Lines, s.Candidates, s.Clusters, s.BoundaryFiltered, s.NoMotif, s.RegionFiltered, s.Junctions)
}

// ComposeStats counts read-composition work.
type ComposeStats struct {
	// Reads is the number of reads composed.
	Reads int
	// Readlets is the number of aligned readlets.
	Readlets int
	// Blocks is the number of merged exonic blocks.
	Blocks int
	// ShortGapsFilled and ShortGapsDropped count gaps treated as local
	// mismatches whose alignment did or did not reach MinExonIdentity.
	ShortGapsFilled  int
	ShortGapsDropped int
	// ExonFills counts gaps where the read is longer than the reference.
	ExonFills int
	// Introns counts candidate introns; Refined counts those whose boundary
	// was moved by refinement.
	Introns int
	Refined int
	// Exons and IntronRecords count output lines.
	Exons         int
	IntronRecords int
}

// Merge adds the field values of the two ComposeStats objects and creates
// new ComposeStats.
func (s ComposeStats) Merge(o ComposeStats) ComposeStats {
	s.Reads += o.Reads
	s.Readlets += o.Readlets
	s.Blocks += o.Blocks
	s.ShortGapsFilled += o.ShortGapsFilled
	s.ShortGapsDropped += o.ShortGapsDropped
	s.ExonFills += o.ExonFills
	s.Introns += o.Introns
	s.Refined += o.Refined
	s.Exons += o.Exons
	s.IntronRecords += o.IntronRecords
	return s
}

func (s ComposeStats) String() string {
	return fmt.Sprintf("reads=%d readlets=%d blocks=%d short-gaps=%d/%d exon-fills=%d introns=%d (refined=%d) out=%d/%d",
		s.Reads, s.Readlets, s.Blocks, s.ShortGapsFilled, s.ShortGapsFilled+s.ShortGapsDropped, s.ExonFills, s.Introns, s.Refined, s.Exons, s.IntronRecords)
}
