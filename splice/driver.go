package splice

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/splice/interval"
	"github.com/grailbio/splice/partition"
	"golang.org/x/sync/errgroup"
)

// intronRow is one input record of the Driver.
type intronRow struct {
	Partition  string
	Sample     string
	Start      int64
	End        int64
	FivePrime  int64
	ThreePrime int64
}

// partitionUnit holds the candidate introns of one stranded partition.
type partitionUnit struct {
	idx     int
	pid     string
	id      partition.ID
	reverse bool
	records int
	cands   Candidates
}

// partitionResult is the outcome of one partitionUnit.
type partitionResult struct {
	calls []Call
	stats Stats
}

// Driver calls splice junctions from candidate intron records grouped by
// partition.
type Driver struct {
	ref     Reference
	opts    Opts
	regions *interval.RegionSet
}

// NewDriver creates a Driver.  If regions is not nil, calls that do not
// overlap any region are dropped.
func NewDriver(ref Reference, opts Opts, regions *interval.RegionSet) (*Driver, error) {
	if opts.BinSize <= 0 || opts.PartitionOverlap < 0 || opts.ClusterRadius < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("splice.NewDriver: bad options %+v", opts))
	}
	return &Driver{ref: ref, opts: opts, regions: regions}, nil
}

// CallPartition clusters and ranks the candidate introns of the stranded
// partition pid, and returns the top call of every cluster that has one, in
// cluster order.
func (d *Driver) CallPartition(pid string, cands Candidates) ([]Call, Stats, error) {
	id, reverse, err := partition.ParseStranded(pid)
	if err != nil {
		return nil, Stats{}, err
	}
	return d.callPartition(partitionUnit{pid: pid, id: id, reverse: reverse, cands: cands})
}

func (d *Driver) callPartition(u partitionUnit) ([]Call, Stats, error) {
	stats := Stats{Partitions: 1, Records: u.records}
	start, end := u.id.Bounds(d.opts.BinSize)
	clusters, cstats, err := ClusterCandidates(u.cands, start, end, d.opts.ClusterRadius, u.pid)
	stats.Candidates = cstats.Candidates
	stats.Clusters = cstats.Clusters
	stats.BoundaryFiltered = cstats.BoundaryFiltered
	if err != nil {
		return nil, stats, err
	}
	motifs := MotifsFor(u.reverse)
	calls := make([]Call, 0, len(clusters))
	for _, c := range clusters {
		sites, err := RankSites(d.ref, u.id.RName, c, motifs)
		if err != nil {
			return nil, stats, errors.E(err, fmt.Sprintf("partition %s", u.pid))
		}
		if len(sites) == 0 {
			log.Debug.Printf("partition %s: no splice motif around cluster of %d read(s) at [%d,%d)",
				u.pid, len(c), c[0].Start, c[0].End)
			stats.NoMotif++
			continue
		}
		top := sites[0]
		if d.regions != nil && !d.regions.Overlaps(u.id.RName, interval.Interval{Start: top.Start - 1, End: top.End - 1}) {
			stats.RegionFiltered++
			continue
		}
		calls = append(calls, Call{RName: u.id.RName, Reverse: u.reverse, Site: top, Cluster: c})
	}
	stats.Junctions = len(calls)
	return calls, stats, nil
}

// readPartitions parses intron records and sends one partitionUnit per
// partition to units, in input order.  Records of a partition must be
// contiguous.
func (d *Driver) readPartitions(ctx context.Context, in io.Reader, units chan<- partitionUnit) error {
	r := tsv.NewReader(in)
	r.LazyQuotes = true
	r.FieldsPerRecord = 6
	var (
		row   intronRow
		line  int
		unit  partitionUnit
		seen  = map[string]bool{}
		lo    int64
		hi    int64
		nUnit int
	)
	send := func() error {
		if unit.records == 0 {
			return nil
		}
		select {
		case units <- unit:
		case <-ctx.Done():
			return ctx.Err()
		}
		nUnit++
		return nil
	}
	for {
		err := r.Read(&row)
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return errors.E(errors.Invalid, fmt.Sprintf("intron record %d", line), err)
		}
		if row.Partition != unit.pid {
			if seen[row.Partition] {
				return errors.E(errors.Invalid, fmt.Sprintf("intron record %d: records of partition %s are not contiguous", line, row.Partition))
			}
			id, reverse, err := partition.ParseStranded(row.Partition)
			if err != nil {
				return errors.E(fmt.Sprintf("intron record %d", line), err)
			}
			if err := send(); err != nil {
				return err
			}
			seen[row.Partition] = true
			unit = partitionUnit{idx: nUnit, pid: row.Partition, id: id, reverse: reverse, cands: Candidates{}}
			lo, hi = id.Bounds(d.opts.BinSize)
			lo, hi = lo-d.opts.PartitionOverlap, hi+d.opts.PartitionOverlap
		}
		if row.End <= row.Start {
			return errors.E(errors.Invalid, fmt.Sprintf("intron record %d: end %d is not after start %d", line, row.End, row.Start))
		}
		if row.End < lo || row.End >= hi {
			return errors.E(errors.Invalid, fmt.Sprintf("intron record %d: end %d is outside partition %s widened to [%d,%d)", line, row.End, row.Partition, lo, hi))
		}
		unit.records++
		unit.cands.Add(row.Start, row.End, Support{Sample: row.Sample, FivePrime: row.FivePrime, ThreePrime: row.ThreePrime})
	}
	return send()
}

// Run reads candidate intron records from in and writes the calls to out.
//
// Input lines are
//
//   <rname>;<bin><+|-> <sample> <start> <end> <5' displacement> <3' displacement>
//
// with 1-indexed start and exclusive end.  Partitions are processed
// concurrently and written in input order.  Any malformed record stops the
// run.
func (d *Driver) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	parallelism := d.opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	queueSize := d.opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultOpts.QueueSize
	}
	var (
		stats   Stats
		readErr error
		units   = make(chan partitionUnit, parallelism)
		q       = syncqueue.NewOrderedQueue(queueSize)
		w       = NewWriter(out, d.opts)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(units)
		err := d.readPartitions(gctx, in, units)
		// Once gctx is done, err only reports a cancellation caused
		// elsewhere, and the cause is what Run returns.
		if err != nil && gctx.Err() == nil {
			readErr = err
			q.Close(err) // nolint: errcheck
		}
		return err
	})
	g.Go(func() error {
		var wg errgroup.Group
		for i := 0; i < parallelism; i++ {
			wg.Go(func() error {
				for u := range units {
					calls, s, err := d.callPartition(u)
					if err != nil {
						q.Close(err) // nolint: errcheck
						return err
					}
					if err := q.Insert(u.idx, partitionResult{calls, s}); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := wg.Wait(); err != nil {
			// Drain so that the reader is not blocked.
			for range units {
			}
			return err
		}
		return q.Close(nil)
	})
	g.Go(func() error {
		for {
			v, ok, err := q.Next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			res := v.(partitionResult)
			stats = stats.Merge(res.stats)
			for _, c := range res.calls {
				if err := w.Write(c); err != nil {
					q.Close(err) // nolint: errcheck
					return err
				}
			}
		}
	})
	err := g.Wait()
	stats.Lines = w.Lines()
	if readErr != nil {
		// The other stages fail as a consequence of an input error.
		err = readErr
	}
	if err != nil {
		return stats, err
	}
	if err := w.Flush(); err != nil {
		return stats, err
	}
	log.Printf("splice.Driver: %v", stats)
	return stats, nil
}
