package cmd

import (
	"fmt"
	"log"
	"runtime"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/splice/interval"
	"github.com/grailbio/splice/readlet"
	"github.com/grailbio/splice/splice"
	"v.io/x/lib/cmdline"
)

func newCmdReadletize() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "readletize",
		Short: "Split reads into readlets for alignment",
		Long: `
Reads tab-separated reads, either "name seq qual" or paired
"name seq1 qual1 [name2] seq2 qual2", and writes one line per readlet.
Read names must carry a sample label, "LB:<label>".`,
		ArgsName: "inpath outpath",
	}
	opts := readlet.DefaultOpts
	cmd.Flags.IntVar(&opts.Length, "length", opts.Length, "Readlet length")
	cmd.Flags.IntVar(&opts.Interval, "interval", opts.Interval, "Distance between the starts of consecutive readlets")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("readletize takes inpath outpath, but got %v", argv)
		}
		return readletize(vcontext.Background(), opts, argv[0], argv[1])
	})
	return cmd
}

func newCmdFastq() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "fastq",
		Short: "Convert FASTQ files into labeled reads for readletize",
		Long: `
Reads one FASTQ file, or the R1 and R2 files of a paired run, and writes the
tab-separated read lines accepted by "readletize". Every read name is given
the sample label set by -sample.`,
		ArgsName: "r1path [r2path] outpath",
	}
	sample := cmd.Flags.String("sample", "", "Sample label added to every read name")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		switch len(argv) {
		case 2:
			return fastqReads(vcontext.Background(), *sample, argv[0], "", argv[1])
		case 3:
			return fastqReads(vcontext.Background(), *sample, argv[0], argv[1], argv[2])
		}
		return fmt.Errorf("fastq takes r1path [r2path] outpath, but got %v", argv)
	})
	return cmd
}

func newCmdCompose() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "compose",
		Short: "Compose readlet alignments into exon and candidate intron records",
		Long: `
Reads the aligner's SAM output for readlets produced by "readletize", and
writes exon records to exonpath and candidate intron records, the input of
"junctions", to intronpath.`,
		ArgsName: "fastapath sampath exonpath intronpath",
	}
	opts := splice.DefaultComposeOpts
	cmd.Flags.IntVar(&opts.ReadletInterval, "readlet-interval", opts.ReadletInterval, "Readlet interval used by readletize")
	cmd.Flags.IntVar(&opts.SpliceOverlap, "splice-overlap", opts.SpliceOverlap, "Aligned bases on either side of an unaligned stretch used to refine intron boundaries")
	cmd.Flags.Int64Var(&opts.BinSize, "bin-size", opts.BinSize, "Partition length")
	cmd.Flags.Int64Var(&opts.PartitionOverlap, "partition-overlap", opts.PartitionOverlap, "Margin by which partitions are widened when assigning introns")
	cmd.Flags.Float64Var(&opts.ShortGapTolerance, "short-gap-tolerance", opts.ShortGapTolerance, "Relative read/reference gap length difference below which a gap is a local mismatch")
	cmd.Flags.Float64Var(&opts.MinExonIdentity, "min-exon-identity", opts.MinExonIdentity, "Minimum alignment score per base for a local mismatch to be filled as exon")
	cmd.Flags.BoolVar(&opts.Refine, "refine", opts.Refine, "Refine intron boundaries by alignment")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", runtime.NumCPU(), "Number of reads composed concurrently")
	cmd.Flags.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "Number of reads composed per batch")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 4 {
			return fmt.Errorf("compose takes fastapath sampath exonpath intronpath, but got %v", argv)
		}
		return compose(vcontext.Background(), opts, argv[0], argv[1], argv[2], argv[3])
	})
	return cmd
}

func newCmdJunctions() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "junctions",
		Short: "Call splice junctions from candidate intron records",
		Long: `
Reads candidate intron records grouped by partition id, clusters them per
partition, ranks donor/acceptor motifs around every cluster and writes the
top call of each cluster as "span", "site" and "junction" lines.`,
		ArgsName: "fastapath intronpath outpath",
	}
	opts := splice.DefaultOpts
	cmd.Flags.Int64Var(&opts.BinSize, "bin-size", opts.BinSize, "Partition length")
	cmd.Flags.Int64Var(&opts.PartitionOverlap, "partition-overlap", opts.PartitionOverlap, "Margin by which partitions are widened when assigning introns")
	cmd.Flags.Int64Var(&opts.ClusterRadius, "cluster-radius", opts.ClusterRadius, "Maximum end distance between clustered candidate introns")
	cmd.Flags.BoolVar(&opts.PerSpan, "per-span", opts.PerSpan, "Write one span line per supporting read")
	cmd.Flags.BoolVar(&opts.PerSite, "per-site", opts.PerSite, "Write one site line per call and sample")
	cmd.Flags.BoolVar(&opts.OutputBED, "bed", opts.OutputBED, "Write one BED-style junction line per call")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", runtime.NumCPU(), "Number of partitions processed concurrently")
	regionsPath := cmd.Flags.String("regions", "", "If set, only report junctions that overlap a region of this BED file")
	oneBased := cmd.Flags.Bool("regions-one-based", false, "Interpret -regions as 1-based, closed intervals")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("junctions takes fastapath intronpath outpath, but got %v", argv)
		}
		return junctions(vcontext.Background(), opts, *regionsPath, interval.RegionOpts{OneBasedInput: *oneBased}, argv[0], argv[1], argv[2])
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of a junctions output file.
The checksum is a JSON string with the line count and an order-independent hash of the lines of each kind`,
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes a path, but found %v", argv)
		}
		return checksum(vcontext.Background(), argv[0], env.Stdout)
	})
	return cmd
}

func newCmdFaidx() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "faidx",
		Short:    "Generate a .fai index for a FASTA file",
		ArgsName: "fastapath [indexpath]",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		switch len(argv) {
		case 1:
			return faidx(vcontext.Background(), argv[0], argv[0]+".fai")
		case 2:
			return faidx(vcontext.Background(), argv[0], argv[1])
		}
		return fmt.Errorf("faidx takes fastapath [indexpath], but found %v", argv)
	})
	return cmd
}

// Run runs the bio-splice command line.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-splice",
			Short:    "Tools for inferring splice junctions from readlet alignments",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdFastq(),
				newCmdReadletize(),
				newCmdCompose(),
				newCmdJunctions(),
				newCmdChecksum(),
				newCmdFaidx(),
			},
		})
}
