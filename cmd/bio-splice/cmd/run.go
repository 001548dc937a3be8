package cmd

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/splice/encoding/fasta"
	"github.com/grailbio/splice/encoding/fastq"
	"github.com/grailbio/splice/interval"
	"github.com/grailbio/splice/readlet"
	"github.com/grailbio/splice/splice"
	"github.com/grailbio/splice/util"
)

// closeInput closes in, setting *err if it is nil.
func closeInput(ctx context.Context, in *util.Input, err *error) {
	if e := in.Close(ctx); e != nil && *err == nil {
		*err = e
	}
}

// closeOutput closes out, setting *err if it is nil.
func closeOutput(ctx context.Context, out *util.Output, err *error) {
	if e := out.Close(ctx); e != nil && *err == nil {
		*err = e
	}
}

func readletize(ctx context.Context, opts readlet.Opts, inPath, outPath string) (err error) {
	in, err := util.Open(ctx, inPath)
	if err != nil {
		return err
	}
	defer closeInput(ctx, in, &err)
	out, err := util.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer closeOutput(ctx, out, &err)
	stats, err := readlet.Readletize(in, out, opts)
	if err != nil {
		return errors.E(err, inPath)
	}
	log.Printf("readletize %s: in/out = %d/%d (%d reads)", inPath, stats.Lines, stats.Readlets, stats.Reads)
	return nil
}

func fastqReads(ctx context.Context, sample, r1Path, r2Path, outPath string) (err error) {
	r1, err := util.Open(ctx, r1Path)
	if err != nil {
		return err
	}
	defer closeInput(ctx, r1, &err)
	var r2 io.Reader
	if r2Path != "" {
		var in *util.Input
		if in, err = util.Open(ctx, r2Path); err != nil {
			return err
		}
		defer closeInput(ctx, in, &err)
		r2 = in
	}
	out, err := util.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer closeOutput(ctx, out, &err)
	n, err := fastq.ToReads(r1, r2, sample, out)
	if err != nil {
		return errors.E(err, r1Path)
	}
	log.Printf("fastq %s: %d reads", r1Path, n)
	return nil
}

func compose(ctx context.Context, opts splice.ComposeOpts, fastaPath, samPath, exonPath, intronPath string) (err error) {
	ref, err := splice.OpenReference(ctx, fastaPath)
	if err != nil {
		return err
	}
	c, err := splice.NewComposer(ref, opts)
	if err != nil {
		return err
	}
	in, err := util.Open(ctx, samPath)
	if err != nil {
		return err
	}
	defer closeInput(ctx, in, &err)
	sc, err := readlet.NewScanner(in)
	if err != nil {
		return errors.E(err, samPath)
	}
	exons, err := util.Create(ctx, exonPath)
	if err != nil {
		return err
	}
	defer closeOutput(ctx, exons, &err)
	introns, err := util.Create(ctx, intronPath)
	if err != nil {
		return err
	}
	defer closeOutput(ctx, introns, &err)
	stats, err := c.Run(sc, exons, introns)
	if err != nil {
		return errors.E(err, samPath)
	}
	scStats := sc.Stats()
	log.Printf("compose %s: records=%d (unmapped=%d) reads=%d (unaligned=%d)",
		samPath, scStats.Records, scStats.Unmapped, scStats.Reads, scStats.Unaligned)
	log.Printf("compose %s: %v", samPath, stats)
	return nil
}

func junctions(ctx context.Context, opts splice.Opts, regionsPath string, regionOpts interval.RegionOpts, fastaPath, intronPath, outPath string) (err error) {
	ref, err := splice.OpenReference(ctx, fastaPath)
	if err != nil {
		return err
	}
	var regions *interval.RegionSet
	if regionsPath != "" {
		rs, err := interval.NewRegionSetFromPath(ctx, regionsPath, regionOpts)
		if err != nil {
			return err
		}
		regions = &rs
	}
	d, err := splice.NewDriver(ref, opts, regions)
	if err != nil {
		return err
	}
	in, err := util.Open(ctx, intronPath)
	if err != nil {
		return err
	}
	defer closeInput(ctx, in, &err)
	out, err := util.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer closeOutput(ctx, out, &err)
	if _, err = d.Run(ctx, in, out); err != nil {
		return errors.E(err, intronPath)
	}
	return nil
}

func faidx(ctx context.Context, fastaPath, indexPath string) (err error) {
	in, err := file.Open(ctx, fastaPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if err = fasta.GenerateIndex(out.Writer(ctx), in.Reader(ctx)); err != nil {
		return errors.E(err, fastaPath)
	}
	log.Debug.Printf("faidx: wrote %s", indexPath)
	return nil
}
