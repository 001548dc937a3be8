package main

/*
bio-splice infers splice junctions from readlet alignments of RNA-seq reads.

A typical run is

  bio-splice readletize reads.tsv readlets.tsv
  (align readlets.tsv to ref.fa, producing readlets.sam)
  bio-splice compose ref.fa readlets.sam exons.tsv.gz introns.tsv
  (sort introns.tsv by partition id, keeping records of a partition together)
  bio-splice junctions ref.fa introns.sorted.tsv junctions.tsv
*/

import "github.com/grailbio/splice/cmd/bio-splice/cmd"

func main() {
	cmd.Run()
}
