// Package splice infers splice junctions from fragmentary alignment evidence.
//
// The pipeline has two halves.  Per read, a Composer merges the aligned
// readlets of a read into exonic blocks and classifies every gap between
// blocks as an exonic fill or a candidate intron, refining ambiguous intron
// boundaries by dynamic-programming alignment.  Per genomic partition, a
// Driver clusters the candidate introns nominated by many reads, ranks the
// donor/acceptor motif pairs around each cluster, and reports the top call.
//
// Units of work (one read, one partition) share nothing but the reference,
// which must support concurrent lookups.
package splice
