/*Package interval implements half-open genomic intervals, a self-merging
  interval set used to assemble a read's exonic footprint, and a region set
  loaded from BED files.
  Positions are int64; BED-derived region sets use the same coordinate type
  so that junction calls can be filtered without conversion.
*/
package interval
