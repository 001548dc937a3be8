package align

import "github.com/grailbio/bio/biosimd"

// ReverseComplement computes the reverse complement of the given DNA string.
// The result is upper case; bytes other than A, C, G and T map to 'N'.
func ReverseComplement(seq string) string {
	buf := make([]byte, len(seq))
	biosimd.ReverseComp8NoValidate(buf, []byte(seq))
	return string(buf)
}

// reverse reverses seq byte by byte.  Unlike ReverseComplement it keeps
// every byte, so bytes that differ stay different.
func reverse(seq string) string {
	n := len(seq)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[n-1-i] = seq[i]
	}
	return string(buf)
}
