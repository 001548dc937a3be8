// Package align implements global (Needleman-Wunsch) alignment scoring and
// the split search used to pinpoint splice boundaries inside an unaligned
// stretch of a read.
//
// All functions are pure and safe for concurrent use.
package align

import (
	"fmt"
	"strconv"
	"strings"
)

// Scoring is a linear match/mismatch/gap scoring scheme.
type Scoring struct {
	Match    int
	Mismatch int
	Gap      int
}

// DefaultScoring rewards a match by 1 and penalizes a mismatch or a gap
// position by 1.  Under it, a perfect alignment of n bases scores n.
var DefaultScoring = Scoring{Match: 1, Mismatch: -1, Gap: -1}

func (s Scoring) sub(a, b byte) int {
	if a == b {
		return s.Match
	}
	return s.Mismatch
}

// Matrix is a dynamic-programming table for the global alignment of two
// sequences a and b.  At(i, j) is the best score of aligning a[:i] with b[:j].
type Matrix struct {
	nRow, nCol int
	data       []int // row-major nRow*nCol array.
}

// At returns cell (i, j).  0 <= i <= len(a), 0 <= j <= len(b).
func (m *Matrix) At(i, j int) int { return m.data[i*m.nCol+j] }

// Rows returns len(a)+1.
func (m *Matrix) Rows() int { return m.nRow }

// Cols returns len(b)+1.
func (m *Matrix) Cols() int { return m.nCol }

// Score returns the score of aligning all of a with all of b.
func (m *Matrix) Score() int { return m.data[len(m.data)-1] }

// String returns a string representation of a matrix.
func (m *Matrix) String() string {
	maxLength := 0
	for _, d := range m.data {
		if l := len(strconv.Itoa(d)); l > maxLength {
			maxLength = l
		}
	}
	lines := []string{""}
	for i := 0; i < m.nRow; i++ {
		parts := make([]string, m.nCol)
		for j := 0; j < m.nCol; j++ {
			parts[j] = fmt.Sprintf("%*d", maxLength, m.At(i, j))
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// NewMatrix fills the global alignment table of a against b.
func NewMatrix(a, b string, s Scoring) *Matrix {
	m := &Matrix{nRow: len(a) + 1, nCol: len(b) + 1}
	m.data = make([]int, m.nRow*m.nCol)
	for j := 1; j < m.nCol; j++ {
		m.data[j] = j * s.Gap
	}
	for i := 1; i < m.nRow; i++ {
		row := m.data[i*m.nCol : (i+1)*m.nCol]
		prev := m.data[(i-1)*m.nCol : i*m.nCol]
		row[0] = i * s.Gap
		for j := 1; j < m.nCol; j++ {
			best := prev[j-1] + s.sub(a[i-1], b[j-1])
			if v := prev[j] + s.Gap; v > best {
				best = v
			}
			if v := row[j-1] + s.Gap; v > best {
				best = v
			}
			row[j] = best
		}
	}
	return m
}

// Score returns the global alignment score of a against b.  It keeps two rows
// of the table instead of the full matrix.
func Score(a, b string, s Scoring) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j * s.Gap
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i * s.Gap
		for j := 1; j <= len(b); j++ {
			best := prev[j-1] + s.sub(a[i-1], b[j-1])
			if v := prev[j] + s.Gap; v > best {
				best = v
			}
			if v := cur[j-1] + s.Gap; v > best {
				best = v
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
