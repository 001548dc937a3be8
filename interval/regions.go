package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// searchPos returns the smallest index i such that a[i] >= x, or len(a).
func searchPos(a []int64, x int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// RegionOpts defines behavior of the BED loaders.
type RegionOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// RegionSet is the union of the intervals of a BED file.  Per chromosome, the
// union is stored as a sorted sequence of endpoints: the start of region #k is
// in element [2k] and its end in element [2k+1].  A RegionSet is immutable
// once loaded and may be queried concurrently.
type RegionSet struct {
	nameMap map[string][]int64
}

// NewRegionSet loads the intervals of a BED stream.  Lines need not be
// sorted; overlapping and adjacent intervals are merged and empty ones are
// dropped.  Blank lines and lines starting with '#', "track" or "browser" are
// skipped.
func NewRegionSet(reader io.Reader, opts RegionOpts) (RegionSet, error) {
	var startSubtract int64
	if opts.OneBasedInput {
		startSubtract = 1
	}
	var (
		tokens  [3][]byte
		lineIdx int
		byChr   = map[string][]Interval{}
	)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || tokens[0][0] == '#' ||
			string(tokens[0]) == "track" || string(tokens[0]) == "browser" {
			continue
		}
		if nToken != 3 {
			return RegionSet{}, errors.E(errors.Invalid, fmt.Sprintf("interval.NewRegionSet: line %d has fewer tokens than expected", lineIdx))
		}
		start, err := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil {
			return RegionSet{}, errors.E(errors.Invalid, fmt.Sprintf("interval.NewRegionSet: line %d", lineIdx), err)
		}
		end, err := strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil {
			return RegionSet{}, errors.E(errors.Invalid, fmt.Sprintf("interval.NewRegionSet: line %d", lineIdx), err)
		}
		start -= startSubtract
		if start < 0 {
			return RegionSet{}, errors.E(errors.Invalid, fmt.Sprintf("interval.NewRegionSet: negative start coordinate %s on line %d", tokens[1], lineIdx))
		}
		if end < start {
			return RegionSet{}, errors.E(errors.Invalid, fmt.Sprintf("interval.NewRegionSet: invalid coordinate pair on line %d", lineIdx))
		}
		chr := string(tokens[0])
		if end > start {
			byChr[chr] = append(byChr[chr], Interval{start, end})
		} else if _, ok := byChr[chr]; !ok {
			// An empty interval still mentions the chromosome.
			byChr[chr] = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return RegionSet{}, err
	}
	u := RegionSet{nameMap: make(map[string][]int64, len(byChr))}
	var totBases int64
	for chr, ivals := range byChr {
		sort.Slice(ivals, func(i, j int) bool { return Compare(ivals[i], ivals[j]) < 0 })
		endpoints := []int64{}
		for _, iv := range ivals {
			if n := len(endpoints); n > 0 && iv.Start <= endpoints[n-1] {
				if iv.End > endpoints[n-1] {
					endpoints[n-1] = iv.End
				}
				continue
			}
			endpoints = append(endpoints, iv.Start, iv.End)
		}
		for i := 0; i < len(endpoints); i += 2 {
			totBases += endpoints[i+1] - endpoints[i]
		}
		u.nameMap[chr] = endpoints
	}
	log.Printf("BED loaded, %d base(s) covered.", totBases)
	return u, nil
}

// NewRegionSetFromPath is a wrapper for NewRegionSet that takes a path
// instead of an io.Reader.  Gzipped files are decompressed.
func NewRegionSetFromPath(ctx context.Context, path string, opts RegionOpts) (u RegionSet, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return
		}
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		reader = gz
	}
	return NewRegionSet(reader, opts)
}

// ContainsByName checks whether the 0-based position pos is covered by a
// region on chromosome chrName.
func (u RegionSet) ContainsByName(chrName string, pos int64) bool {
	return searchPos(u.nameMap[chrName], pos+1)&1 == 1
}

// Overlaps checks whether the 0-based half-open interval ival on chrName
// shares at least one position with a region.
func (u RegionSet) Overlaps(chrName string, ival Interval) bool {
	endpoints := u.nameMap[chrName]
	if ival.Empty() || endpoints == nil {
		return false
	}
	idx := searchPos(endpoints, ival.Start+1)
	if idx&1 == 1 {
		return true
	}
	return idx < len(endpoints) && endpoints[idx] < ival.End
}

// Regions returns the merged regions of chrName in increasing order.
func (u RegionSet) Regions(chrName string) []Interval {
	endpoints := u.nameMap[chrName]
	ivals := make([]Interval, 0, len(endpoints)/2)
	for i := 0; i < len(endpoints); i += 2 {
		ivals = append(ivals, Interval{endpoints[i], endpoints[i+1]})
	}
	return ivals
}
