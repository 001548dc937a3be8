package fasta

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Index files consist of one tab-separated line per sequence in the associated
// FASTA file.  The format is: "<sequence name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>".
// For example: "chr3\t12345\t9000\t80\t81".
var indexRegExp = regexp.MustCompile(`^(\S+)\t(\d+)\t(\d+)\t(\d+)\t(\d+)$`)

type indexEntry struct {
	length    uint64
	offset    uint64
	lineBase  uint64
	lineWidth uint64
}

type indexedFasta struct {
	seqs     map[string]indexEntry
	seqNames []string
	reader   io.ReaderAt
}

// NewIndexed creates a new Fasta that performs random lookups using the
// provided index, without reading the data into memory.  Lookups issue
// positional reads on r and share no mutable state, so r must support
// concurrent ReadAt calls (as *os.File does).
func NewIndexed(r io.ReaderAt, index io.Reader) (Fasta, error) {
	f := &indexedFasta{seqs: make(map[string]indexEntry), reader: r}
	scanner := bufio.NewScanner(index)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		matches := indexRegExp.FindStringSubmatch(scanner.Text())
		if len(matches) != 6 {
			return nil, errors.Errorf("invalid index line %d: %s", lineNum, scanner.Text())
		}
		var (
			ent  indexEntry
			vals [4]uint64
		)
		for i := range vals {
			v, err := strconv.ParseUint(matches[i+2], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid index line %d", lineNum)
			}
			vals[i] = v
		}
		ent.length, ent.offset, ent.lineBase, ent.lineWidth = vals[0], vals[1], vals[2], vals[3]
		if ent.length > 0 && (ent.lineBase == 0 || ent.lineWidth < ent.lineBase) {
			return nil, errors.Errorf("invalid line geometry on index line %d: %s", lineNum, scanner.Text())
		}
		f.seqs[matches[1]] = ent
		f.seqNames = append(f.seqNames, matches[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA index")
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.seqs[f.seqNames[i]].offset < f.seqs[f.seqNames[j]].offset
	})
	return f, nil
}

func (f *indexedFasta) Len(seqName string) (uint64, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return 0, notFound(seqName)
	}
	return ent.length, nil
}

func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return "", notFound(seqName)
	}
	if err := checkRange(seqName, start, end, ent.length); err != nil {
		return "", err
	}
	// Start the read at a byte offset allowing for the presence of newline
	// characters.
	charsPerNewline := ent.lineWidth - ent.lineBase
	offset := ent.offset + start + charsPerNewline*(start/ent.lineBase)

	firstLineBases := ent.lineBase - (start % ent.lineBase)
	newlinesToRead := uint64(0)
	if end-start > firstLineBases {
		newlinesToRead = 1 + (end-start-firstLineBases)/ent.lineBase
	}
	buf := make([]byte, end-start+newlinesToRead*charsPerNewline)
	n, err := f.reader.ReadAt(buf, int64(offset))
	if n < len(buf) {
		if err == nil || err == io.EOF {
			return "", errors.Errorf("encountered unexpected end of file reading %s (bad index?)", seqName)
		}
		return "", errors.Wrapf(err, "read %s:%d-%d", seqName, start, end)
	}

	// Compact the bytes in place, dropping the line terminators.
	linePos := (offset - ent.offset) % ent.lineWidth
	resultPos := 0
	for _, b := range buf {
		if linePos < ent.lineBase {
			buf[resultPos] = b
			resultPos++
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	return string(buf[:resultPos]), nil
}

func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}
