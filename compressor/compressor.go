package compressor

import (
	"fmt"
	"sort"
)

const (
	// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf
	// 3.4  Characters and Encoding
	// > D9 Unicode codespace: A range of integers from 0 to 10FFFF16.
	codePointMax = 0x10FFFF

	colBits  = 8
	colCount = 1 << colBits
	colMask  = colCount - 1
	rowCount = (codePointMax >> colBits) + 1

	// ForbiddenValue marks a slot of Bounds that no row owns.
	ForbiddenValue = -1
)

// Index maps code points to non-negative values. The codespace is viewed as a table of 256 columns
// (the low byte of a code point) and 4352 rows (the remaining bits), and the table is packed with
// the row displacement method: every non-empty row is shifted onto a single shared array so that its
// occupied columns don't collide with the columns of rows placed before it.
//
// An Index is immutable once built, so concurrent lookups need no synchronization.
type Index struct {
	Entries         []int32
	Bounds          []int32
	RowDisplacement []int32
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// NewIndex builds an index holding values. Keys must be in U+0000..U+10FFFF and values must be
// non-negative.
func NewIndex(values map[rune]int) (*Index, error) {
	rows := map[int]*rowInfo{}
	for cp, v := range values {
		if cp < 0 || cp > codePointMax {
			return nil, fmt.Errorf("code point must be >=U+0000 and <=U+10FFFF: U+%X", cp)
		}
		if v < 0 {
			return nil, fmt.Errorf("value must be >=0: U+%X: %v", cp, v)
		}
		row := int(cp >> colBits)
		r, ok := rows[row]
		if !ok {
			r = &rowInfo{
				rowNum: row,
			}
			rows[row] = r
		}
		r.nonEmptyCol = append(r.nonEmptyCol, int(cp&colMask))
	}

	// Denser rows are placed first because they are the hardest to fit.
	sorted := make([]*rowInfo, 0, len(rows))
	for _, r := range rows {
		sort.Ints(r.nonEmptyCol)
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].nonEmptyCol) != len(sorted[j].nonEmptyCol) {
			return len(sorted[i].nonEmptyCol) > len(sorted[j].nonEmptyCol)
		}
		return sorted[i].rowNum < sorted[j].rowNum
	})

	rowDisplacement := make([]int32, rowCount)
	for i := range rowDisplacement {
		rowDisplacement[i] = ForbiddenValue
	}
	var entries []int32
	var bounds []int32
	grow := func(size int) {
		for len(bounds) < size {
			entries = append(entries, 0)
			bounds = append(bounds, ForbiddenValue)
		}
	}

	nextRowDisplacement := 0
	for _, r := range sorted {
		grow(nextRowDisplacement + colCount)
		for {
			isOverlapped := false
			for _, col := range r.nonEmptyCol {
				if bounds[nextRowDisplacement+col] == ForbiddenValue {
					continue
				}
				isOverlapped = true
				break
			}
			if !isOverlapped {
				break
			}
			nextRowDisplacement++
			grow(nextRowDisplacement + colCount)
		}

		rowDisplacement[r.rowNum] = int32(nextRowDisplacement)
		for _, col := range r.nonEmptyCol {
			cp := rune(r.rowNum<<colBits | col)
			entries[nextRowDisplacement+col] = int32(values[cp])
			bounds[nextRowDisplacement+col] = int32(r.rowNum)
		}
		nextRowDisplacement++
	}

	return &Index{
		Entries:         entries,
		Bounds:          bounds,
		RowDisplacement: rowDisplacement,
	}, nil
}

// Lookup returns the value stored for cp.
func (ix *Index) Lookup(cp rune) (int, bool) {
	if cp < 0 || cp > codePointMax {
		return 0, false
	}
	row := int(cp >> colBits)
	d := ix.RowDisplacement[row]
	if d == ForbiddenValue {
		return 0, false
	}
	i := int(d) + int(cp&colMask)
	if i >= len(ix.Bounds) || int(ix.Bounds[i]) != row {
		return 0, false
	}
	return int(ix.Entries[i]), true
}

// Size returns the length of the packed arrays.
func (ix *Index) Size() int {
	return len(ix.Entries)
}
