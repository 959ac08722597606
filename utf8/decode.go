package utf8

import (
	"fmt"
	"strings"
)

// wellFormed holds the blocks covering every Unicode scalar value, and leadBlock maps a leading byte to
// the index of the block it starts. A leading byte that starts no block is mapped to -1.
var (
	wellFormed []*CharBlock
	leadBlock  [256]int
)

func init() {
	blks, err := GenCharBlocks(0x0000, codePointMax)
	if err != nil {
		panic(err)
	}
	wellFormed = blks

	for i := range leadBlock {
		leadBlock[i] = -1
	}
	for i, blk := range blks {
		for c := int(blk.From[0]); c <= int(blk.To[0]); c++ {
			leadBlock[c] = i
		}
	}
}

// InvalidSequenceError reports an ill-formed byte sequence. Bytes is the maximal subpart of the
// ill-formed sequence starting at Offset.
//
// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf > 3.9 Unicode Encoding Forms > U+FFFD Substitution of Maximal Subparts
type InvalidSequenceError struct {
	Offset int
	Bytes  []byte
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("ill-formed UTF-8 sequence at offset %v: %v", e.Offset, FormatBytes(e.Bytes))
}

// FormatBytes renders bs as a list of decimal byte values such as [195, 40].
func FormatBytes(bs []byte) string {
	var b strings.Builder
	fmt.Fprint(&b, "[")
	for i, c := range bs {
		if i > 0 {
			fmt.Fprint(&b, ", ")
		}
		fmt.Fprintf(&b, "%v", c)
	}
	fmt.Fprint(&b, "]")
	return b.String()
}

// Decode decodes src into scalar values. Over-long forms, surrogate code points, code points above
// U+10FFFF and truncated sequences are all rejected with an *InvalidSequenceError.
func Decode(src []byte) ([]rune, error) {
	rs := make([]rune, 0, len(src))
	for p := 0; p < len(src); {
		r, n, err := decodeOne(src[p:])
		if err != nil {
			err.Offset = p
			return nil, err
		}
		rs = append(rs, r)
		p += n
	}
	return rs, nil
}

func decodeOne(src []byte) (rune, int, *InvalidSequenceError) {
	i := leadBlock[src[0]]
	if i < 0 {
		return 0, 0, &InvalidSequenceError{
			Bytes: src[:1],
		}
	}
	blk := wellFormed[i]
	n := len(blk.From)
	for pos := 1; pos < n; pos++ {
		if pos >= len(src) || !blk.contains(pos, src[pos]) {
			return 0, 0, &InvalidSequenceError{
				Bytes: src[:pos],
			}
		}
	}

	var r rune
	switch n {
	case 1:
		r = rune(src[0])
	case 2:
		r = rune(src[0]&0x1f)<<6 | rune(src[1]&0x3f)
	case 3:
		r = rune(src[0]&0x0f)<<12 | rune(src[1]&0x3f)<<6 | rune(src[2]&0x3f)
	case 4:
		r = rune(src[0]&0x07)<<18 | rune(src[1]&0x3f)<<12 | rune(src[2]&0x3f)<<6 | rune(src[3]&0x3f)
	}
	return r, n, nil
}
