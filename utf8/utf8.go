package utf8

import (
	"fmt"
	"strings"
)

const (
	codePointMax = 0x10ffff
	surrogateMin = 0xd800
	surrogateMax = 0xdfff
)

// CharBlock is a set of byte sequences. Each byte of a sequence in the block lies between the bytes at
// the same position of From and To, and any such combination is a well-formed UTF-8 sequence.
type CharBlock struct {
	From []byte
	To   []byte
}

func (b *CharBlock) String() string {
	var s strings.Builder
	fmt.Fprint(&s, "<")
	fmt.Fprintf(&s, "%X", b.From[0])
	for i := 1; i < len(b.From); i++ {
		fmt.Fprintf(&s, " %X", b.From[i])
	}
	fmt.Fprint(&s, "..")
	fmt.Fprintf(&s, "%X", b.To[0])
	for i := 1; i < len(b.To); i++ {
		fmt.Fprintf(&s, " %X", b.To[i])
	}
	fmt.Fprint(&s, ">")
	return s.String()
}

func (b *CharBlock) contains(pos int, c byte) bool {
	return c >= b.From[pos] && c <= b.To[pos]
}

// GenCharBlocks returns the blocks of UTF-8 byte sequences encoding the code points <from..to>.
func GenCharBlocks(from, to rune) ([]*CharBlock, error) {
	rs, err := splitCodePoint(from, to)
	if err != nil {
		return nil, err
	}

	blks := make([]*CharBlock, len(rs))
	for i, r := range rs {
		blks[i] = &CharBlock{
			From: []byte(string(r.from)),
			To:   []byte(string(r.to)),
		}
	}

	return blks, nil
}

type cpRange struct {
	from rune
	to   rune
}

// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf > 3.9 Unicode Encoding Forms > UTF-8 Table 3-7.  Well-Formed UTF-8 Byte Sequences
//
// Each value is the last code point of a range whose encodings form a single CharBlock.
var blockEnds = []rune{
	0x007f,
	0x07ff,
	0x0fff,
	0xcfff,
	0xd7ff,
	0xffff,
	0x3ffff,
	0xfffff,
}

// splitCodePoint splits a code point range represented by <from..to> into some blocks. The code points that
// the block contains will be a continuous byte sequence when encoded into UTF-8. For instance, this function
// splits <U+0000..U+07FF> into <U+0000..U+007F> and <U+0080..U+07FF> because <U+0000..U+07FF> is continuous on
// the code point but non-continuous in the UTF-8 byte sequence (In UTF-8, <U+0000..U+007F> is encoded <00..7F>,
// and <U+0080..U+07FF> is encoded <C2 80..DF BF>).
//
// The blocks don't contain surrogate code points <U+D800..U+DFFF> because byte sequences encoding them are
// ill-formed in UTF-8. However, when `from` or `to` itself is the surrogate code point, this function returns
// an error.
func splitCodePoint(from, to rune) ([]*cpRange, error) {
	if from > to {
		return nil, fmt.Errorf("code point range must be from <= to: U+%X..U+%X", from, to)
	}
	if from < 0 || from > codePointMax || to < 0 || to > codePointMax {
		return nil, fmt.Errorf("code point must be >=U+0000 and <=U+10FFFF: U+%X..U+%X", from, to)
	}
	// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf > 3.9 Unicode Encoding Forms > UTF-8 D92
	// > Because surrogate code points are not Unicode scalar values, any UTF-8 byte sequence that would otherwise
	// > map to code points U+D800..U+DFFF is ill-formed.
	if isSurrogate(from) || isSurrogate(to) {
		return nil, fmt.Errorf("surrogate code points U+D800..U+DFFF are not allowed in UTF-8: U+%X..U+%X", from, to)
	}

	var rs []*cpRange
	for from <= to {
		r := &cpRange{
			from: from,
			to:   to,
		}
		for _, end := range blockEnds {
			if from <= end && to > end {
				r.to = end
				break
			}
		}
		rs = append(rs, r)
		from = r.to + 1

		if isSurrogate(from) {
			from = surrogateMax + 1
		}
	}
	return rs, nil
}

func isSurrogate(cp rune) bool {
	return cp >= surrogateMin && cp <= surrogateMax
}
