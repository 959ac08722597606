package ucd

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf
	// 3.4  Characters and Encoding
	// > D9 Unicode codespace: A range of integers from 0 to 10FFFF16.
	codePointMin = 0x0
	codePointMax = 0x10FFFF

	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

type field string

func (f field) codePoint() (rune, error) {
	if !reCodePoint.MatchString(string(f)) {
		return 0, fmt.Errorf("not a hexadecimal code point: %q", string(f))
	}
	n, err := strconv.ParseUint(string(f), 16, 32)
	if err != nil || n > codePointMax {
		return 0, fmt.Errorf("code point must be >=U+0000 and <=U+10FFFF: %v", string(f))
	}
	return rune(n), nil
}

// scalarValue parses an optional code point that must be a Unicode scalar value.
// An empty field yields nil.
func (f field) scalarValue() (*rune, error) {
	if f == "" {
		return nil, nil
	}
	cp, err := f.codePoint()
	if err != nil {
		return nil, err
	}
	if isSurrogate(cp) {
		return nil, fmt.Errorf("surrogate code points are not scalar values: U+%04X", cp)
	}
	return &cp, nil
}

func (f field) optionalInt() (*int, error) {
	if f == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f field) uint8() (uint8, error) {
	n, err := strconv.ParseUint(string(f), 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}

func (f field) binary() (bool, error) {
	switch f {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	}
	return false, fmt.Errorf("binary value must be Y or N: %q", string(f))
}

func (f field) symbol() string {
	return string(f)
}

func isSurrogate(cp rune) bool {
	return cp >= surrogateMin && cp <= surrogateMax
}

var (
	reLine      = regexp.MustCompile(`^\s*(.*?)\s*(#.*)?$`)
	reCodePoint = regexp.MustCompile(`^[[:xdigit:]]{1,6}$`)
)

// This parser converts each line of a data file of Unicode Character Database (UCD) into a slice of fields.
// Comments and blank lines are skipped. Each field needs to be analyzed more specifically by a dedicated
// parser that wraps this one; see ParseUnicodeData.
//
// https://www.unicode.org/reports/tr44/#Format_Conventions
type parser struct {
	scanner *bufio.Scanner
	fields  []field
	row     int
	line    string
	err     error

	fieldBuf []field
}

func newParser(r io.Reader) *parser {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &parser{
		scanner:  s,
		fieldBuf: make([]field, 0, 15),
	}
}

func (p *parser) parse() bool {
	for p.scanner.Scan() {
		p.row++
		p.line = p.scanner.Text()
		p.parseRecord(p.line)
		if p.fields != nil {
			return true
		}
	}
	p.err = p.scanner.Err()
	return false
}

func (p *parser) parseRecord(src string) {
	ms := reLine.FindStringSubmatch(src)
	mFields := ms[1]
	if mFields != "" {
		p.fields = parseFields(p.fieldBuf, mFields)
	} else {
		p.fields = nil
	}
}

func parseFields(buf []field, src string) []field {
	buf = buf[:0]
	for _, f := range strings.Split(src, ";") {
		buf = append(buf, field(strings.TrimSpace(f)))
	}
	return buf
}
