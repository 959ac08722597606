// Package utf16 assembles UTF-16 code units from bytes and decodes them into scalar values.
//
// https://www.unicode.org/versions/Unicode13.0.0/ch03.pdf > 3.9 Unicode Encoding Forms > UTF-16
package utf16

import (
	"encoding/binary"
	"errors"
	"fmt"
	stdutf16 "unicode/utf16"
)

const (
	highSurrogateMin = 0xd800
	highSurrogateMax = 0xdbff
	lowSurrogateMin  = 0xdc00
	lowSurrogateMax  = 0xdfff

	// BOM is U+FEFF ZERO WIDTH NO-BREAK SPACE. Read with the wrong byte order it becomes SwappedBOM,
	// which is a noncharacter and never appears in well-formed text.
	BOM        = 0xfeff
	SwappedBOM = 0xfffe
)

var ErrOddLength = errors.New("not an even amount of bytes")

// Units assembles 16-bit code units from src using order.
func Units(src []byte, order binary.ByteOrder) ([]uint16, error) {
	if len(src)%2 != 0 {
		return nil, ErrOddLength
	}
	us := make([]uint16, len(src)/2)
	for i := range us {
		us[i] = order.Uint16(src[i*2:])
	}
	return us, nil
}

// InvalidSequenceError reports an unpaired or reversed surrogate at the code unit index Offset.
type InvalidSequenceError struct {
	Offset int
	Unit   uint16
}

func (e *InvalidSequenceError) Error() string {
	if IsLowSurrogate(e.Unit) {
		return fmt.Sprintf("unexpected low surrogate 0x%04X at word %v", e.Unit, e.Offset)
	}
	return fmt.Sprintf("unpaired high surrogate 0x%04X at word %v", e.Unit, e.Offset)
}

func IsHighSurrogate(u uint16) bool {
	return u >= highSurrogateMin && u <= highSurrogateMax
}

func IsLowSurrogate(u uint16) bool {
	return u >= lowSurrogateMin && u <= lowSurrogateMax
}

// Decode decodes code units into scalar values. A high surrogate must be immediately followed by a low
// surrogate, and a low surrogate must not appear on its own.
func Decode(us []uint16) ([]rune, error) {
	rs := make([]rune, 0, len(us))
	for i := 0; i < len(us); i++ {
		u := us[i]
		switch {
		case IsHighSurrogate(u):
			if i+1 >= len(us) || !IsLowSurrogate(us[i+1]) {
				return nil, &InvalidSequenceError{
					Offset: i,
					Unit:   u,
				}
			}
			rs = append(rs, stdutf16.DecodeRune(rune(u), rune(us[i+1])))
			i++
		case IsLowSurrogate(u):
			return nil, &InvalidSequenceError{
				Offset: i,
				Unit:   u,
			}
		default:
			rs = append(rs, rune(u))
		}
	}
	return rs, nil
}
