package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/nihei9/charscope/ucd"
	"github.com/nihei9/charscope/utf16"
)

// UTF16Engine decodes UTF-16 in a fixed byte order.
//
// It is necessary to know the byte order of the data, i.e. whether the unit 0x1234 is stored as 0x12 0x34 or
// 0x34 0x12. U+FEFF ZERO WIDTH NO-BREAK SPACE is often put at the start of the data: read as 0xFEFF, the byte
// order is right, but read as 0xFFFE (which is a noncharacter) the data is in the opposite byte order and
// the sibling engine should be used instead.
type UTF16Engine struct {
	name    string
	sibling string
	order   binary.ByteOrder
	db      *ucd.Database
}

func NewUTF16BE(db *ucd.Database) *UTF16Engine {
	return &UTF16Engine{
		name:    NameUTF16BE,
		sibling: NameUTF16LE,
		order:   binary.BigEndian,
		db:      db,
	}
}

func NewUTF16LE(db *ucd.Database) *UTF16Engine {
	return &UTF16Engine{
		name:    NameUTF16LE,
		sibling: NameUTF16BE,
		order:   binary.LittleEndian,
		db:      db,
	}
}

func (e *UTF16Engine) Name() string {
	return e.name
}

func (e *UTF16Engine) Parse(src []byte) (string, error) {
	us, err := utf16.Units(src, e.order)
	if err != nil {
		return "", &ParseError{
			Kind:    LengthAlignmentError,
			Message: "Not an even amount of bytes",
		}
	}

	if len(us) > 0 && us[0] == utf16.SwappedBOM {
		return "", &ParseError{
			Kind:    ByteOrderError,
			Message: fmt.Sprintf("BOM in wrong order, see %v", e.sibling),
		}
	}

	rs, err := utf16.Decode(us)
	if err != nil {
		return "", &ParseError{
			Kind:    InvalidSequenceError,
			Message: fmt.Sprintf("Could not convert word sequence: %v", err),
		}
	}
	return string(rs), nil
}

func (e *UTF16Engine) Describe(text string) []ucd.Description {
	return describe(e.db, text)
}
