package engine

import (
	"fmt"

	"github.com/nihei9/charscope/ucd"
	"github.com/nihei9/charscope/utf8"
)

type UTF8Engine struct {
	db *ucd.Database
}

func NewUTF8(db *ucd.Database) *UTF8Engine {
	return &UTF8Engine{
		db: db,
	}
}

func (e *UTF8Engine) Name() string {
	return NameUTF8
}

func (e *UTF8Engine) Parse(src []byte) (string, error) {
	rs, err := utf8.Decode(src)
	if err != nil {
		ierr := err.(*utf8.InvalidSequenceError)
		return "", &ParseError{
			Kind:    InvalidSequenceError,
			Message: fmt.Sprintf("Could not convert byte sequence: %v at offset %v", utf8.FormatBytes(ierr.Bytes), ierr.Offset),
		}
	}
	return string(rs), nil
}

func (e *UTF8Engine) Describe(text string) []ucd.Description {
	return describe(e.db, text)
}
