package engine

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/nihei9/charscope/ucd"
)

// CharmapEngine decodes a single-byte encoding. A byte the encoding leaves undefined fails the decode.
type CharmapEngine struct {
	name string
	cm   *charmap.Charmap
	db   *ucd.Database
}

func NewISO8859_1(db *ucd.Database) *CharmapEngine {
	return newCharmap(NameISO8859_1, charmap.ISO8859_1, db)
}

func NewWindows1252(db *ucd.Database) *CharmapEngine {
	return newCharmap(NameWindows1252, charmap.Windows1252, db)
}

func NewKOI8R(db *ucd.Database) *CharmapEngine {
	return newCharmap(NameKOI8R, charmap.KOI8R, db)
}

func newCharmap(name string, cm *charmap.Charmap, db *ucd.Database) *CharmapEngine {
	return &CharmapEngine{
		name: name,
		cm:   cm,
		db:   db,
	}
}

func (e *CharmapEngine) Name() string {
	return e.name
}

func (e *CharmapEngine) Parse(src []byte) (string, error) {
	rs := make([]rune, len(src))
	for i, b := range src {
		r := e.cm.DecodeByte(b)
		if r == utf8.RuneError {
			return "", &ParseError{
				Kind:    UnmappedByteError,
				Message: fmt.Sprintf("Could not convert byte sequence: byte %v at offset %v is undefined in %v", b, i, e.name),
			}
		}
		rs[i] = r
	}
	return string(rs), nil
}

func (e *CharmapEngine) Describe(text string) []ucd.Description {
	return describe(e.db, text)
}
