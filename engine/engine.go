package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nihei9/charscope/ucd"
)

// Engine decodes a byte sequence under a single text encoding and describes the decoded characters.
// Implementations are immutable, so an Engine may be used by any number of goroutines.
type Engine interface {
	// Name identifies the engine in an aggregated response.
	Name() string

	// Parse decodes src. A failure is reported as a *ParseError.
	Parse(src []byte) (string, error)

	// Describe returns a description per character of text, in order.
	Describe(text string) []ucd.Description
}

type ErrorKind int

const (
	LengthAlignmentError ErrorKind = iota + 1
	ByteOrderError
	InvalidSequenceError
	UnmappedByteError
)

func (k ErrorKind) String() string {
	switch k {
	case LengthAlignmentError:
		return "length alignment"
	case ByteOrderError:
		return "byte order"
	case InvalidSequenceError:
		return "invalid sequence"
	case UnmappedByteError:
		return "unmapped byte"
	}
	return fmt.Sprintf("unknown (%d)", int(k))
}

// ParseError is a failure of a single engine. Message is shown to clients as it is.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// describe maps each character of text through db. A scalar value missing from db is described as
// unassigned rather than failing the request.
func describe(db *ucd.Database, text string) []ucd.Description {
	descs := make([]ucd.Description, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		d, ok := db.Describe(r)
		if !ok {
			d = ucd.Unassigned(r)
		}
		descs = append(descs, d)
	}
	return descs
}

const (
	NameUTF8        = "UTF-8"
	NameUTF16BE     = "UTF-16 Big Endian"
	NameUTF16LE     = "UTF-16 Little Endian"
	NameISO8859_1   = "ISO-8859-1"
	NameWindows1252 = "Windows-1252"
	NameKOI8R       = "KOI8-R"
)

var factories = []struct {
	name string
	new  func(db *ucd.Database) Engine
}{
	{NameUTF8, func(db *ucd.Database) Engine { return NewUTF8(db) }},
	{NameUTF16BE, func(db *ucd.Database) Engine { return NewUTF16BE(db) }},
	{NameUTF16LE, func(db *ucd.Database) Engine { return NewUTF16LE(db) }},
	{NameISO8859_1, func(db *ucd.Database) Engine { return NewISO8859_1(db) }},
	{NameWindows1252, func(db *ucd.Database) Engine { return NewWindows1252(db) }},
	{NameKOI8R, func(db *ucd.Database) Engine { return NewKOI8R(db) }},
}

// DefaultNames are the engines a service runs unless configured otherwise.
var DefaultNames = []string{
	NameUTF8,
	NameUTF16BE,
	NameUTF16LE,
}

// Names returns the names of all known engines.
func Names() []string {
	names := make([]string, len(factories))
	for i, f := range factories {
		names[i] = f.name
	}
	return names
}

// New returns the engine called name. Names are matched case-insensitively.
func New(name string, db *ucd.Database) (Engine, error) {
	for _, f := range factories {
		if strings.EqualFold(f.name, name) {
			return f.new(db), nil
		}
	}
	return nil, fmt.Errorf("unknown engine: %q (known engines: %v)", name, strings.Join(Names(), ", "))
}

// NewAll returns the engines called names in the same order.
func NewAll(names []string, db *ucd.Database) ([]Engine, error) {
	es := make([]Engine, 0, len(names))
	for _, name := range names {
		e, err := New(name, db)
		if err != nil {
			return nil, err
		}
		es = append(es, e)
	}
	return es, nil
}

// Default returns the UTF-8, UTF-16 Big Endian and UTF-16 Little Endian engines.
func Default(db *ucd.Database) []Engine {
	es, err := NewAll(DefaultNames, db)
	if err != nil {
		panic(err)
	}
	return es
}
