package ucd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nihei9/charscope/compressor"
	cerr "github.com/nihei9/charscope/error"
)

const fieldCount = 15

const (
	nameControl    = "<control>"
	nameUnassigned = "<unassigned>"
)

// Entry is a record of UnicodeData.txt. Unless specified otherwise, the name of a field is the name of
// the Unicode property.
//
// https://www.unicode.org/reports/tr44/#UnicodeData.txt
type Entry struct {
	CodePoint               rune
	Name                    string
	GeneralCategory         string
	CanonicalCombiningClass uint8
	BidiClass               string

	// "<Decomposition_Type> Decomposition_Mapping"; empty when the mapping is the code point itself.
	Decomposition string

	// Numeric_Value of a decimal digit, a digit, and a number respectively. The last one is kept
	// textual because it may be a fraction such as "1/4".
	DecimalDigit *int
	Digit        *int
	Value        string

	BidiMirrored bool

	// Unicode 1.0 or ISO 6429 name, for compatibility.
	Unicode1Name string
	ISOComment   string

	// nil when the mapping is the code point itself.
	SimpleUppercaseMapping *rune
	SimpleLowercaseMapping *rune
	SimpleTitlecaseMapping *rune
}

// Description is the JSON object describing a single character.
type Description struct {
	CodePoint string `json:"codepoint"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

// FormatCodePoint renders cp in U+ notation with at least four upper-case hex digits.
func FormatCodePoint(cp rune) string {
	return fmt.Sprintf("U+%04X", cp)
}

func (e *Entry) description() Description {
	name := e.Name
	if name == nameControl {
		name = "(control) " + e.Unicode1Name
	}
	return Description{
		CodePoint: FormatCodePoint(e.CodePoint),
		Name:      name,
	}
}

// Database maps scalar values to their UnicodeData.txt entries. Descriptions are materialized when
// the database is loaded. A Database is never modified after Load returns, so it may be shared by any
// number of goroutines.
type Database struct {
	entries      []*Entry
	descriptions []Description
	index        *compressor.Index
}

// LoadFile loads the UnicodeData.txt located at path.
func LoadFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &cerr.LoadError{
			Cause:      fmt.Errorf("%w: %v", cerr.ErrIO, err),
			SourceName: path,
		}
	}
	defer f.Close()

	db, err := Load(f)
	if err != nil {
		if lerr, ok := err.(*cerr.LoadError); ok {
			lerr.FilePath = path
			lerr.SourceName = filepath.Base(path)
		}
		return nil, err
	}
	return db, nil
}

// Load parses UnicodeData.txt. Records of surrogate code points are validated but not stored because
// surrogates are not scalar values. Records marking the first and last code point of a range
// (`<CJK Ideograph, First>` and so on) are stored as they are; the code points between them are
// not in the database.
func Load(r io.Reader) (*Database, error) {
	db := &Database{}
	cp2Idx := map[rune]int{}

	p := newParser(r)
	for p.parse() {
		e, err := parseEntry(p.fields)
		if err != nil {
			err.Row = p.row
			return nil, err
		}
		if isSurrogate(e.CodePoint) {
			continue
		}
		if _, ok := cp2Idx[e.CodePoint]; ok {
			return nil, &cerr.LoadError{
				Cause:  cerr.ErrMalformedRecord,
				Detail: fmt.Sprintf("duplicate code point %v", FormatCodePoint(e.CodePoint)),
				Row:    p.row,
			}
		}
		cp2Idx[e.CodePoint] = len(db.entries)
		db.entries = append(db.entries, e)
		db.descriptions = append(db.descriptions, e.description())
	}
	if p.err != nil {
		return nil, &cerr.LoadError{
			Cause: fmt.Errorf("%w: %v", cerr.ErrIO, p.err),
			Row:   p.row,
		}
	}

	ix, err := compressor.NewIndex(cp2Idx)
	if err != nil {
		return nil, &cerr.LoadError{
			Cause:  cerr.ErrBadCodePoint,
			Detail: err.Error(),
		}
	}
	db.index = ix

	return db, nil
}

func parseEntry(fields []field) (*Entry, *cerr.LoadError) {
	malformed := func(format string, a ...interface{}) *cerr.LoadError {
		return &cerr.LoadError{
			Cause:  cerr.ErrMalformedRecord,
			Detail: fmt.Sprintf(format, a...),
		}
	}

	if len(fields) != fieldCount {
		return nil, malformed("a record must have %v fields but has %v", fieldCount, len(fields))
	}

	cp, err := fields[0].codePoint()
	if err != nil {
		return nil, &cerr.LoadError{
			Cause:  cerr.ErrBadCodePoint,
			Detail: err.Error(),
		}
	}
	ccc, err := fields[3].uint8()
	if err != nil {
		return nil, malformed("canonical combining class: %v", err)
	}
	decimalDigit, err := fields[6].optionalInt()
	if err != nil {
		return nil, malformed("decimal digit: %v", err)
	}
	digit, err := fields[7].optionalInt()
	if err != nil {
		return nil, malformed("digit: %v", err)
	}
	mirrored, err := fields[9].binary()
	if err != nil {
		return nil, malformed("bidi mirrored: %v", err)
	}

	var mappings [3]*rune
	for i, f := range fields[12:15] {
		m, err := f.scalarValue()
		if err != nil {
			return nil, &cerr.LoadError{
				Cause:  cerr.ErrBadMapping,
				Detail: err.Error(),
			}
		}
		if m != nil && *m == cp {
			m = nil
		}
		mappings[i] = m
	}

	return &Entry{
		CodePoint:               cp,
		Name:                    fields[1].symbol(),
		GeneralCategory:         fields[2].symbol(),
		CanonicalCombiningClass: ccc,
		BidiClass:               fields[4].symbol(),
		Decomposition:           fields[5].symbol(),
		DecimalDigit:            decimalDigit,
		Digit:                   digit,
		Value:                   fields[8].symbol(),
		BidiMirrored:            mirrored,
		Unicode1Name:            fields[10].symbol(),
		ISOComment:              fields[11].symbol(),
		SimpleUppercaseMapping:  mappings[0],
		SimpleLowercaseMapping:  mappings[1],
		SimpleTitlecaseMapping:  mappings[2],
	}, nil
}

// Len returns the number of entries.
func (db *Database) Len() int {
	return len(db.entries)
}

// Lookup returns the entry of cp.
func (db *Database) Lookup(cp rune) (*Entry, bool) {
	i, ok := db.index.Lookup(cp)
	if !ok {
		return nil, false
	}
	return db.entries[i], true
}

// Describe returns the description of cp with the character field filled in. It reports false when
// cp is not in the database.
func (db *Database) Describe(cp rune) (Description, bool) {
	i, ok := db.index.Lookup(cp)
	if !ok {
		return Description{}, false
	}
	d := db.descriptions[i]
	d.Character = string(cp)
	return d, true
}

// Unassigned returns the description used for a scalar value that has no entry.
func Unassigned(cp rune) Description {
	return Description{
		CodePoint: FormatCodePoint(cp),
		Name:      nameUnassigned,
		Character: string(cp),
	}
}
