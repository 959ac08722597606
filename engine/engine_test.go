package engine

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/nihei9/charscope/ucd"
)

func loadTestData(t *testing.T) *ucd.Database {
	t.Helper()
	db, err := ucd.LoadFile("../ucd/testdata/UnicodeData.txt")
	require.NoError(t, err)
	return db
}

func desc(cp, name, char string) ucd.Description {
	return ucd.Description{
		CodePoint: cp,
		Name:      name,
		Character: char,
	}
}

func requireParseError(t *testing.T, err error, kind ErrorKind, msg string) {
	t.Helper()
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "unexpected error type: %T", err)
	assert.Equal(t, kind, perr.Kind)
	assert.Equal(t, msg, perr.Message)
}

func TestUTF8Engine(t *testing.T) {
	e := NewUTF8(loadTestData(t))
	assert.Equal(t, "UTF-8", e.Name())

	tests := []struct {
		src    []byte
		parsed string
		descs  []ucd.Description
	}{
		{
			src:    []byte{},
			parsed: "",
			descs:  []ucd.Description{},
		},
		{
			src:    []byte{0x41, 0x42, 0x43},
			parsed: "ABC",
			descs: []ucd.Description{
				desc("U+0041", "LATIN CAPITAL LETTER A", "A"),
				desc("U+0042", "LATIN CAPITAL LETTER B", "B"),
				desc("U+0043", "LATIN CAPITAL LETTER C", "C"),
			},
		},
		{
			src:    []byte{0xc3, 0xa9},
			parsed: "é",
			descs: []ucd.Description{
				desc("U+00E9", "LATIN SMALL LETTER E WITH ACUTE", "é"),
			},
		},
		{
			src:    []byte{0xf0, 0x9f, 0x98, 0x80},
			parsed: "😀",
			descs: []ucd.Description{
				desc("U+1F600", "GRINNING FACE", "😀"),
			},
		},
		{
			src:    []byte{0xef, 0xbb, 0xbf, 0x00},
			parsed: "\ufeff\x00",
			descs: []ucd.Description{
				desc("U+FEFF", "ZERO WIDTH NO-BREAK SPACE", "\ufeff"),
				desc("U+0000", "(control) NULL", "\x00"),
			},
		},
		{
			src:    []byte{0xe4, 0x84, 0x80, 0xf4, 0x8f, 0xbf, 0xbf},
			parsed: "\u4100\U0010ffff",
			descs: []ucd.Description{
				desc("U+4100", "<unassigned>", "\u4100"),
				desc("U+10FFFF", "<unassigned>", "\U0010ffff"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("% X", tt.src), func(t *testing.T) {
			parsed, err := e.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.parsed, parsed)
			if diff := cmp.Diff(tt.descs, e.Describe(parsed)); diff != "" {
				t.Fatalf("unexpected descriptions (-want +got):\n%v", diff)
			}
		})
	}
}

func TestUTF8Engine_Invalid(t *testing.T) {
	e := NewUTF8(loadTestData(t))

	tests := []struct {
		src []byte
		msg string
	}{
		{
			src: []byte{0xff},
			msg: "Could not convert byte sequence: [255] at offset 0",
		},
		{
			src: []byte{0x41, 0xc0, 0x80},
			msg: "Could not convert byte sequence: [192] at offset 1",
		},
		{
			src: []byte{0x41, 0x42, 0xe2, 0x82},
			msg: "Could not convert byte sequence: [226, 130] at offset 2",
		},
		{
			src: []byte{0xed, 0xa0, 0x80},
			msg: "Could not convert byte sequence: [237] at offset 0",
		},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("% X", tt.src), func(t *testing.T) {
			parsed, err := e.Parse(tt.src)
			requireParseError(t, err, InvalidSequenceError, tt.msg)
			assert.Empty(t, parsed)
		})
	}
}

func TestUTF8Engine_RoundTrip(t *testing.T) {
	e := NewUTF8(loadTestData(t))

	for _, s := range []string{
		"ABC",
		"\u0000\u007f\u0080\u07ff\u0800\uffff\U00010000\U0010ffff",
		"Ж€😀é",
	} {
		parsed, err := e.Parse([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)

		descs := e.Describe(parsed)
		require.Len(t, descs, utf8.RuneCountInString(s))
		i := 0
		for _, r := range s {
			assert.Equal(t, string(r), descs[i].Character)
			assert.Equal(t, fmt.Sprintf("U+%04X", r), descs[i].CodePoint)
			i++
		}
	}
}

func TestUTF16Engine(t *testing.T) {
	db := loadTestData(t)
	be := NewUTF16BE(db)
	le := NewUTF16LE(db)
	assert.Equal(t, "UTF-16 Big Endian", be.Name())
	assert.Equal(t, "UTF-16 Little Endian", le.Name())

	tests := []struct {
		caption string
		engine  Engine
		src     []byte
		parsed  string
		descs   []ucd.Description
	}{
		{
			caption: "empty",
			engine:  be,
			src:     []byte{},
			parsed:  "",
			descs:   []ucd.Description{},
		},
		{
			caption: "big endian",
			engine:  be,
			src:     []byte{0x00, 0x41, 0x00, 0x42},
			parsed:  "AB",
			descs: []ucd.Description{
				desc("U+0041", "LATIN CAPITAL LETTER A", "A"),
				desc("U+0042", "LATIN CAPITAL LETTER B", "B"),
			},
		},
		{
			caption: "big endian bytes read as little endian",
			engine:  le,
			src:     []byte{0x00, 0x41, 0x00, 0x42},
			parsed:  "\u4100\u4200",
			descs: []ucd.Description{
				desc("U+4100", "<unassigned>", "\u4100"),
				desc("U+4200", "<unassigned>", "\u4200"),
			},
		},
		{
			caption: "a correctly oriented BOM is data",
			engine:  le,
			src:     []byte{0xff, 0xfe},
			parsed:  "\ufeff",
			descs: []ucd.Description{
				desc("U+FEFF", "ZERO WIDTH NO-BREAK SPACE", "\ufeff"),
			},
		},
		{
			caption: "a surrogate pair",
			engine:  be,
			src:     []byte{0xd8, 0x3d, 0xde, 0x00},
			parsed:  "😀",
			descs: []ucd.Description{
				desc("U+1F600", "GRINNING FACE", "😀"),
			},
		},
		{
			caption: "a surrogate pair in little endian",
			engine:  le,
			src:     []byte{0x3d, 0xd8, 0x00, 0xde},
			parsed:  "😀",
			descs: []ucd.Description{
				desc("U+1F600", "GRINNING FACE", "😀"),
			},
		},
		{
			caption: "the boundaries of the codespace",
			engine:  be,
			src:     []byte{0x00, 0x00, 0x00, 0x7f, 0x00, 0x80, 0x07, 0xff, 0x08, 0x00, 0xff, 0xff, 0xd8, 0x00, 0xdc, 0x00, 0xdb, 0xff, 0xdf, 0xff},
			parsed:  "\u0000\u007f\u0080\u07ff\u0800\uffff\U00010000\U0010ffff",
			descs: []ucd.Description{
				desc("U+0000", "(control) NULL", "\u0000"),
				desc("U+007F", "(control) DELETE", "\u007f"),
				desc("U+0080", "(control) ", "\u0080"),
				desc("U+07FF", "NKO TAMAN SIGN", "\u07ff"),
				desc("U+0800", "SAMARITAN LETTER ALAF", "\u0800"),
				desc("U+FFFF", "<unassigned>", "\uffff"),
				desc("U+10000", "LINEAR B SYLLABLE B008 A", "\U00010000"),
				desc("U+10FFFF", "<unassigned>", "\U0010ffff"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			parsed, err := tt.engine.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.parsed, parsed)
			if diff := cmp.Diff(tt.descs, tt.engine.Describe(parsed)); diff != "" {
				t.Fatalf("unexpected descriptions (-want +got):\n%v", diff)
			}
		})
	}
}

func TestUTF16Engine_Invalid(t *testing.T) {
	db := loadTestData(t)
	be := NewUTF16BE(db)
	le := NewUTF16LE(db)

	tests := []struct {
		caption string
		engine  Engine
		src     []byte
		kind    ErrorKind
		msg     string
	}{
		{
			caption: "a single byte",
			engine:  be,
			src:     []byte{0xff},
			kind:    LengthAlignmentError,
			msg:     "Not an even amount of bytes",
		},
		{
			caption: "an odd amount of bytes",
			engine:  le,
			src:     []byte{0x41, 0x00, 0x42},
			kind:    LengthAlignmentError,
			msg:     "Not an even amount of bytes",
		},
		{
			caption: "a little endian BOM read as big endian",
			engine:  be,
			src:     []byte{0xff, 0xfe},
			kind:    ByteOrderError,
			msg:     "BOM in wrong order, see UTF-16 Little Endian",
		},
		{
			caption: "a big endian BOM read as little endian",
			engine:  le,
			src:     []byte{0xfe, 0xff, 0x00, 0x41},
			kind:    ByteOrderError,
			msg:     "BOM in wrong order, see UTF-16 Big Endian",
		},
		{
			caption: "an unpaired high surrogate",
			engine:  be,
			src:     []byte{0x00, 0x41, 0xd8, 0x00},
			kind:    InvalidSequenceError,
			msg:     "Could not convert word sequence: unpaired high surrogate 0xD800 at word 1",
		},
		{
			caption: "reversed surrogates",
			engine:  be,
			src:     []byte{0xdc, 0x00, 0xd8, 0x00},
			kind:    InvalidSequenceError,
			msg:     "Could not convert word sequence: unexpected low surrogate 0xDC00 at word 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			parsed, err := tt.engine.Parse(tt.src)
			requireParseError(t, err, tt.kind, tt.msg)
			assert.Empty(t, parsed)
		})
	}
}

func TestCharmapEngine(t *testing.T) {
	db := loadTestData(t)

	tests := []struct {
		engine Engine
		src    []byte
		parsed string
	}{
		{
			engine: NewISO8859_1(db),
			src:    []byte{0x41, 0xe9, 0x80},
			parsed: "Aé\u0080",
		},
		{
			engine: NewWindows1252(db),
			src:    []byte{0x41, 0x80, 0xe9},
			parsed: "A€é",
		},
		{
			engine: NewKOI8R(db),
			src:    []byte{0xf6, 0x41},
			parsed: "ЖA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.engine.Name(), func(t *testing.T) {
			parsed, err := tt.engine.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.parsed, parsed)
			assert.Len(t, tt.engine.Describe(parsed), len(tt.src))
		})
	}
}

func TestCharmapEngine_Undefined(t *testing.T) {
	e := newCharmap("ISO-8859-3", charmap.ISO8859_3, loadTestData(t))
	parsed, err := e.Parse([]byte{0x41, 0xa5})
	requireParseError(t, err, UnmappedByteError, "Could not convert byte sequence: byte 165 at offset 1 is undefined in ISO-8859-3")
	assert.Empty(t, parsed)
}

func TestEngines_AreDeterministic(t *testing.T) {
	db := loadTestData(t)
	inputs := [][]byte{
		{},
		{0x41, 0x42, 0x43},
		{0xff, 0xfe},
		{0xff},
		{0xd8, 0x3d, 0xde, 0x00},
	}
	for _, e := range Default(db) {
		for _, src := range inputs {
			p1, err1 := e.Parse(src)
			p2, err2 := e.Parse(src)
			assert.Equal(t, p1, p2)
			assert.Equal(t, err1, err2)
		}
	}
}

func TestNew(t *testing.T) {
	db := loadTestData(t)

	for _, name := range Names() {
		e, err := New(name, db)
		require.NoError(t, err)
		assert.Equal(t, name, e.Name())
	}

	e, err := New("utf-16 big endian", db)
	require.NoError(t, err)
	assert.Equal(t, NameUTF16BE, e.Name())

	_, err = New("EBCDIC", db)
	assert.Error(t, err)

	es, err := NewAll([]string{NameUTF16LE, NameUTF8}, db)
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, NameUTF16LE, es[0].Name())
	assert.Equal(t, NameUTF8, es[1].Name())

	_, err = NewAll([]string{NameUTF8, "EBCDIC"}, db)
	assert.Error(t, err)

	var names []string
	for _, e := range Default(db) {
		names = append(names, e.Name())
	}
	assert.Equal(t, DefaultNames, names)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "length alignment", LengthAlignmentError.String())
	assert.Equal(t, "byte order", ByteOrderError.String())
	assert.Equal(t, "invalid sequence", InvalidSequenceError.String())
	assert.Equal(t, "unmapped byte", UnmappedByteError.String())
}
