package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDecodeCommand(t *testing.T) {
	t.Run("hex arguments", func(t *testing.T) {
		out, err := execute(t, strings.NewReader(""), "decode", "--unicode-data", testDataPath, "C3", "A9")
		require.NoError(t, err)
		assert.Equal(t, "é", gjson.Get(out, "UTF-8.parsed").String())
		assert.Equal(t, "U+00E9", gjson.Get(out, "UTF-8.description.0.codepoint").String())
		assert.Equal(t, "\ua9c3", gjson.Get(out, "UTF-16 Little Endian.parsed").String())
	})

	t.Run("standard input", func(t *testing.T) {
		out, err := execute(t, strings.NewReader("ABC"), "decode", "--unicode-data", testDataPath)
		require.NoError(t, err)
		assert.Equal(t, "ABC", gjson.Get(out, "UTF-8.parsed").String())
		assert.Equal(t, "Not an even amount of bytes", gjson.Get(out, "UTF-16 Big Endian.error").String())
	})

	t.Run("invalid hex notation", func(t *testing.T) {
		_, err := execute(t, strings.NewReader(""), "decode", "--unicode-data", testDataPath, "C3", "Z9")
		assert.Error(t, err)
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := execute(t, strings.NewReader(""), "decode", "--unicode-data", "testdata/missing.txt", "41")
		assert.Error(t, err)
	})
}

func TestDescribeCommand(t *testing.T) {
	out, err := execute(t, strings.NewReader(""), "describe", "--unicode-data", testDataPath, "U+00E9", "0x41", "4100")
	require.NoError(t, err)
	assert.JSONEq(t, `[
  {"codepoint": "U+00E9", "name": "LATIN SMALL LETTER E WITH ACUTE", "character": "é"},
  {"codepoint": "U+0041", "name": "LATIN CAPITAL LETTER A", "character": "A"},
  {"codepoint": "U+4100", "name": "<unassigned>", "character": "\u4100"}
]`, out)

	_, err = execute(t, strings.NewReader(""), "describe", "--unicode-data", testDataPath, "D800")
	assert.Error(t, err)
}

func TestParseCodePoint(t *testing.T) {
	tests := []struct {
		src  string
		want rune
		ok   bool
	}{
		{src: "U+0041", want: 0x41, ok: true},
		{src: "u+00e9", want: 0xe9, ok: true},
		{src: "0x1F600", want: 0x1f600, ok: true},
		{src: "10FFFF", want: 0x10ffff, ok: true},
		{src: "0", want: 0, ok: true},
		{src: "", ok: false},
		{src: "U+", ok: false},
		{src: "110000", ok: false},
		{src: "DFFF", ok: false},
		{src: "+41", ok: false},
		{src: "G", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cp, err := parseCodePoint(tt.src)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cp)
		})
	}
}

func TestDownload(t *testing.T) {
	src, err := os.ReadFile(testDataPath)
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/UnicodeData.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write(src)
	}))
	defer ts.Close()

	got, err := download(ts.URL + "/UnicodeData.txt")
	require.NoError(t, err)
	assert.Equal(t, src, got)

	_, err = download(ts.URL + "/missing.txt")
	assert.Error(t, err)
}

func TestUnicodeDataURL(t *testing.T) {
	assert.Equal(t, "https://www.unicode.org/Public/15.1.0/ucd/UnicodeData.txt", unicodeDataURL("15.1.0"))
	assert.Equal(t, "UnicodeData.txt", filepath.Base(unicodeDataURL(defaultUnicodeVersion)))
}
