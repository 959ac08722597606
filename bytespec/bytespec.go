// Package bytespec reads byte payloads written in hex notation, such as `41 42 C3 A9`, `0x41,0x42`, or
// `4142C3A9`.
package bytespec

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

const (
	kindHexByte   = "hex_byte"
	kindSeparator = "separator"
)

var lexSpec = &mlspec.LexSpec{
	Entries: []*mlspec.LexEntry{
		{
			Kind:    mlspec.LexKindName(kindHexByte),
			Pattern: mlspec.LexPattern(`(0x|0X)?[0-9A-Fa-f][0-9A-Fa-f]`),
		},
		{
			Kind:    mlspec.LexKindName(kindSeparator),
			Pattern: mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020},]+`),
		},
	},
}

var (
	compileOnce sync.Once
	clspec      *mlspec.CompiledLexSpec
	compileErr  error
)

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileOnce.Do(func() {
		s, err, cErrs := mlcompiler.Compile(lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				for i, cerr := range cErrs {
					if i > 0 {
						fmt.Fprintf(&b, "\n")
					}
					fmt.Fprintf(&b, "%v: %v", cerr.Kind, cerr.Cause)
				}
				compileErr = fmt.Errorf("cannot compile the hex notation lexer: %v", b.String())
				return
			}
			compileErr = fmt.Errorf("cannot compile the hex notation lexer: %w", err)
			return
		}
		clspec = s
	})
	return clspec, compileErr
}

// SyntaxError reports text that is neither a hex byte nor a separator. Row and Col are 1-based.
type SyntaxError struct {
	Row  int
	Col  int
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: invalid hex notation: %q", e.Row, e.Col, e.Text)
}

// Parse reads hex notation from src and returns the bytes it denotes.
func Parse(src io.Reader) ([]byte, error) {
	s, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}

	var bs []byte
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			break
		}
		if tok.Invalid {
			return nil, &SyntaxError{
				Row:  tok.Row + 1,
				Col:  tok.Col + 1,
				Text: string(tok.Lexeme),
			}
		}

		switch s.KindNames[tok.KindID].String() {
		case kindHexByte:
			digits := strings.TrimPrefix(strings.TrimPrefix(string(tok.Lexeme), "0x"), "0X")
			n, err := strconv.ParseUint(digits, 16, 8)
			if err != nil {
				return nil, err
			}
			bs = append(bs, byte(n))
		case kindSeparator:
			continue
		}
	}
	if bs == nil {
		bs = []byte{}
	}
	return bs, nil
}

// ParseString is Parse for a string.
func ParseString(src string) ([]byte, error) {
	return Parse(strings.NewReader(src))
}
