package error

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrBadCodePoint    = errors.New("bad code point")
	ErrBadMapping      = errors.New("bad mapping")
	ErrIO              = errors.New("i/o error")
)

// LoadError reports a failure to load a Unicode data file. Cause wraps one of the Err* sentinels,
// so callers can classify the failure with errors.Is.
type LoadError struct {
	Cause      error
	Detail     string
	FilePath   string
	SourceName string
	Row        int
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	}
	if e.Row != 0 {
		fmt.Fprintf(&b, "%v: ", e.Row)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}

	line := readLine(e.FilePath, e.Row)
	if line != "" {
		fmt.Fprintf(&b, "\n    %v", line)
	}

	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func readLine(filePath string, row int) string {
	if filePath == "" || row <= 0 {
		return ""
	}

	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	i := 1
	s := bufio.NewScanner(f)
	for s.Scan() {
		if i == row {
			return s.Text()
		}
		i++
	}

	return ""
}
