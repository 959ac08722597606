package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihei9/charscope/ucd"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <code point>...",
		Short:   "Print the descriptions of code points",
		Example: `  charscope describe U+00E9 1F600`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	cps := make([]rune, 0, len(args))
	for _, arg := range args {
		cp, err := parseCodePoint(arg)
		if err != nil {
			return err
		}
		cps = append(cps, cp)
	}

	db, err := ucd.LoadFile(c.UnicodeData)
	if err != nil {
		return err
	}
	descs := make([]ucd.Description, 0, len(cps))
	for _, cp := range cps {
		d, ok := db.Describe(cp)
		if !ok {
			d = ucd.Unassigned(cp)
		}
		descs = append(descs, d)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(descs)
}

// parseCodePoint reads a scalar value written in hex with an optional U+ or 0x prefix.
func parseCodePoint(s string) (rune, error) {
	digits := s
	for _, prefix := range []string{"U+", "u+", "0x", "0X"} {
		if strings.HasPrefix(digits, prefix) {
			digits = digits[len(prefix):]
			break
		}
	}
	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code point: %q", s)
	}
	if n > 0x10FFFF {
		return 0, fmt.Errorf("invalid code point: %q exceeds U+10FFFF", s)
	}
	if n >= 0xD800 && n <= 0xDFFF {
		return 0, fmt.Errorf("invalid code point: %q is a surrogate", s)
	}
	return rune(n), nil
}
