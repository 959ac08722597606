package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihei9/charscope/bytespec"
)

var decodeFlags = struct {
	file *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "decode [hex bytes...]",
		Short: "Decode a byte sequence and print the aggregated response",
		Long: `decode runs every configured engine on a byte sequence and prints the same
JSON object the service responds with. Bytes given as arguments are read as hex
notation, such as "41 42 C3 A9", "0x41,0x42", or "4142C3A9". Without arguments,
raw bytes are read from --file or the standard input.`,
		Example: `  charscope decode C3 A9
  printf 'AB' | charscope decode`,
		RunE: runDecode,
	}
	decodeFlags.file = cmd.Flags().StringP("file", "f", "", "raw payload file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	var src []byte
	if len(args) > 0 {
		if *decodeFlags.file != "" {
			return fmt.Errorf("you cannot give hex bytes and --file at the same time")
		}
		src, err = bytespec.ParseString(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("cannot read the hex bytes: %w", err)
		}
	} else {
		var r io.Reader = cmd.InOrStdin()
		if *decodeFlags.file != "" {
			f, err := os.Open(*decodeFlags.file)
			if err != nil {
				return fmt.Errorf("cannot open the payload file %s: %w", *decodeFlags.file, err)
			}
			defer f.Close()
			r = f
		}
		src, err = io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("cannot read the payload: %w", err)
		}
	}

	d, err := c.newDispatcher()
	if err != nil {
		return fmt.Errorf("cannot set up the decoder: %w", err)
	}
	b, err := d.HandleJSON(src)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return nil
}
