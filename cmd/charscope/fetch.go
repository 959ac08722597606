package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/nihei9/charscope/ucd"
)

const defaultUnicodeVersion = "16.0.0"

var fetchFlags = struct {
	unicodeVersion *string
	output         *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Download UnicodeData.txt from unicode.org",
		Example: `  charscope fetch --unicode-version 15.1.0 --output /usr/share/charscope/UnicodeData.txt`,
		Args:    cobra.NoArgs,
		RunE:    runFetch,
	}
	fetchFlags.unicodeVersion = cmd.Flags().String("unicode-version", defaultUnicodeVersion, "Unicode version")
	fetchFlags.output = cmd.Flags().StringP("output", "o", "UnicodeData.txt", "output file path")
	rootCmd.AddCommand(cmd)
}

func unicodeDataURL(version string) string {
	return fmt.Sprintf("https://www.unicode.org/Public/%v/ucd/UnicodeData.txt", version)
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := unicodeDataURL(*fetchFlags.unicodeVersion)
	glog.Infof("downloading %v", url)

	src, err := download(url)
	if err != nil {
		return err
	}

	// Refuse to install a file the service could not load.
	db, err := ucd.Load(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("the downloaded file is broken: %w", err)
	}

	err = os.WriteFile(*fetchFlags.output, src, 0644)
	if err != nil {
		return err
	}
	glog.Infof("wrote %v records to %v", db.Len(), *fetchFlags.output)
	return nil
}

func download(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot download %v: %v", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
