package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nihei9/charscope/engine"
)

var rootCmd = &cobra.Command{
	Use:   "charscope",
	Short: "Decode byte sequences and describe the characters they contain",
	Long: `charscope decodes a byte sequence under several text encodings at once
and describes every decoded character with its Unicode code point and name.
- serve runs the decoder as a FastCGI (or HTTP) service.
- decode and describe run it from the command line.
- fetch downloads the UnicodeData.txt file the decoder needs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its settings from the standard flag set, which cobra has already filled in.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	flag.Set("logtostderr", "true")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	// The values of these flags are read through viper, see loadConfig.
	rootCmd.PersistentFlags().String("config", "", "config file path (YAML, TOML, or JSON)")
	rootCmd.PersistentFlags().String("unicode-data", "UnicodeData.txt", "UnicodeData.txt file path")
	rootCmd.PersistentFlags().StringSlice("engines", engine.DefaultNames, fmt.Sprintf("engines to run (known engines: %v)", engine.Names()))
	rootCmd.PersistentFlags().Bool("parallel", false, "run the engines of a request concurrently")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
