package cmd

import (
	"fmt"
	buildinfo "runtime/debug"

	"github.com/spf13/cobra"
)

// version is overridden at link time with -ldflags "-X .../cmd.version=..."
var version = "0.3.0"

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, version)
			return nil
		}

		fmt.Fprintf(out, "trader version %s\n", version)
		if info, ok := buildinfo.ReadBuildInfo(); ok {
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
			fmt.Fprintf(out, "  module: %s\n", info.Main.Path)
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					fmt.Fprintf(out, "  commit: %s\n", s.Value)
				}
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
