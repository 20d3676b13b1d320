package cli

import (
	"github.com/spf13/cobra"
)

// Version is the build version, set via -ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quaero version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("quaero %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
