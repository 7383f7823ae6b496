package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/spigell/resume-assistant/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the resume-assistant version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
	},
}

func init() {
	versionCmd.Flags().BoolP("short", "s", false, "print only the version number")

	rootCmd.AddCommand(versionCmd)
}
