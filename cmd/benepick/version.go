package main

import (
	"fmt"
	"strings"

	"github.com/benepick/benepick"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of benepick",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "benepick version %s\n", strings.TrimSpace(benepick.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
