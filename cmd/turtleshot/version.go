package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/turtleshot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of turtleshot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "turtleshot version %s\n", strings.TrimSpace(turtleshot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
