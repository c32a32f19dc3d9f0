package cmd

import (
	"fmt"
	"log"
	"os"

	"favefm/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "favefm",
	Short: "favefm is a personal music discovery service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting favefm server...")
		// server.Start handles its own configuration and startup logging.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
