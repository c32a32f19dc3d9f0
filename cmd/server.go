package cmd

import (
	"favefm/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the favefm HTTP server",
	Long:  `Start the favefm web server, serving the discovery pages and the signup/login/save API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
