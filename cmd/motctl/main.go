// Package main implements motctl, a terminal client for the MOT tracker API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var serverURL string

var rootCmd = &cobra.Command{
	Use:           "motctl",
	Short:         "Inspect MOT records and compliance reports from the terminal",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	server := os.Getenv("MOTCTL_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "API base URL")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, reportCmd, expiringCmd)
}
