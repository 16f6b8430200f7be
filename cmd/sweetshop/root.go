package main

import "github.com/spf13/cobra"

const service = "sweetshop"

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var flagConfigFile string

var rootCmd = &cobra.Command{
	Use:           service,
	Short:         "In-memory sweet shop inventory service",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (yaml, json or toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
