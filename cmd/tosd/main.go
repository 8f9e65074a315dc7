// Command tosd runs the EDI ingestion server: an HTTP surface over the
// BAPLIE/COARRI/CODECO ingestion pipeline, backed by SQLite.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "tosd",
	Short: "EDI ingestion server for container terminal operations",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default: discover tosd.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
