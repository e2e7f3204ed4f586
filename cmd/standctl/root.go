package main

import (
	"fmt"
	"os"

	"standfinder/internal/model"
	"standfinder/internal/repository"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "standctl",
	Short: "standctl browses a stand fixture from the command line",
	Long: `standctl runs the same search, filter and sort operations as the
standfinder server against a fixture file, without starting the server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("fixture", "", "JSON or YAML fixture file (default: built-in fixture)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json or yaml")
}

func loadFixture(cmd *cobra.Command) ([]model.Stand, error) {
	path, _ := cmd.Flags().GetString("fixture")
	return repository.NewFileSource(path).LoadStands(cmd.Context())
}
