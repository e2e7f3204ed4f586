package main

import (
	"fmt"
	"iter"

	"standfinder/internal/service"
	"standfinder/internal/utils"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations [query]",
	Short: "List the distinct suburbs, optionally narrowed by a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stands, err := loadFixture(cmd)
		if err != nil {
			return err
		}
		return printSuggestions(cmd, service.Locations(stands), args)
	},
}

var citiesCmd = &cobra.Command{
	Use:   "cities [query]",
	Short: "List the distinct cities, optionally narrowed by a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stands, err := loadFixture(cmd)
		if err != nil {
			return err
		}
		return printSuggestions(cmd, service.Cities(stands), args)
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd, citiesCmd)
}

func printSuggestions(cmd *cobra.Command, values iter.Seq[string], args []string) error {
	var query string
	if len(args) > 0 {
		query = args[0]
	}
	for v := range values {
		if utils.FuzzyMatch(query, v) {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
				return err
			}
		}
	}
	return nil
}
