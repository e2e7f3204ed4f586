package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the fixture against the stand schema",
	Long:  `Loads the fixture, checks its shape against the stand schema and validates every record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stands, err := loadFixture(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fixture is valid: %d stands\n", len(stands))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
