package commands

import (
	"github.com/OFFIS-RIT/migrascope/pkg/report"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the report document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		body, err := json.MarshalIndent(report.Schema(), "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), "", body)
	},
}
