package commands

import (
	"fmt"

	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/reference"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	"github.com/OFFIS-RIT/migrascope/pkg/store/file"

	"github.com/spf13/cobra"
)

var (
	reportSnapshot string
	reportFeatures string
	reportRules    string
	reportOut      string
	reportPretty   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the assessment report for a snapshot",
	Example: `  assess report --snapshot acme.json --features features.csv --rules rules.csv --out report.json
  assess report --snapshot s3://exports/acme.json --pretty`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSnapshot, "snapshot", "", "Snapshot document (path, s3:// or gs://)")
	reportCmd.Flags().StringVar(&reportFeatures, "features", "", "Feature reference table (CSV)")
	reportCmd.Flags().StringVar(&reportRules, "rules", "", "Complex rules reference table (CSV)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the report to this file instead of stdout")
	reportCmd.Flags().BoolVar(&reportPretty, "pretty", false, "Indent the JSON output")
	_ = reportCmd.MarkFlagRequired("snapshot")
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	router, err := newRouter(ctx, reportSnapshot, reportFeatures, reportRules)
	if err != nil {
		return err
	}
	snap, err := file.Read(ctx, router, reportSnapshot)
	if err != nil {
		return err
	}

	var opts []report.Option
	if reportFeatures != "" || reportRules != "" {
		opts = append(opts, report.WithSource(reference.CSVSource{
			Loader:           router,
			FeaturesLocation: reportFeatures,
			RulesLocation:    reportRules,
		}))
	}
	rep := report.NewEngine(opts...).Generate(ctx, snap)

	body, err := report.Encode(rep, reportPretty)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), reportOut, body); err != nil {
		return err
	}
	if reportOut != "" && reportOut != "-" {
		logger.Info("[Report] Written", "assessment", rep.AssessmentID, "out", reportOut)
	}
	return nil
}
