package commands

import (
	"context"
	"strings"

	"github.com/OFFIS-RIT/migrascope/internal/storage"
	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/loader"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/logger/console"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "assess",
	Short: "Migration assessment reports for BI metadata snapshots",
	Long: `assess reads an extracted metadata snapshot (a JSON file, s3:// or gs://
object) and produces the migration assessment report or the containment
hierarchy without a running server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv()
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debug || util.GetEnvBool("DEBUG", false),
		}))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(hierarchyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(schemaCmd)
}

// newRouter creates an S3 client only when one of the locations needs it,
// so local runs work without AWS configuration.
func newRouter(ctx context.Context, locations ...string) (*loader.Router, error) {
	var client *s3.Client
	for _, l := range locations {
		if strings.HasPrefix(l, "s3://") {
			c, err := storage.NewS3Client(ctx)
			if err != nil {
				return nil, err
			}
			client = c
			break
		}
	}
	return storage.NewRouter(ctx, client, locations...)
}
