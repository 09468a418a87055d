package commands

import (
	"errors"

	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/store/file"
	pgxstore "github.com/OFFIS-RIT/migrascope/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	importSnapshot    string
	importDatabaseURL string
	importID          string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a snapshot document in the database",
	Long: `import replaces the stored objects and relationships of the snapshot's
assessment with the content of the document.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSnapshot, "snapshot", "", "Snapshot document (path, s3:// or gs://)")
	importCmd.Flags().StringVar(&importDatabaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	importCmd.Flags().StringVar(&importID, "id", "", "Assessment id, overrides the one in the document")
	_ = importCmd.MarkFlagRequired("snapshot")
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dsn := importDatabaseURL
	if dsn == "" {
		dsn = util.GetEnv("DATABASE_URL")
	}
	if dsn == "" {
		return errors.New("no database configured, set --database-url or DATABASE_URL")
	}

	router, err := newRouter(ctx, importSnapshot)
	if err != nil {
		return err
	}
	snap, err := file.Read(ctx, router, importSnapshot)
	if err != nil {
		return err
	}
	if importID != "" {
		snap.AssessmentID = importID
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := pgxstore.NewStore(pool, pgxstore.WithChunkSize(util.GetEnvInt("DB_CHUNK_SIZE", 1000)))
	if err := db.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	logger.Info("[Snapshot] Imported",
		"assessment", snap.AssessmentID,
		"objects", len(snap.Objects),
		"relationships", len(snap.Relationships))
	return nil
}
