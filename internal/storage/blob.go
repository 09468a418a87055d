package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/loader"
	"github.com/OFFIS-RIT/migrascope/pkg/loader/gcs"
	ioloader "github.com/OFFIS-RIT/migrascope/pkg/loader/io"
	s3loader "github.com/OFFIS-RIT/migrascope/pkg/loader/s3"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/reference"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const referenceCacheTTL = 10 * time.Minute

// NewRouter serves plain paths from disk and s3:// through client when one
// is given. Google Cloud Storage is only set up when GCS_CREDENTIALS_FILE is
// configured or one of the locations uses gs://, since the client needs
// credentials to start.
func NewRouter(ctx context.Context, client *s3.Client, locations ...string) (*loader.Router, error) {
	router := loader.NewRouter(ioloader.NewIOLoader())
	if client != nil {
		router.Handle("s3", s3loader.NewS3LoaderWithClient(client))
	}

	credentials := util.GetEnv("GCS_CREDENTIALS_FILE")
	needsGCS := credentials != ""
	for _, l := range locations {
		if scheme, _ := loader.SplitLocation(l); scheme == "gs" {
			needsGCS = true
		}
	}
	if needsGCS {
		gs, err := gcs.NewGCSLoader(ctx, credentials)
		if err != nil {
			return nil, err
		}
		router.Handle("gs", gs)
	}
	return router, nil
}

// ReferenceSource picks the reference tables named by kind: "postgres"
// reads them through db, "csv" through the blob router, "none" or an
// empty kind disables them. The result is cached for referenceCacheTTL.
func ReferenceSource(ctx context.Context, kind string, db reference.Source, client *s3.Client) (reference.Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		logger.Info("[Reference] No reference source configured, visualizations rate Unknown")
		return nil, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres reference source needs a database")
		}
		return reference.NewCachedSource(db, referenceCacheTTL), nil
	case "csv":
		features := util.GetEnv("REFERENCE_FEATURES_URI")
		rules := util.GetEnv("REFERENCE_RULES_URI")
		router, err := NewRouter(ctx, client, features, rules)
		if err != nil {
			return nil, err
		}
		return reference.NewCachedSource(reference.CSVSource{
			Loader:           router,
			FeaturesLocation: features,
			RulesLocation:    rules,
		}, referenceCacheTTL), nil
	}
	return nil, fmt.Errorf("unknown REFERENCE_SOURCE %q", kind)
}
