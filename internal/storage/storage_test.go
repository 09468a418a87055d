package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/migrascope/pkg/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/a1/c1.json", ReportKey("a1", "c1"))
}

func TestReferenceSourceKinds(t *testing.T) {
	ctx := context.Background()

	src, err := ReferenceSource(ctx, "none", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, src)

	_, err = ReferenceSource(ctx, "ldap", nil, nil)
	assert.Error(t, err)

	_, err = ReferenceSource(ctx, "postgres", nil, nil)
	assert.Error(t, err)

	src, err = ReferenceSource(ctx, "Postgres", reference.StaticSource{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &reference.CachedSource{}, src)
}

func TestReferenceSourceFromCSV(t *testing.T) {
	dir := t.TempDir()
	features := filepath.Join(dir, "features.csv")
	require.NoError(t, os.WriteFile(features, []byte("Feature Area,Feature,Complexity\nVisualization,Pie,Low\n"), 0o644))

	t.Setenv("GCS_CREDENTIALS_FILE", "")
	t.Setenv("REFERENCE_FEATURES_URI", features)
	t.Setenv("REFERENCE_RULES_URI", "")

	src, err := ReferenceSource(context.Background(), "csv", nil, nil)
	require.NoError(t, err)

	rows, err := src.Features(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pie", rows[0].Name)

	rules, err := src.Rules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRouterWithoutS3Client(t *testing.T) {
	t.Setenv("GCS_CREDENTIALS_FILE", "")
	router, err := NewRouter(context.Background(), nil, "/tmp/x.csv")
	require.NoError(t, err)

	_, err = router.Load(context.Background(), "s3://bucket/key")
	assert.Error(t, err)
}
