package reference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/loader"
)

const featuresCSV = "\xef\xbb\xbfFeature Area,Feature,Complexity,Feasibility,Description,Recommended Approach\n" +
	"Visualization,Pie,Low,Yes,Simple pie,Use native pie\n" +
	"Visualization,pie,Critical,No,Duplicate,Ignored\n" +
	"Visualization,\"Clustered Bar\",High,Partial,\"Bars, clustered\",Custom viz\n" +
	"Filter,Pie,Medium,Yes,,\n" +
	",,,,,\n" +
	"Visualization,,Low,Yes,no name,\n"

const rulesCSV = "feature_area,feature,complexity,order\n" +
	"Calculated Field,Nested IF,Medium,2\n" +
	"Calculated Field,Other,medium,3\n" +
	"Visualization,Custom charts,Critical,1\n"

func memLoader(files map[string]string) loader.BlobLoader {
	return loader.BlobLoaderFunc(func(_ context.Context, location string) ([]byte, error) {
		c, ok := files[location]
		if !ok {
			return nil, errors.New("not found")
		}
		return []byte(c), nil
	})
}

func TestCatalogFromCSV(t *testing.T) {
	src := CSVSource{
		Loader:           memLoader(map[string]string{"f.csv": featuresCSV, "r.csv": rulesCSV}),
		FeaturesLocation: "f.csv",
		RulesLocation:    "r.csv",
	}
	c := NewCatalog(src)
	c.Load(context.Background())

	f, ok := c.Visualization(" PIE ")
	require.True(t, ok)
	assert.Equal(t, "Low", f.Complexity)
	assert.Equal(t, "Use native pie", f.Recommended)

	lvl, ok := c.VisualizationLevel("clustered bar")
	require.True(t, ok)
	assert.Equal(t, complexity.High, lvl)

	_, ok = c.VisualizationLevel("Gauge")
	assert.False(t, ok)

	label, ok := c.RuleFeature("calculated_field", complexity.Medium)
	require.True(t, ok)
	assert.Equal(t, "Nested IF", label)

	_, ok = c.RuleFeature("filter", complexity.Low)
	assert.False(t, ok)
}

type failingSource struct{ calls atomic.Int32 }

func (f *failingSource) Features(context.Context) ([]Feature, error) {
	f.calls.Add(1)
	return nil, errors.New("warehouse offline")
}

func (f *failingSource) Rules(context.Context) ([]Rule, error) {
	f.calls.Add(1)
	return nil, errors.New("warehouse offline")
}

func TestCatalogDegradesAndLoadsOnce(t *testing.T) {
	src := &failingSource{}
	c := NewCatalog(src)
	c.Load(context.Background())
	c.Load(context.Background())

	assert.Equal(t, complexity.Unknown, complexity.Visualization(c, "Pie"))
	_, ok := c.RuleFeature("visualization", complexity.Low)
	assert.False(t, ok)
	assert.Equal(t, int32(2), src.calls.Load())

	empty := NewCatalog(nil)
	_, ok = empty.Visualization("Pie")
	assert.False(t, ok)
}

type countingSource struct {
	StaticSource
	calls atomic.Int32
}

func (c *countingSource) Features(ctx context.Context) ([]Feature, error) {
	c.calls.Add(1)
	return c.StaticSource.Features(ctx)
}

func TestCachedSourceHonoursTTL(t *testing.T) {
	inner := &countingSource{StaticSource: StaticSource{FeatureRows: []Feature{{Area: "Visualization", Name: "Pie"}}}}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cs := NewCachedSource(inner, time.Minute)
	cs.now = func() time.Time { return now }

	for range 3 {
		rows, err := cs.Features(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 1)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	now = now.Add(2 * time.Minute)
	_, err := cs.Features(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	cs.Invalidate()
	_, err = cs.Features(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestCSVSourceWithoutLocations(t *testing.T) {
	rows, err := CSVSource{}.Features(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
