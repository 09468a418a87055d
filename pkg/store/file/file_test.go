package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	ioloader "github.com/OFFIS-RIT/migrascope/pkg/loader/io"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document1 = `{
  "assessment_id": "a1",
  "name": "Finance",
  "objects": [
    {"id": "d1", "object_type": "dashboard", "name": "Sales", "properties": {"owner": "ops", "b": 2}},
    {"id": "c1", "object_type": "calculated_field", "name": "Margin", "properties": "{\"calculation\": \"a/b\"}"},
    {"id": "c2", "object_type": "calculated_field", "name": "Broken", "properties": "{\"calculation\": \"x\","},
    {"id": "f1", "object_type": "filter", "name": "Year", "parent_id": "d1", "properties": null},
    {"object_type": "filter", "name": "no id"}
  ],
  "relationships": [
    {"source_object_id": "d1", "target_object_id": "c1", "relationship_type": "contains"},
    {"source_id": "d1", "target_id": "f1", "relationship_type": "contains"},
    {"source_object_id": "d1", "relationship_type": "contains"}
  ],
  "usage_stats": {"views": 10}
}`

func TestDecode(t *testing.T) {
	snap, err := Decode([]byte(document1))
	require.NoError(t, err)

	assert.Equal(t, "a1", snap.AssessmentID)
	assert.Equal(t, "Finance", snap.Name)
	require.Len(t, snap.Objects, 4)

	assert.Equal(t, []string{"owner", "b"}, snap.Objects[0].Properties.Keys())
	assert.Equal(t, "a/b", snap.Objects[1].Properties.String("calculation"))
	assert.Equal(t, "x", snap.Objects[2].Properties.String("calculation"))
	assert.Equal(t, "d1", snap.Objects[3].Properties.String("parent_id"))

	require.Len(t, snap.Relationships, 2)
	assert.Equal(t, "f1", snap.Relationships[1].TargetID)
	assert.JSONEq(t, `{"views": 10}`, string(snap.UsageStats))
}

func TestDecodeRepairsDocument(t *testing.T) {
	snap, err := Decode([]byte(`{"objects": [{"id": "d1", "object_type": "dashboard",},],}`))
	require.NoError(t, err)
	require.Len(t, snap.Objects, 1)
	assert.Equal(t, "dashboard", snap.Objects[0].Type)
	assert.Nil(t, snap.UsageStats)
}

func TestDecodePropertiesFallbacks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keys []string
	}{
		{"empty", ``, nil},
		{"null", `null`, nil},
		{"object", `{"a": 1}`, []string{"a"}},
		{"encoded", `"{\"a\": 1}"`, []string{"a"}},
		{"blank string", `"  "`, nil},
		{"array", `[1, 2]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := decodeProperties([]byte(tt.raw))
			if tt.keys == nil {
				assert.Zero(t, props.Len())
				return
			}
			assert.Equal(t, tt.keys, props.Keys())
		})
	}
}

func TestStoreLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a2.json"), []byte(`{"objects": []}`), 0o644))

	s := NewStore(ioloader.NewIOLoader(), dir)

	snap, err := s.LoadSnapshot(context.Background(), "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", snap.AssessmentID)

	_, err = s.LoadSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrAssessmentNotFound)

	_, err = s.LoadSnapshot(context.Background(), "../a2")
	assert.ErrorIs(t, err, store.ErrAssessmentNotFound)
}

func TestReadNamesSnapshotAfterFile(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join(dir, "q3-review.json")
	require.NoError(t, os.WriteFile(location, []byte(`{"objects": [{"id": "r1", "object_type": "report"}]}`), 0o644))

	snap, err := Read(context.Background(), ioloader.NewIOLoader(), location)
	require.NoError(t, err)
	assert.Equal(t, "q3-review", snap.AssessmentID)
	assert.Len(t, snap.Objects, 1)
}
