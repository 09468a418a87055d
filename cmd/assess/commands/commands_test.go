package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/migrascope/pkg/report"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotDoc = `{
  "assessment_id": "acme",
  "objects": [
    {"id": "f1", "object_type": "folder", "name": "Team"},
    {"id": "d1", "object_type": "dashboard", "name": "Sales"}
  ],
  "relationships": [
    {"source_object_id": "f1", "target_object_id": "d1", "relationship_type": "contains"}
  ]
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acme.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotDoc), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestReportCommandWritesFile(t *testing.T) {
	snapshot := writeSnapshot(t)
	out := filepath.Join(t.TempDir(), "report.json")

	run(t, "report", "--snapshot", snapshot, "--out", out, "--pretty")

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, "acme", rep.AssessmentID)
	assert.Equal(t, 1, rep.Sections.Dashboards.Total)
}

func TestReportCommandStdout(t *testing.T) {
	snapshot := writeSnapshot(t)

	out := run(t, "report", "--snapshot", snapshot, "--out", "-", "--pretty=false")

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "acme", rep.AssessmentID)
}

func TestHierarchyCommand(t *testing.T) {
	snapshot := writeSnapshot(t)

	out := run(t, "hierarchy", "--snapshot", snapshot, "--json=false")

	assert.Equal(t, "Team [folder] (1)\n  Sales [dashboard] (0)\n", out)
}

func TestSchemaCommand(t *testing.T) {
	out := run(t, "schema")

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, schema, "properties")
}
