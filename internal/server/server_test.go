package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mid "github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/pkg/hierarchy"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	masterKey = "master-secret"
	hmacKey   = "signing-secret"
)

type fakeSnapshots map[string]model.Snapshot

func (f fakeSnapshots) LoadSnapshot(_ context.Context, id string) (model.Snapshot, error) {
	snap, ok := f[id]
	if !ok {
		return model.Snapshot{}, store.ErrAssessmentNotFound
	}
	return snap, nil
}

type fakeReports map[string]store.ReportRecord

func (f fakeReports) SaveReport(_ context.Context, rec store.ReportRecord) error {
	f[rec.AssessmentID] = rec
	return nil
}

func (f fakeReports) LatestReport(_ context.Context, id string) (store.ReportRecord, error) {
	rec, ok := f[id]
	if !ok {
		return store.ReportRecord{}, store.ErrReportNotFound
	}
	return rec, nil
}

type fakeQueue struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (f *fakeQueue) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, msg.Body)
	return nil
}

type fakeLinker struct{}

func (fakeLinker) DownloadLink(_ context.Context, location string) (string, error) {
	return "https://signed.example/" + location, nil
}

func newTestApp() (*mid.App, *fakeQueue) {
	q := &fakeQueue{}
	return &mid.App{
		Snapshots: fakeSnapshots{"a1": {
			AssessmentID: "a1",
			Objects: []model.Object{
				{ID: "f1", Type: model.TypeFolder, Name: "Team"},
				{ID: "d1", Type: model.TypeDashboard, Name: "Sales"},
			},
			Relationships: []model.Relationship{
				{SourceID: "f1", TargetID: "d1", Type: model.RelContains},
			},
		}},
		Reports: fakeReports{"a1": {
			AssessmentID:  "a1",
			CorrelationID: "c1",
			Location:      "s3://bucket/reports/a1/c1.json",
			CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		Queue:     q,
		Artifacts: fakeLinker{},
		Keyfunc: func(*jwt.Token) (any, error) {
			return []byte(hmacKey), nil
		},
		MasterAPIKey: masterKey,
	}, q
}

func do(t *testing.T, app *mid.App, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewEcho(app)
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signed(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp()
	rec := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuth(t *testing.T) {
	app, _ := newTestApp()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"master key", masterKey, http.StatusOK},
		{"signed subject", signed(t, jwt.MapClaims{"sub": "u1", "exp": exp}, hmacKey), http.StatusOK},
		{"legacy id claim", signed(t, jwt.MapClaims{"id": "u1", "exp": exp}, hmacKey), http.StatusOK},
		{"no subject", signed(t, jwt.MapClaims{"exp": exp}, hmacKey), http.StatusUnauthorized},
		{"wrong key", signed(t, jwt.MapClaims{"sub": "u1", "exp": exp}, "other"), http.StatusUnauthorized},
		{"expired", signed(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, hmacKey), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app, http.MethodGet, "/api/report/schema", tt.token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthWithoutKeyfunc(t *testing.T) {
	app, _ := newTestApp()
	app.Keyfunc = nil
	token := signed(t, jwt.MapClaims{"sub": "u1"}, hmacKey)

	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/report/schema", token).Code)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/report/schema", masterKey).Code)
}

func TestGetReport(t *testing.T) {
	app, _ := newTestApp()

	rec := do(t, app, http.MethodGet, "/api/assessments/a1/report", masterKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "a1", rep.AssessmentID)
	assert.Equal(t, 1, rep.Sections.Dashboards.Total)

	pretty := do(t, app, http.MethodGet, "/api/assessments/a1/report?pretty=true", masterKey)
	require.Equal(t, http.StatusOK, pretty.Code)
	assert.Contains(t, pretty.Body.String(), "\n  ")
	assert.Greater(t, pretty.Body.Len(), rec.Body.Len())
}

func TestGetReportUnknownAssessment(t *testing.T) {
	app, _ := newTestApp()
	rec := do(t, app, http.MethodGet, "/api/assessments/missing/report", masterKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnqueueReport(t *testing.T) {
	app, q := newTestApp()

	rec := do(t, app, http.MethodPost, "/api/assessments/a1/report", masterKey)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["correlation_id"])
	assert.Equal(t, "a1", resp["assessment_id"])

	require.Len(t, q.bodies, 1)
	assert.Equal(t, "report_queue", q.keys[0])
	assert.Contains(t, string(q.bodies[0]), resp["correlation_id"])
}

func TestEnqueueReportFailures(t *testing.T) {
	t.Run("unknown assessment", func(t *testing.T) {
		app, q := newTestApp()
		rec := do(t, app, http.MethodPost, "/api/assessments/missing/report", masterKey)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, q.bodies)
	})

	t.Run("queue down", func(t *testing.T) {
		app, q := newTestApp()
		q.err = errors.New("channel closed")
		rec := do(t, app, http.MethodPost, "/api/assessments/a1/report", masterKey)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetLatestReport(t *testing.T) {
	app, _ := newTestApp()

	rec := do(t, app, http.MethodGet, "/api/assessments/a1/report/latest", masterKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CorrelationID string    `json:"correlation_id"`
		CreatedAt     time.Time `json:"created_at"`
		URL           string    `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "c1", resp.CorrelationID)
	assert.Equal(t, "https://signed.example/s3://bucket/reports/a1/c1.json", resp.URL)
	assert.Equal(t, 2026, resp.CreatedAt.Year())

	missing := do(t, app, http.MethodGet, "/api/assessments/other/report/latest", masterKey)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestGetHierarchy(t *testing.T) {
	app, _ := newTestApp()

	rec := do(t, app, http.MethodGet, "/api/assessments/a1/hierarchy", masterKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var tree struct {
		Root *hierarchy.Node `json:"root"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	require.NotNil(t, tree.Root)
	assert.Equal(t, hierarchy.VirtualRootID, tree.Root.ID)
	require.Len(t, tree.Root.Children, 1)
	assert.Equal(t, "f1", tree.Root.Children[0].ID)
	require.Len(t, tree.Root.Children[0].Children, 1)
	assert.Equal(t, "d1", tree.Root.Children[0].Children[0].ID)
}

func TestGetReportSchema(t *testing.T) {
	app, _ := newTestApp()

	rec := do(t, app, http.MethodGet, "/api/report/schema", masterKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "sections")
	assert.Contains(t, props, "summary")
}
