package store

import (
	"context"
	"errors"
	"time"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrReportNotFound     = errors.New("no report stored for assessment")
)

// SnapshotStore loads the extracted objects and relationships of an
// assessment. Objects and relationships come back in insertion order so
// that report generation stays deterministic.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, assessmentID string) (model.Snapshot, error)
}

// SnapshotWriter imports a snapshot, replacing whatever the assessment held.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
}

// ReportRecord points at a generated report artifact.
type ReportRecord struct {
	AssessmentID  string    `json:"assessment_id"`
	CorrelationID string    `json:"correlation_id"`
	Location      string    `json:"location"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReportStore interface {
	SaveReport(ctx context.Context, rec ReportRecord) error
	LatestReport(ctx context.Context, assessmentID string) (ReportRecord, error)
}
