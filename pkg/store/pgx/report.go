package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/migrascope/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

func (s *Store) SaveReport(ctx context.Context, rec store.ReportRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	_, err := s.conn.Exec(ctx, insertReportSQL, rec.AssessmentID, rec.CorrelationID, rec.Location, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("record report for %s: %w", rec.AssessmentID, err)
	}
	return nil
}

// LatestReport returns the newest artifact of the assessment, or
// store.ErrReportNotFound.
func (s *Store) LatestReport(ctx context.Context, assessmentID string) (store.ReportRecord, error) {
	rec := store.ReportRecord{AssessmentID: assessmentID}
	err := s.conn.QueryRow(ctx, selectLatestReportSQL, assessmentID).
		Scan(&rec.CorrelationID, &rec.Location, &rec.CreatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return store.ReportRecord{}, store.ErrReportNotFound
	}
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("latest report for %s: %w", assessmentID, err)
	}
	return rec, nil
}

const insertReportSQL = `
INSERT INTO assessment_reports (assessment_id, correlation_id, location, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (assessment_id, correlation_id) DO UPDATE
SET location   = EXCLUDED.location,
    created_at = EXCLUDED.created_at;
`

const selectLatestReportSQL = `
SELECT correlation_id, location, created_at
FROM assessment_reports
WHERE assessment_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
