package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/migrascope/internal/storage"
	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/leaselock"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

type ArtifactStore interface {
	PutReport(ctx context.Context, key string, body []byte) (string, error)
}

type failureRecorder interface {
	Failure(stage string)
}

// ReportHandler generates the report a ReportJob asks for, uploads it and
// records where it went.
type ReportHandler struct {
	Snapshots store.SnapshotStore
	Reports   store.ReportStore
	Artifacts ArtifactStore
	Locks     Locker
	Engine    *report.Engine
	Metrics   failureRecorder

	LockOptions   leaselock.Options
	UploadRetries int
	UploadBackoff util.Backoff
}

var tracer = otel.Tracer("github.com/OFFIS-RIT/migrascope/internal/queue")

func (h *ReportHandler) failure(stage string) {
	if h.Metrics != nil {
		h.Metrics.Failure(stage)
	}
}

// Process handles one message body. Malformed jobs and unknown assessments
// come back as permanent errors.
func (h *ReportHandler) Process(ctx context.Context, body []byte) error {
	job, err := DecodeReportJob(body)
	if err != nil {
		return Permanent(err)
	}
	ctx, span := tracer.Start(ctx, "report.Job",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("assessment.id", job.AssessmentID),
			attribute.String("job.correlation_id", job.CorrelationID),
		),
	)
	defer span.End()

	err = h.Locks.WithLease(ctx, leaselock.ReportKey(job.AssessmentID), h.LockOptions, func(ctx context.Context) error {
		return h.generate(ctx, job)
	})
	if errors.Is(err, leaselock.ErrBusy) {
		h.failure("lock")
		logger.Info("[Worker] Report already being generated, retrying later", "assessment", job.AssessmentID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report job failed")
		return err
	}
	return nil
}

func (h *ReportHandler) generate(ctx context.Context, job ReportJob) error {
	start := time.Now()

	snap, err := h.Snapshots.LoadSnapshot(ctx, job.AssessmentID)
	if errors.Is(err, store.ErrAssessmentNotFound) {
		h.failure("load")
		return Permanent(err)
	}
	if err != nil {
		h.failure("load")
		return fmt.Errorf("load snapshot: %w", err)
	}

	rep := h.Engine.Generate(ctx, snap)
	body, err := report.Encode(rep, false)
	if err != nil {
		return Permanent(fmt.Errorf("encode report: %w", err))
	}

	key := storage.ReportKey(job.AssessmentID, job.CorrelationID)
	location, err := util.Retry(ctx, max(h.UploadRetries, 1), h.UploadBackoff, func(ctx context.Context) (string, error) {
		return h.Artifacts.PutReport(ctx, key, body)
	})
	if err != nil {
		h.failure("upload")
		return fmt.Errorf("upload report: %w", err)
	}

	rec := store.ReportRecord{
		AssessmentID:  job.AssessmentID,
		CorrelationID: job.CorrelationID,
		Location:      location,
	}
	err = util.RetryErr(ctx, max(h.UploadRetries, 1), h.UploadBackoff, func(ctx context.Context) error {
		return h.Reports.SaveReport(ctx, rec)
	})
	if err != nil {
		h.failure("record")
		return err
	}

	logger.Info("[Worker] Stored report",
		"assessment", job.AssessmentID,
		"correlation_id", job.CorrelationID,
		"location", location,
		"bytes", len(body),
		"duration", time.Since(start))
	return nil
}
