package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ReportJob asks a worker to generate and store one assessment report.
type ReportJob struct {
	AssessmentID  string    `json:"assessment_id"`
	CorrelationID string    `json:"correlation_id"`
	RequestedAt   time.Time `json:"requested_at"`
}

func NewReportJob(assessmentID string) (ReportJob, error) {
	id, err := gonanoid.New()
	if err != nil {
		return ReportJob{}, err
	}
	return ReportJob{
		AssessmentID:  assessmentID,
		CorrelationID: id,
		RequestedAt:   time.Now().UTC(),
	}, nil
}

func DecodeReportJob(body []byte) (ReportJob, error) {
	var job ReportJob
	if err := json.Unmarshal(body, &job); err != nil {
		return ReportJob{}, fmt.Errorf("decode report job: %w", err)
	}
	job.AssessmentID = strings.TrimSpace(job.AssessmentID)
	if job.AssessmentID == "" {
		return ReportJob{}, errors.New("report job has no assessment id")
	}
	if job.CorrelationID == "" {
		return ReportJob{}, errors.New("report job has no correlation id")
	}
	return job, nil
}

// PublishReportJob enqueues job on ReportQueue.
func PublishReportJob(ctx context.Context, ch publisher, job ReportJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return PublishFIFO(ctx, ch, ReportQueue, body, nil)
}
