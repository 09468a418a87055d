package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/migrascope/internal/queue"
	"github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EnqueueReportHandler schedules report generation on the worker queue.
func EnqueueReportHandler(c echo.Context) error {
	type enqueueResponse struct {
		Message       string `json:"message"`
		AssessmentID  string `json:"assessment_id,omitempty"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	assessmentID, ok, err := bindAssessment(c)
	if !ok {
		return err
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	// Reject unknown assessments before they reach the worker.
	if _, ok, err := loadSnapshot(c, assessmentID); !ok {
		return err
	}

	job, err := queue.NewReportJob(assessmentID)
	if err != nil {
		logger.Error("[Server] Failed to create report job", "err", err)
		return c.JSON(http.StatusInternalServerError, enqueueResponse{Message: "Internal server error"})
	}
	if err := queue.PublishReportJob(ctx, app.Queue, job); err != nil {
		logger.Error("[Server] Failed to publish report job", "assessment", assessmentID, "err", err)
		return c.JSON(http.StatusServiceUnavailable, enqueueResponse{Message: "Queue unavailable"})
	}
	app.Metrics.Published()

	logger.Info("[Server] Report job queued", "assessment", assessmentID, "correlation_id", job.CorrelationID)
	return c.JSON(http.StatusAccepted, enqueueResponse{
		Message:       "Report generation queued",
		AssessmentID:  assessmentID,
		CorrelationID: job.CorrelationID,
	})
}
