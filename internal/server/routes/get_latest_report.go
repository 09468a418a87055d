package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetLatestReportHandler links to the newest stored report artifact.
func GetLatestReportHandler(c echo.Context) error {
	type latestResponse struct {
		AssessmentID  string    `json:"assessment_id"`
		CorrelationID string    `json:"correlation_id"`
		CreatedAt     time.Time `json:"created_at"`
		URL           string    `json:"url"`
	}

	assessmentID, ok, err := bindAssessment(c)
	if !ok {
		return err
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	rec, err := app.Reports.LatestReport(ctx, assessmentID)
	if errors.Is(err, store.ErrReportNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No report generated yet"})
	}
	if err != nil {
		logger.Error("[Server] Failed to look up latest report", "assessment", assessmentID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	url, err := app.Artifacts.DownloadLink(ctx, rec.Location)
	if err != nil {
		logger.Error("[Server] Failed to sign report link", "location", rec.Location, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, latestResponse{
		AssessmentID:  assessmentID,
		CorrelationID: rec.CorrelationID,
		CreatedAt:     rec.CreatedAt,
		URL:           url,
	})
}
