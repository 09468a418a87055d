package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/labstack/echo/v4"
)

type assessmentParams struct {
	AssessmentID string `param:"id" validate:"required,max=128"`
}

func bindAssessment(c echo.Context) (string, bool, error) {
	params := new(assessmentParams)
	if err := c.Bind(params); err != nil {
		return "", false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(params); err != nil {
		return "", false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid assessment id"})
	}
	return params.AssessmentID, true, nil
}

// loadSnapshot writes the error response itself; ok is false when it did.
func loadSnapshot(c echo.Context, assessmentID string) (model.Snapshot, bool, error) {
	app := c.(*middleware.AppContext).App
	snap, err := app.Snapshots.LoadSnapshot(c.Request().Context(), assessmentID)
	if errors.Is(err, store.ErrAssessmentNotFound) {
		return model.Snapshot{}, false, c.JSON(http.StatusNotFound, map[string]string{"error": "Assessment not found"})
	}
	if err != nil {
		app.Metrics.Failure("load")
		logger.Error("[Server] Failed to load snapshot", "assessment", assessmentID, "err", err)
		return model.Snapshot{}, false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return snap, true, nil
}
