package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/migrascope/pkg/hierarchy"

	"github.com/labstack/echo/v4"
)

// GetHierarchyHandler returns the assessment's containment tree below the
// virtual root together with the edges dropped to break cycles.
func GetHierarchyHandler(c echo.Context) error {
	assessmentID, ok, err := bindAssessment(c)
	if !ok {
		return err
	}

	snap, ok, err := loadSnapshot(c, assessmentID)
	if !ok {
		return err
	}

	tree := hierarchy.Build(snap.Objects, snap.Relationships)
	return c.JSON(http.StatusOK, tree)
}
