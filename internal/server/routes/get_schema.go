package routes

import (
	"net/http"
	"sync"

	"github.com/OFFIS-RIT/migrascope/pkg/report"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

var reportSchema = sync.OnceValues(func() ([]byte, error) {
	return json.Marshal(report.Schema())
})

func GetReportSchemaHandler(c echo.Context) error {
	body, err := reportSchema()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSONBlob(http.StatusOK, body)
}
