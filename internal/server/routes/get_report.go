package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/migrascope/internal/server/middleware"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/report"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/OFFIS-RIT/migrascope/internal/server/routes")

// GetReportHandler generates the report synchronously. ?pretty=true
// indents the document.
func GetReportHandler(c echo.Context) error {
	assessmentID, ok, err := bindAssessment(c)
	if !ok {
		return err
	}

	ctx, span := tracer.Start(c.Request().Context(), "report.Generate",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.route", "/api/assessments/:id/report"),
			attribute.String("assessment.id", assessmentID),
		),
	)
	defer span.End()
	c.SetRequest(c.Request().WithContext(ctx))

	snap, ok, err := loadSnapshot(c, assessmentID)
	if !ok {
		span.SetStatus(codes.Error, "snapshot unavailable")
		return err
	}
	span.SetAttributes(
		attribute.Int("snapshot.objects", len(snap.Objects)),
		attribute.Int("snapshot.relationships", len(snap.Relationships)),
	)

	app := c.(*middleware.AppContext).App
	rep := app.NewEngine("api").Generate(ctx, snap)

	body, err := report.Encode(rep, c.QueryParam("pretty") == "true")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		logger.Error("[Server] Failed to encode report", "assessment", assessmentID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSONBlob(http.StatusOK, body)
}
