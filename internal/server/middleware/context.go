package middleware

import (
	"context"

	"github.com/OFFIS-RIT/migrascope/internal/metrics"
	"github.com/OFFIS-RIT/migrascope/pkg/reference"
	"github.com/OFFIS-RIT/migrascope/pkg/report"
	"github.com/OFFIS-RIT/migrascope/pkg/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

type AppUser struct {
	Subject string
	Role    string
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type Linker interface {
	DownloadLink(ctx context.Context, location string) (string, error)
}

type App struct {
	Snapshots store.SnapshotStore
	Reports   store.ReportStore
	Reference reference.Source
	Queue     Publisher
	Artifacts Linker
	Metrics   *metrics.Metrics

	Keyfunc      jwt.Keyfunc
	MasterAPIKey string
}

// NewEngine returns an engine for one request. Reference tables come from
// the shared source, whose cache outlives the engine.
func (a *App) NewEngine(source string) *report.Engine {
	return report.NewEngine(
		report.WithSource(a.Reference),
		report.WithObserver(func(s report.Stats) {
			a.Metrics.ObserveGeneration(source, s.Objects, s.Cycles, s.Duration)
		}),
	)
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
