package report

import (
	"context"
	"time"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/graph"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
	"github.com/OFFIS-RIT/migrascope/pkg/reference"
)

// Engine generates assessment reports. It is safe for concurrent use; the
// reference catalog is the only state shared between generations.
type Engine struct {
	catalog  *reference.Catalog
	observer func(Stats)
}

// Stats describes one finished generation.
type Stats struct {
	AssessmentID  string
	Objects       int
	Relationships int
	Cycles        int
	Duration      time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource builds a fresh catalog over src. Its tables load at most once
// for the lifetime of the engine.
func WithSource(src reference.Source) Option {
	return func(e *Engine) {
		e.catalog = reference.NewCatalog(src)
	}
}

// WithCatalog shares an existing catalog between engines.
func WithCatalog(c *reference.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithObserver registers fn to be called after every generation.
func WithObserver(fn func(Stats)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// NewEngine returns an engine with an empty reference catalog unless a
// source or catalog option supplies one.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = reference.NewCatalog(nil)
	}
	return e
}

// Generate builds the complete report for one snapshot. It never fails:
// dangling relationships are ignored, malformed properties read as absent
// and an unavailable reference source leaves lookups empty.
func (e *Engine) Generate(ctx context.Context, snap model.Snapshot) *Report {
	start := time.Now()
	e.catalog.Load(ctx)

	r := newRun(snap, e.catalog)
	cycles := r.g.Cycles()
	if len(cycles) > 0 {
		logger.Warn("[Report] Containment cycles found, traversals stay bounded",
			"assessment", snap.AssessmentID, "cycles", len(cycles))
	}

	rep := &Report{
		AssessmentID: snap.AssessmentID,
		UsageStats:   snap.UsageStats,
	}
	rep.Sections = r.sections()
	rep.ComplexAnalysis = r.complexAnalysis(rep.Sections)
	rep.Summary = summarize(rep.Sections, rep.ComplexAnalysis)
	rep.Challenges = r.challenges()
	rep.Appendix = r.appendix()

	stats := Stats{
		AssessmentID:  snap.AssessmentID,
		Objects:       len(snap.Objects),
		Relationships: len(snap.Relationships),
		Cycles:        len(cycles),
		Duration:      time.Since(start),
	}
	logger.Debug("[Report] Generated report",
		"assessment", stats.AssessmentID,
		"objects", stats.Objects,
		"relationships", stats.Relationships,
		"duration", stats.Duration)
	if e.observer != nil {
		e.observer(stats)
	}
	return rep
}

// run holds the state of one generation. Nothing in it outlives Generate.
type run struct {
	g       *graph.Graph
	catalog *reference.Catalog

	// full resolves generic categories, local skips the mixed-edge search
	// and contain only follows containment.
	full    *graph.Resolver
	local   *graph.Resolver
	contain *graph.Resolver
	reach   *graph.Reach

	byKind  map[string][]model.Object
	visuals []model.Object
}

func newRun(snap model.Snapshot, catalog *reference.Catalog) *run {
	g := graph.Build(snap.Objects, snap.Relationships)
	r := &run{
		g:       g,
		catalog: catalog,
		full:    graph.NewResolver(g, graph.FullChain()...),
		local:   graph.NewResolver(g, graph.ContainmentOrFileChain()...),
		contain: graph.NewResolver(g, graph.ContainmentChain()...),
		reach:   graph.NewReach(g),
		byKind:  make(map[string][]model.Object),
	}
	for _, obj := range g.Objects() {
		r.byKind[obj.Kind()] = append(r.byKind[obj.Kind()], obj)
		if complexity.IsVisualization(obj) {
			r.visuals = append(r.visuals, obj)
		}
	}
	return r
}

func (r *run) sections() Sections {
	return Sections{
		Visualizations:   r.visualizationDetails(),
		Dashboards:       r.dashboards(),
		Reports:          r.reports(),
		Packages:         r.packages(),
		Connections:      r.connections(),
		CalculatedFields: collect(r, calculatedFields, plain),
		Filters:          collect(r, filters, r.filterItem),
		Parameters:       collect(r, parameters, plain),
		Sorts:            collect(r, sorts, plain),
		Prompts:          collect(r, prompts, plain),
		DataModules:      r.dataModules(),
		Queries:          collect(r, queries, r.queryItem),
		Measures:         collect(r, measures, r.measureItem),
		Dimensions:       collect(r, dimensions, r.dimensionItem),
	}
}

func (r *run) visualizationLevel(obj model.Object) complexity.Level {
	return complexity.Visualization(r.catalog, complexity.VisualizationType(obj))
}

func (r *run) name(id, fallback string) string {
	obj, ok := r.g.Object(id)
	if !ok {
		return fallback
	}
	return obj.DisplayName(fallback)
}
