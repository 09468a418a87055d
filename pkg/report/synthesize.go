package report

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/graph"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

func (r *run) feature(area string, l complexity.Level) *string {
	f, ok := r.catalog.RuleFeature(area, l)
	if !ok {
		return nil
	}
	return optional(f)
}

func (r *run) matrix(area string, b ByComplexity) []AnalysisEntry {
	out := make([]AnalysisEntry, 0, len(complexity.Levels))
	for _, l := range complexity.Levels {
		s := b.Get(l)
		out = append(out, AnalysisEntry{
			Complexity:                s.Complexity,
			Count:                     s.Count,
			DashboardsContainingCount: s.DashboardsContainingCount,
			ReportsContainingCount:    s.ReportsContainingCount,
			Feature:                   r.feature(area, l),
		})
	}
	return out
}

// containerMatrix rates dashboards or reports, which contain themselves.
func (r *run) containerMatrix(area string, stats LevelCounts, dashboards bool) []AnalysisEntry {
	out := make([]AnalysisEntry, 0, len(complexity.Levels))
	for _, l := range complexity.Levels {
		e := AnalysisEntry{
			Complexity: l.Key(),
			Count:      stats.Get(l),
			Feature:    r.feature(area, l),
		}
		if dashboards {
			e.DashboardsContainingCount = e.Count
		} else {
			e.ReportsContainingCount = e.Count
		}
		out = append(out, e)
	}
	return out
}

func (r *run) complexAnalysis(s Sections) ComplexAnalysis {
	return ComplexAnalysis{
		Visualization:   r.matrix("visualization", s.Visualizations.ByComplexity),
		Dashboard:       r.containerMatrix("dashboard", s.Dashboards.Stats, true),
		Report:          r.containerMatrix("report", s.Reports.Stats, false),
		CalculatedField: r.matrix("calculated_field", s.CalculatedFields.ByComplexity),
		Filter:          r.matrix("filter", s.Filters.ByComplexity),
		Measure:         r.matrix("measure", s.Measures.ByComplexity),
		Dimension:       r.matrix("dimension", s.Dimensions.ByComplexity),
		Parameter:       r.matrix("parameter", s.Parameters.ByComplexity),
		Sort:            r.matrix("sort", s.Sorts.ByComplexity),
		Prompt:          r.matrix("prompt", s.Prompts.ByComplexity),
		Query:           r.matrix("query", s.Queries.ByComplexity),
	}
}

func categoryTotals(s Sections) map[string]int {
	return map[string]int{
		"visualization":    s.Visualizations.Total,
		"dashboard":        s.Dashboards.Total,
		"report":           s.Reports.Total,
		"calculated_field": s.CalculatedFields.Total,
		"filter":           s.Filters.Total,
		"measure":          s.Measures.Total,
		"dimension":        s.Dimensions.Total,
		"parameter":        s.Parameters.Total,
		"sort":             s.Sorts.Total,
		"prompt":           s.Prompts.Total,
		"query":            s.Queries.Total,
	}
}

// percent is part/total as a percentage with one decimal, ties to even.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.RoundToEven(float64(part)*1000/float64(total)) / 10
}

func summarize(s Sections, ca ComplexAnalysis) Summary {
	totals := categoryTotals(s)
	out := Summary{KeyFindings: make([]KeyFinding, 0)}

	for _, c := range ca.Categories() {
		if totals[c.Area] == 0 {
			continue
		}
		for _, l := range complexity.SeverityOrder {
			e := c.Entries[l.Rank()-1]
			if e.Count == 0 {
				continue
			}
			dp := percent(e.DashboardsContainingCount, s.Dashboards.Total)
			rp := percent(e.ReportsContainingCount, s.Reports.Total)
			out.KeyFindings = append(out.KeyFindings, KeyFinding{
				FeatureArea:       titleCase(c.Area),
				Complexity:        l,
				Count:             e.Count,
				DashboardsSummary: fmt.Sprintf("Used in %.1f%% of Dashboards", dp),
				ReportsSummary:    fmt.Sprintf("Used in %.1f%% of Reports", rp),
				DashboardsPercent: dp,
				ReportsPercent:    rp,
			})
			break
		}
	}

	for _, l := range complexity.Levels {
		out.Overview = append(out.Overview, OverviewEntry{
			Complexity:         l,
			VisualizationCount: s.Visualizations.Stats.Get(l),
			DashboardCount:     s.Dashboards.Stats.Get(l),
			ReportCount:        s.Reports.Stats.Get(l),
		})
	}

	out.Inventory = []InventoryItem{
		{"Dashboard", s.Dashboards.Total},
		{"Report", s.Reports.Total},
		{"Visualization", s.Visualizations.Total},
		{"Package", s.Packages.Total},
		{"Data Module", s.DataModules.Total},
		{"Data Source / Connection", s.Connections.TotalUniqueConnections},
		{"Calculated Field", s.CalculatedFields.Total},
		{"Filter", s.Filters.Total},
		{"Parameter", s.Parameters.Total},
		{"Sort", s.Sorts.Total},
		{"Prompt", s.Prompts.Total},
		{"Query", s.Queries.Total},
		{"Measure", s.Measures.Total},
		{"Dimension", s.Dimensions.Total},
	}
	return out
}

// rootLabel names the container of a visualization for the challenges list.
func (r *run) rootLabel(root graph.Root) *string {
	switch {
	case !root.Found():
		return nil
	case root.Synthetic:
		return ptr(fmt.Sprintf("Unknown (%s)", root.Kind))
	}
	return ptr(r.name(root.ID, root.ID))
}

// challenges lists visualizations rated Medium or worse, most severe first.
func (r *run) challenges() Challenges {
	out := Challenges{Visualization: make([]Challenge, 0)}
	for _, obj := range r.visuals {
		typeName := complexity.VisualizationType(obj)
		level := r.visualizationLevel(obj)
		if level.Rank() < complexity.Medium.Rank() {
			continue
		}
		ch := Challenge{
			Visualization:         obj.DisplayName(obj.ID),
			VisualizationType:     typeName,
			Complexity:            level,
			DashboardOrReportName: r.rootLabel(r.local.Resolve(obj.ID)),
		}
		if f, ok := r.catalog.Visualization(typeName); ok {
			ch.Description = optional(f.Description)
			ch.Recommended = optional(f.Recommended)
		}
		out.Visualization = append(out.Visualization, ch)
	}
	slices.SortStableFunc(out.Visualization, func(a, b Challenge) int {
		return cmp.Compare(b.Complexity.Rank(), a.Complexity.Rank())
	})
	return out
}

func (r *run) appendixEntry(root string) AppendixEntry {
	obj, _ := r.g.Object(root)
	e := AppendixEntry{
		Name:       obj.DisplayName(root),
		Package:    make([]string, 0),
		DataModule: make([]string, 0),
	}
	if v, ok := obj.Properties.FirstTruthy("owner", "Owner"); ok {
		e.Owner = model.Stringify(v)
	}
	for _, id := range r.reach.Reached(root) {
		switch r.g.Kind(id) {
		case model.TypePackage:
			e.Package = append(e.Package, r.name(id, id))
		case model.TypeDataModule:
			e.DataModule = append(e.DataModule, r.name(id, id))
		}
	}
	slices.Sort(e.Package)
	e.Package = slices.Compact(e.Package)
	slices.Sort(e.DataModule)
	e.DataModule = slices.Compact(e.DataModule)
	return e
}

func (r *run) appendix() Appendix {
	out := Appendix{
		Dashboards: make([]AppendixEntry, 0, len(r.reach.Dashboards())),
		Reports:    make([]AppendixEntry, 0, len(r.reach.Reports())),
	}
	for _, id := range r.reach.Dashboards() {
		out.Dashboards = append(out.Dashboards, r.appendixEntry(id))
	}
	for _, id := range r.reach.Reports() {
		out.Reports = append(out.Reports, r.appendixEntry(id))
	}
	return out
}
