package report

import (
	"cmp"
	"slices"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/graph"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

type visualGroup struct {
	name       string
	count      int
	level      complexity.Level
	dashboards map[string]struct{}
	reports    map[string]struct{}
	queries    map[string]struct{}
}

// visualizationDetails groups visualizations by chart type. Types keep
// first-seen order and are then ordered by count, largest first.
func (r *run) visualizationDetails() VisualizationDetails {
	t := newTracker()
	var groups []*visualGroup
	byName := make(map[string]*visualGroup)

	for _, obj := range r.visuals {
		typeName := complexity.VisualizationType(obj)
		grp, ok := byName[typeName]
		if !ok {
			grp = &visualGroup{
				name:       typeName,
				level:      complexity.Visualization(r.catalog, typeName),
				dashboards: make(map[string]struct{}),
				reports:    make(map[string]struct{}),
				queries:    make(map[string]struct{}),
			}
			byName[typeName] = grp
			groups = append(groups, grp)
		}
		grp.count++

		root := r.local.Resolve(obj.ID)
		t.add(grp.level, root)
		switch {
		case root.IsDashboard():
			grp.dashboards[root.ID] = struct{}{}
		case root.IsReport():
			grp.reports[root.ID] = struct{}{}
		}
		for _, child := range r.g.UsageChildren(obj.ID) {
			if r.g.Kind(child) == model.TypeQuery {
				grp.queries[child] = struct{}{}
			}
		}
	}

	breakdown := make([]VisualizationType, 0, len(groups))
	for _, grp := range groups {
		item := VisualizationType{
			Visualization:             grp.name,
			Count:                     grp.count,
			Complexity:                grp.level,
			DashboardsContainingCount: len(grp.dashboards),
			ReportsContainingCount:    len(grp.reports),
			QueriesUsingCount:         len(grp.queries),
		}
		if f, ok := r.catalog.Visualization(grp.name); ok {
			item.Feasibility = optional(f.Feasibility)
			item.Description = optional(f.Description)
			item.Recommended = optional(f.Recommended)
		}
		breakdown = append(breakdown, item)
	}
	slices.SortStableFunc(breakdown, func(a, b VisualizationType) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return VisualizationDetails{
		Total:        len(r.visuals),
		Stats:        t.stats,
		ByComplexity: t.byComplexity(),
		Breakdown:    breakdown,
	}
}

// members groups objects under the dashboards or reports that contain
// them. Every root is its own first member; roots keep input order.
func (r *run) members(kind graph.Kind, roots []string) map[string]*orderedSet {
	out := make(map[string]*orderedSet, len(roots))
	for _, id := range roots {
		set := &orderedSet{}
		set.add(id)
		out[id] = set
	}
	for _, obj := range r.g.Objects() {
		root := r.contain.Resolve(obj.ID)
		if root.Kind != kind {
			continue
		}
		if set, ok := out[root.ID]; ok {
			set.add(obj.ID)
		}
	}
	return out
}

// reportMembers extends containment membership by one hop: an object no
// report contains joins the report containing any of its relationship
// sources.
func (r *run) reportMembers() map[string]*orderedSet {
	out := r.members(graph.KindReport, r.reach.Reports())
	claimed := make(map[string]struct{})
	for _, set := range out {
		for _, id := range set.items {
			claimed[id] = struct{}{}
		}
	}
	for _, obj := range r.g.Objects() {
		if _, ok := claimed[obj.ID]; ok {
			continue
		}
		for _, src := range r.g.RelatedSources(obj.ID) {
			root := r.g.ContainmentRoot(src)
			if !root.IsReport() {
				continue
			}
			if set, ok := out[root.ID]; ok {
				set.add(obj.ID)
				claimed[obj.ID] = struct{}{}
				break
			}
		}
	}
	return out
}

// contents counts the kinds of a container's members. Data modules,
// packages and data sources are counted over external, which is the
// members themselves for dashboards and their usage closure for reports.
type contents struct {
	visualLevels []complexity.Level
	visuals      LevelCounts
	byKind       map[string]int
	calculated   LevelCounts
	moduleTables int
	moduleCols   int

	dataModules int
	packages    int
	dataSources int
}

func (r *run) contents(members, external []string) contents {
	c := contents{byKind: make(map[string]int)}
	for _, id := range members {
		obj, ok := r.g.Object(id)
		if !ok {
			continue
		}
		c.byKind[obj.Kind()]++
		if complexity.IsVisualization(obj) {
			l := r.visualizationLevel(obj)
			c.visualLevels = append(c.visualLevels, l)
			c.visuals.Add(l, 1)
		}
		if obj.Kind() == model.TypeCalculatedField {
			c.calculated.Add(complexity.CalculatedField(obj.Properties), 1)
		}
	}
	for _, id := range external {
		obj, ok := r.g.Object(id)
		if !ok {
			continue
		}
		switch {
		case obj.Kind() == model.TypeDataModule:
			c.dataModules++
			c.moduleTables += obj.Properties.Int("table_count")
			c.moduleCols += obj.Properties.Int("column_count")
		case obj.Kind() == model.TypePackage:
			c.packages++
		case obj.IsConnection():
			c.dataSources++
		}
	}
	return c
}

func (r *run) dashboards() DashboardsBreakdown {
	roots := r.reach.Dashboards()
	members := r.members(graph.KindDashboard, roots)
	out := DashboardsBreakdown{Total: len(roots), Dashboards: make([]DashboardItem, 0, len(roots))}
	for _, id := range roots {
		c := r.contents(members[id].items, members[id].items)
		level := complexity.Container(false, c.visualLevels...)
		out.Stats.Add(level, 1)
		out.Dashboards = append(out.Dashboards, DashboardItem{
			ID:                         id,
			Name:                       r.name(id, id),
			Complexity:                 level,
			TotalVisualizations:        len(c.visualLevels),
			VisualizationsByComplexity: c.visuals,
			TotalTabs:                  c.byKind[model.TypeTab],
			TotalMeasures:              c.byKind[model.TypeMeasure],
			TotalDimensions:            c.byKind[model.TypeDimension],
			TotalCalculatedFields:      c.byKind[model.TypeCalculatedField],
			TotalDataModules:           c.dataModules,
			TotalPackages:              c.packages,
			TotalDataSources:           c.dataSources,
		})
	}
	return out
}

func (r *run) reports() ReportsBreakdown {
	roots := r.reach.Reports()
	members := r.reportMembers()
	out := ReportsBreakdown{Total: len(roots), Reports: make([]ReportItem, 0, len(roots))}
	for _, id := range roots {
		obj, _ := r.g.Object(id)
		reportType := "report"
		if v, ok := obj.Properties.FirstTruthy("reportType", "report_type", "cognosClass"); ok {
			reportType = model.Stringify(v)
		}

		items := members[id].items
		c := r.contents(items, r.g.UsageClosure(items))
		level := complexity.Container(complexity.IsInteractiveReport(reportType), c.visualLevels...)
		out.Stats.Add(level, 1)
		out.Reports = append(out.Reports, ReportItem{
			ID:                           id,
			Name:                         obj.DisplayName(id),
			ReportType:                   reportType,
			Complexity:                   level,
			TotalVisualizations:          len(c.visualLevels),
			VisualizationsByComplexity:   c.visuals,
			CalculatedFieldsByComplexity: c.calculated,
			TotalPages:                   c.byKind[model.TypePage],
			TotalDataModules:             c.dataModules,
			TotalPackages:                c.packages,
			TotalDataSources:             c.dataSources,
			TotalTables:                  c.byKind[model.TypeTable] + c.moduleTables,
			TotalColumns:                 c.byKind[model.TypeColumn] + c.moduleCols,
			TotalFilters:                 c.byKind[model.TypeFilter],
			TotalParameters:              c.byKind[model.TypeParameter],
			TotalSorts:                   c.byKind[model.TypeSort],
			TotalPrompts:                 c.byKind[model.TypePrompt],
			TotalCalculatedFields:        c.byKind[model.TypeCalculatedField],
			TotalMeasures:                c.byKind[model.TypeMeasure],
			TotalDimensions:              c.byKind[model.TypeDimension],
		})
	}
	return out
}
