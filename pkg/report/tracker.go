package report

import (
	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/graph"
)

// tracker tallies items per level together with the distinct dashboards
// and reports containing at least one item of that level.
type tracker struct {
	stats      LevelCounts
	dashboards map[complexity.Level]map[string]struct{}
	reports    map[complexity.Level]map[string]struct{}
}

func newTracker() *tracker {
	return &tracker{
		dashboards: make(map[complexity.Level]map[string]struct{}),
		reports:    make(map[complexity.Level]map[string]struct{}),
	}
}

func (t *tracker) add(l complexity.Level, root graph.Root) {
	if !l.Rated() {
		return
	}
	t.stats.Add(l, 1)
	switch {
	case root.IsDashboard():
		addRoot(t.dashboards, l, root.ID)
	case root.IsReport():
		addRoot(t.reports, l, root.ID)
	}
}

func addRoot(m map[complexity.Level]map[string]struct{}, l complexity.Level, id string) {
	set, ok := m[l]
	if !ok {
		set = make(map[string]struct{})
		m[l] = set
	}
	set[id] = struct{}{}
}

func (t *tracker) stat(l complexity.Level) LevelStat {
	return LevelStat{
		Complexity:                l.Key(),
		Count:                     t.stats.Get(l),
		DashboardsContainingCount: len(t.dashboards[l]),
		ReportsContainingCount:    len(t.reports[l]),
	}
}

func (t *tracker) byComplexity() ByComplexity {
	return ByComplexity{
		Low:      t.stat(complexity.Low),
		Medium:   t.stat(complexity.Medium),
		High:     t.stat(complexity.High),
		Critical: t.stat(complexity.Critical),
	}
}

// containing returns the 0/1 dashboard and report counts of one item.
func containing(root graph.Root) (dashboards, reports int) {
	switch {
	case root.IsDashboard():
		return 1, 0
	case root.IsReport():
		return 0, 1
	}
	return 0, 0
}
