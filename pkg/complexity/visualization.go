package complexity

import (
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

// VisualizationArea is the reference-table feature area for chart types.
const VisualizationArea = "Visualization"

// visualizationTypes is the allowlist of type names counted as visualizations.
var visualizationTypes = func() map[string]struct{} {
	names := []string{
		"Pie", "Bar", "Line", "Area", "Donut", "Scatter", "Bubble", "Radar",
		"Clustered Bar", "Stacked Bar", "Clustered Column", "Stacked Column",
		"Pie Chart", "Bar Chart", "Line Chart", "Area Chart", "Chart",
		"Data Table", "List", "CrossTab", "Map", "KPI", "Gauge", "Heatmap",
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = struct{}{}
	}
	return m
}()

// VisualizationType prefers the visualization_type or type property and
// falls back to the object category.
func VisualizationType(obj model.Object) string {
	if v, ok := obj.Properties.FirstTruthy("visualization_type", "type"); ok {
		if s := model.Stringify(v); s != "" {
			return s
		}
	}
	if obj.Type == "" {
		return "unknown"
	}
	return obj.Type
}

// IsVisualization matches the resolved type name against the allowlist.
func IsVisualization(obj model.Object) bool {
	_, ok := visualizationTypes[strings.ToLower(strings.TrimSpace(VisualizationType(obj)))]
	return ok
}

// VisualizationLookup resolves a chart type to its reference rating.
type VisualizationLookup interface {
	VisualizationLevel(typeName string) (Level, bool)
}

// Visualization rates a chart type from the reference table. Types missing
// from the table, or a nil lookup, are Unknown.
func Visualization(lookup VisualizationLookup, typeName string) Level {
	if lookup == nil {
		return Unknown
	}
	l, ok := lookup.VisualizationLevel(typeName)
	if !ok {
		return Unknown
	}
	return l
}
