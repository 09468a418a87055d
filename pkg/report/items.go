package report

import (
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

// category describes how the objects of one kind are listed.
type category struct {
	kind     string
	unnamed  string
	props    []string
	preview  int
	classify func(model.Properties) complexity.Level
}

var (
	calculatedFields = category{
		kind:     model.TypeCalculatedField,
		unnamed:  "<unnamed>",
		props:    []string{"expression", "calculation_type", "cognosClass"},
		preview:  500,
		classify: complexity.CalculatedField,
	}
	filters = category{
		kind:    model.TypeFilter,
		unnamed: "<unnamed>",
		props: []string{
			"expression", "filter_type", "filter_scope", "filter_style",
			"is_simple", "is_complex", "ref_data_item", "filter_definition_summary",
			"postAutoAggregation", "referenced_columns", "parameter_references", "cognosClass",
		},
		preview:  500,
		classify: complexity.Filter,
	}
	parameters = category{
		kind:     model.TypeParameter,
		unnamed:  "<unnamed>",
		props:    []string{"parameter_type", "variable_type", "cognosClass"},
		preview:  300,
		classify: complexity.Parameter,
	}
	sorts = category{
		kind:     model.TypeSort,
		unnamed:  "<unnamed>",
		props:    []string{"direction", "sorted_column", "sort_items", "cognosClass"},
		preview:  300,
		classify: complexity.Sort,
	}
	prompts = category{
		kind:     model.TypePrompt,
		unnamed:  "<unnamed>",
		props:    []string{"prompt_type", "value", "cognosClass"},
		preview:  500,
		classify: complexity.Prompt,
	}
	queries = category{
		kind:     model.TypeQuery,
		unnamed:  "<unnamed query>",
		props:    []string{"cognosClass", "source_type", "sql_content"},
		preview:  500,
		classify: complexity.Query,
	}
	measures = category{
		kind:     model.TypeMeasure,
		unnamed:  "<unnamed measure>",
		props:    []string{"cognosClass", "regularAggregate", "datatype", "usage", "expression"},
		preview:  300,
		classify: complexity.Measure,
	}
	dimensions = category{
		kind:     model.TypeDimension,
		unnamed:  "<unnamed dimension>",
		props:    []string{"cognosClass", "usage", "datatype", "expression"},
		preview:  300,
		classify: complexity.Dimension,
	}
)

// collect lists every object of c.kind in input order. build decorates the
// common item with category specific fields.
func collect[T any](r *run, c category, build func(model.Object, Item) T) Breakdown[T] {
	objs := r.byKind[c.kind]
	t := newTracker()
	items := make([]T, 0, len(objs))
	for _, obj := range objs {
		level := c.classify(obj.Properties)
		root := r.full.Resolve(obj.ID)
		t.add(level, root)

		item := Item{
			ID:         obj.ID,
			Name:       obj.DisplayName(c.unnamed),
			Complexity: level,
			Properties: pick(obj.Properties, c.props, c.preview),
		}
		item.DashboardsContainingCount, item.ReportsContainingCount = containing(root)
		items = append(items, build(obj, item))
	}
	return Breakdown[T]{
		Total:        len(objs),
		Stats:        t.stats,
		Items:        items,
		ByComplexity: t.byComplexity(),
	}
}

func plain(_ model.Object, item Item) Item {
	return item
}

func (r *run) filterItem(obj model.Object, item Item) FilterItem {
	out := FilterItem{Item: item}
	pid := obj.Properties.String("parent_id")
	if pid == "" {
		return out
	}
	out.ParentID = ptr(pid)
	if parent, ok := r.g.Object(pid); ok {
		out.ParentName = ptr(parent.DisplayName(pid))
		out.AssociatedContainerType = ptr(parent.Kind())
	}
	return out
}

func (r *run) queryItem(obj model.Object, item Item) QueryItem {
	source := complexity.QuerySourceType(obj.Properties)
	out := QueryItem{
		Item:       item,
		SourceType: source,
		IsSimple:   complexity.QueryIsSimple(source),
		IsComplex:  complexity.QueryIsComplex(source),
	}
	if root := r.contain.Resolve(obj.ID); root.IsReport() {
		out.ReportID = ptr(root.ID)
		out.ReportName = ptr(r.name(root.ID, root.ID))
	}
	return out
}

func (r *run) measureItem(obj model.Object, item Item) FieldItem {
	return r.fieldItem(obj, item, []string{"regularAggregate", "aggregation"}, "none")
}

func (r *run) dimensionItem(obj model.Object, item Item) FieldItem {
	return r.fieldItem(obj, item, []string{"usage", "data_usage"}, "attribute", "dimension")
}

// fieldItem reads the aggregation or usage qualifier. A missing qualifier
// or one of simple counts as simple.
func (r *run) fieldItem(obj model.Object, item Item, keys []string, simple ...string) FieldItem {
	out := FieldItem{Item: item, IsSimple: true}
	if v, ok := obj.Properties.FirstTruthy(keys...); ok {
		q := model.Stringify(v)
		out.Qualifier = ptr(q)
		norm := strings.ToLower(strings.TrimSpace(q))
		out.IsSimple = norm == ""
		for _, s := range simple {
			if norm == s {
				out.IsSimple = true
			}
		}
	}
	out.IsComplex = !out.IsSimple
	if mod, ok := r.g.AncestorOfKind(obj.ID, model.TypeDataModule); ok {
		out.ParentModuleID = ptr(mod)
		out.ParentModuleName = ptr(r.name(mod, mod))
	}
	return out
}
