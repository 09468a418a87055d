package report

import (
	"strings"

	"github.com/OFFIS-RIT/migrascope/pkg/complexity"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

var mainModuleClasses = []string{"module", "datamodule", "model"}

var dataModuleProps = []string{
	"storeID", "cognosClass", "is_main_module", "table_count", "column_count",
	"calculated_field_count", "filter_count", "creationTime", "modificationTime",
	"owner", "displaySequence", "hidden", "tenantID",
}

func moduleType(obj model.Object) string {
	if v, ok := obj.Properties.FirstTruthy("cognosClass", "moduleType"); ok {
		if s := model.Stringify(v); s != "" {
			return s
		}
	}
	return model.TypeDataModule
}

func isMainModule(obj model.Object) bool {
	if obj.Properties.Bool("is_main_module") {
		return true
	}
	v, ok := obj.Properties.FirstTruthy("cognosClass", "moduleType")
	if !ok {
		return false
	}
	class := strings.ToLower(strings.TrimSpace(model.Stringify(v)))
	for _, c := range mainModuleClasses {
		if class == c {
			return true
		}
	}
	return false
}

// packages merges duplicate packages before counting what they contain.
func (r *run) packages() PackagesBreakdown {
	contained := make(map[string]*orderedSet)
	for _, obj := range r.g.Objects() {
		pkg, ok := r.g.ContainmentAncestorOfKind(obj.ID, model.TypePackage)
		if !ok {
			continue
		}
		set, ok := contained[pkg]
		if !ok {
			set = &orderedSet{}
			contained[pkg] = set
		}
		set.add(obj.ID)
	}

	entities := dedupe(r.byKind[model.TypePackage])
	out := PackagesBreakdown{Total: len(entities), Packages: make([]PackageItem, 0, len(entities))}
	for _, e := range entities {
		members := &orderedSet{}
		for _, id := range e.ids {
			members.add(id)
			if set, ok := contained[id]; ok {
				for _, m := range set.items {
					members.add(m)
				}
			}
		}

		item := PackageItem{
			ID:                e.first.ID,
			Name:              e.first.DisplayName("<unnamed package>"),
			DataModulesByType: make(map[string]int),
		}
		for _, id := range members.items {
			obj, ok := r.g.Object(id)
			if !ok {
				continue
			}
			switch obj.Kind() {
			case model.TypeDataModule:
				item.TotalDataModules++
				item.DataModulesByType[moduleType(obj)]++
				if isMainModule(obj) {
					item.MainDataModules++
				}
			case model.TypeTable:
				item.TotalTables++
			case model.TypeColumn:
				item.TotalColumns++
			}
		}
		item.Complexity = complexity.Package(item.TotalDataModules)
		item.DashboardsUsingCount, item.ReportsUsingCount = r.reach.UsedBy(members.items)
		out.Stats.Add(item.Complexity, 1)
		out.Packages = append(out.Packages, item)
	}
	return out
}

func (r *run) connections() ConnectionsBreakdown {
	var objs []model.Object
	out := ConnectionsBreakdown{
		TotalDataModules: len(r.byKind[model.TypeDataModule]),
		TotalPackages:    len(r.byKind[model.TypePackage]),
	}
	for _, obj := range r.g.Objects() {
		switch {
		case model.IsDataSource(obj.Type):
			out.TotalDataSources++
		case model.IsDataSourceConnection(obj.Type):
			out.TotalDataSourceConnections++
		default:
			continue
		}
		objs = append(objs, obj)
	}

	entities := dedupe(objs)
	out.TotalUniqueConnections = len(entities)
	out.Connections = make([]ConnectionItem, 0, len(entities))
	for _, e := range entities {
		obj := e.first
		props := obj.Properties
		item := ConnectionItem{
			ID:                      obj.ID,
			Name:                    obj.DisplayName("<unnamed " + obj.Type + ">"),
			ObjectType:              obj.Type,
			Complexity:              complexity.Connection(props),
			CognosClass:             props.String("cognosClass"),
			ConnectionStringPreview: truncate(props.String("connection_string"), 80),
		}
		if v, ok := props.FirstTruthy("storeID", "identifier"); ok {
			item.Identifier = model.Stringify(v)
		}
		if v, ok := props.FirstTruthy("data_source_type", "connection_type"); ok {
			item.ConnectionType = model.Stringify(v)
		}
		item.DashboardsUsingCount, item.ReportsUsingCount = r.reach.UsedBy(e.ids)
		out.Stats.Add(item.Complexity, 1)
		out.Connections = append(out.Connections, item)
	}
	return out
}

func (r *run) dataModules() DataModulesBreakdown {
	objs := r.byKind[model.TypeDataModule]
	entities := dedupe(objs)
	out := DataModulesBreakdown{
		Total:           len(objs),
		TotalUnique:     len(entities),
		DataModules:     make([]DataModuleItem, 0, len(entities)),
		MainDataModules: make([]DataModuleItem, 0),
	}
	for _, obj := range objs {
		if isMainModule(obj) {
			out.TotalMain++
		}
	}
	for _, e := range entities {
		obj := e.first
		item := DataModuleItem{
			ID:         obj.ID,
			Name:       obj.DisplayName("<unnamed data module>"),
			ModuleType: moduleType(obj),
			IsMain:     isMainModule(obj),
			Complexity: complexity.DataModule(obj.Properties),
			Properties: pick(obj.Properties, dataModuleProps, 0),
		}
		item.DashboardsUsingCount, item.ReportsUsingCount = r.reach.UsedBy(e.ids)
		out.Stats.Add(item.Complexity, 1)
		out.DataModules = append(out.DataModules, item)
		if item.IsMain {
			out.MainDataModules = append(out.MainDataModules, item)
		}
	}
	return out
}
