package graph

import (
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

// Graph is the adjacency view of one snapshot. It is built once per report
// generation and is read-only afterwards, apart from its lazy root cache.
type Graph struct {
	objects []model.Object
	byID    map[string]int

	containsParent    map[string]string
	containsChildren  map[string][]string
	usageChildren     map[string][]string
	usageParents      map[string][]string
	hasColumnParents  map[string][]string
	hasColumnChildren map[string][]string
	relatedSources    map[string][]string
	parentOf          map[string]string

	fileContainer map[string]Kind

	containmentCache map[string]Root
}

// Build indexes objects and relationships. Relationships with an unknown
// endpoint are dropped silently; multi-valued maps follow input order.
func Build(objects []model.Object, relationships []model.Relationship) *Graph {
	g := &Graph{
		objects:           objects,
		byID:              make(map[string]int, len(objects)),
		containsParent:    make(map[string]string),
		containsChildren:  make(map[string][]string),
		usageChildren:     make(map[string][]string),
		usageParents:      make(map[string][]string),
		hasColumnParents:  make(map[string][]string),
		hasColumnChildren: make(map[string][]string),
		relatedSources:    make(map[string][]string),
		parentOf:          make(map[string]string),
		fileContainer:     make(map[string]Kind),
		containmentCache:  make(map[string]Root),
	}
	for i, obj := range objects {
		g.byID[obj.ID] = i
	}

	seen := make(map[[3]string]struct{}, len(relationships))
	add := func(m map[string][]string, kind, from, to string) {
		key := [3]string{kind, from, to}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		m[from] = append(m[from], to)
	}

	for _, rel := range relationships {
		src, tgt := rel.SourceID, rel.TargetID
		if !g.Has(src) || !g.Has(tgt) {
			continue
		}
		kind := rel.Kind()
		add(g.relatedSources, "*", tgt, src)
		switch {
		case model.IsContainment(kind):
			g.containsParent[tgt] = src
			g.parentOf[tgt] = src
			add(g.containsChildren, "contains", src, tgt)
		case model.IsUsage(kind):
			add(g.usageChildren, "uses", src, tgt)
			add(g.usageParents, "used_by", tgt, src)
		case kind == model.RelHasColumn:
			g.parentOf[tgt] = src
			add(g.hasColumnChildren, "has_column", src, tgt)
			add(g.hasColumnParents, "column_of", tgt, src)
		}
	}

	fileKinds := make(map[string]Kind)
	for _, obj := range objects {
		if pid := obj.Properties.String("parent_id"); pid != "" && g.Has(pid) {
			g.parentOf[obj.ID] = pid
		}
		if obj.FileID == "" {
			continue
		}
		switch obj.Kind() {
		case model.TypeDashboard:
			fileKinds[obj.FileID] = KindDashboard
		case model.TypeReport:
			if fileKinds[obj.FileID] != KindDashboard {
				fileKinds[obj.FileID] = KindReport
			}
		}
	}
	g.fileContainer = fileKinds

	return g
}

// Objects returns the snapshot objects in input order.
func (g *Graph) Objects() []model.Object {
	return g.objects
}

// Has reports whether id is a known object.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Object looks up an object by id. With duplicate ids the last one wins.
func (g *Graph) Object(id string) (model.Object, bool) {
	i, ok := g.byID[id]
	if !ok {
		return model.Object{}, false
	}
	return g.objects[i], true
}

// Kind returns the normalized category of id, or "".
func (g *Graph) Kind(id string) string {
	obj, ok := g.Object(id)
	if !ok {
		return ""
	}
	return obj.Kind()
}

// ContainsParent is the source of the last containment edge into id.
func (g *Graph) ContainsParent(id string) (string, bool) {
	p, ok := g.containsParent[id]
	return p, ok
}

func (g *Graph) ContainsChildren(id string) []string {
	return g.containsChildren[id]
}

// UsageChildren lists what id uses, references or connects to.
func (g *Graph) UsageChildren(id string) []string {
	return g.usageChildren[id]
}

func (g *Graph) UsageParents(id string) []string {
	return g.usageParents[id]
}

// HasColumnParents lists the tables or modules declaring column id.
func (g *Graph) HasColumnParents(id string) []string {
	return g.hasColumnParents[id]
}

// HasColumnChildren lists the columns declared by id, deduplicated.
func (g *Graph) HasColumnChildren(id string) []string {
	return g.hasColumnChildren[id]
}

// RelatedSources lists the sources of every relationship pointing at id.
func (g *Graph) RelatedSources(id string) []string {
	return g.relatedSources[id]
}

// ParentOf follows containment, then has_column, then a parent_id property.
func (g *Graph) ParentOf(id string) (string, bool) {
	p, ok := g.parentOf[id]
	return p, ok
}

// FileContainer reports whether a file holds a dashboard (preferred) or a report.
func (g *Graph) FileContainer(fileID string) Kind {
	if fileID == "" {
		return KindNone
	}
	return g.fileContainer[fileID]
}

// UsageClosure returns the start nodes plus everything they reach through usage edges.
func (g *Graph) UsageClosure(start []string) []string {
	return g.walk(start, g.UsageChildren)
}

// AncestorOfKind walks ParentOf from id until an object of kind is found.
func (g *Graph) AncestorOfKind(id, kind string) (string, bool) {
	visited := make(map[string]struct{})
	current, ok := id, true
	for ok {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}
		if g.Kind(current) == kind {
			return current, true
		}
		current, ok = g.ParentOf(current)
	}
	return "", false
}

// ContainmentAncestorOfKind is AncestorOfKind restricted to containment edges.
func (g *Graph) ContainmentAncestorOfKind(id, kind string) (string, bool) {
	visited := make(map[string]struct{})
	current, ok := id, true
	for ok {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}
		if g.Kind(current) == kind {
			return current, true
		}
		current, ok = g.ContainsParent(current)
	}
	return "", false
}

// Cycles reports containment cycles. Traversals stay bounded regardless.
func (g *Graph) Cycles() []BackEdge {
	ids := make([]string, 0, len(g.objects))
	for _, obj := range g.objects {
		ids = append(ids, obj.ID)
	}
	return FindBackEdges(ids, g.ContainsChildren)
}

func (g *Graph) walk(start []string, next func(string) []string) []string {
	visited := make(map[string]struct{}, len(start))
	queue := make([]string, 0, len(start))
	for _, id := range start {
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, id)
	}
	for i := 0; i < len(queue); i++ {
		for _, n := range next(queue[i]) {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return queue
}
