package graph

import "github.com/OFFIS-RIT/migrascope/pkg/model"

// Kind is the category of a resolved root.
type Kind string

const (
	KindNone      Kind = ""
	KindDashboard Kind = model.TypeDashboard
	KindReport    Kind = model.TypeReport
)

// Root is the dashboard or report owning an object. Synthetic roots come
// from the same-file heuristic and carry "file:<id>" as their ID.
type Root struct {
	ID        string
	Kind      Kind
	Synthetic bool
}

// Found is false when no strategy claimed the object.
func (r Root) Found() bool {
	return r.Kind != KindNone
}

func (r Root) IsDashboard() bool {
	return r.Kind == KindDashboard
}

func (r Root) IsReport() bool {
	return r.Kind == KindReport
}

// Strategy is one way of finding the root of an object. ok=false hands the
// object to the next strategy in the chain.
type Strategy interface {
	Name() string
	Resolve(g *Graph, id string) (Root, bool)
}

// SelfStrategy treats dashboards and reports as their own root.
type SelfStrategy struct{}

func (SelfStrategy) Name() string { return "self" }

func (SelfStrategy) Resolve(g *Graph, id string) (Root, bool) {
	switch g.Kind(id) {
	case model.TypeDashboard:
		return Root{ID: id, Kind: KindDashboard}, true
	case model.TypeReport:
		return Root{ID: id, Kind: KindReport}, true
	}
	return Root{}, false
}

// ContainmentStrategy walks containment parents upward.
type ContainmentStrategy struct{}

func (ContainmentStrategy) Name() string { return "containment" }

func (ContainmentStrategy) Resolve(g *Graph, id string) (Root, bool) {
	r := g.ContainmentRoot(id)
	return r, r.Found()
}

// ReachStrategy searches breadth first over containment children, usage
// children, usage parents and has_column parents, and takes the containment
// root of the first visited node that has one.
type ReachStrategy struct{}

func (ReachStrategy) Name() string { return "reach" }

func (ReachStrategy) Resolve(g *Graph, id string) (Root, bool) {
	if !g.Has(id) {
		return Root{}, false
	}
	visited := map[string]struct{}{id: {}}
	queue := []string{id}
	for i := 0; i < len(queue); i++ {
		node := queue[i]
		if r := g.ContainmentRoot(node); r.Found() {
			return r, true
		}
		for _, n := range g.mixedNeighbors(node) {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return Root{}, false
}

// FileStrategy attributes the object to a dashboard or report from the same source file.
type FileStrategy struct{}

func (FileStrategy) Name() string { return "file" }

func (FileStrategy) Resolve(g *Graph, id string) (Root, bool) {
	obj, ok := g.Object(id)
	if !ok {
		return Root{}, false
	}
	kind := g.FileContainer(obj.FileID)
	if kind == KindNone {
		return Root{}, false
	}
	return Root{ID: "file:" + obj.FileID, Kind: kind, Synthetic: true}, true
}

// FullChain is the complete fallback order.
func FullChain() []Strategy {
	return []Strategy{SelfStrategy{}, ContainmentStrategy{}, ReachStrategy{}, FileStrategy{}}
}

// ContainmentChain only follows structural containment.
func ContainmentChain() []Strategy {
	return []Strategy{SelfStrategy{}, ContainmentStrategy{}}
}

// ContainmentOrFileChain skips the mixed-edge search.
func ContainmentOrFileChain() []Strategy {
	return []Strategy{SelfStrategy{}, ContainmentStrategy{}, FileStrategy{}}
}

// Resolver evaluates a strategy chain and caches the outcome per object id.
type Resolver struct {
	graph      *Graph
	strategies []Strategy
	cache      map[string]Root
}

// NewResolver uses FullChain when no strategies are given.
func NewResolver(g *Graph, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = FullChain()
	}
	return &Resolver{
		graph:      g,
		strategies: strategies,
		cache:      make(map[string]Root),
	}
}

// Resolve returns the first root any strategy finds, or the zero Root.
func (r *Resolver) Resolve(id string) Root {
	if root, ok := r.cache[id]; ok {
		return root
	}
	root := Root{}
	for _, s := range r.strategies {
		if found, ok := s.Resolve(r.graph, id); ok {
			root = found
			break
		}
	}
	r.cache[id] = root
	return root
}

// ContainmentRoot walks containment parents from id, visiting each node
// once, and returns the first dashboard or report met.
func (g *Graph) ContainmentRoot(id string) Root {
	if root, ok := g.containmentCache[id]; ok {
		return root
	}
	root := Root{}
	visited := make(map[string]struct{})
	current, ok := id, true
	for ok {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}
		if r, found := (SelfStrategy{}).Resolve(g, current); found {
			root = r
			break
		}
		current, ok = g.ContainsParent(current)
	}
	g.containmentCache[id] = root
	return root
}

func (g *Graph) mixedNeighbors(id string) []string {
	var out []string
	out = append(out, g.containsChildren[id]...)
	out = append(out, g.usageChildren[id]...)
	out = append(out, g.usageParents[id]...)
	out = append(out, g.hasColumnParents[id]...)
	return out
}
