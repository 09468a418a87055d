package hierarchy

import (
	"cmp"
	"slices"
	"strings"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OFFIS-RIT/migrascope/pkg/graph"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

const (
	VirtualRootID   = "__virtual_root__"
	VirtualRootType = "virtual_root"
	pathSeparator   = " > "
)

// priority lists the relationship kinds that form the tree, strongest first.
var priority = []string{model.RelParentChild, model.RelContains, model.RelHasColumn}

type Node struct {
	ID              string  `json:"object_id"`
	Type            string  `json:"object_type"`
	Name            string  `json:"name"`
	Path            string  `json:"path"`
	Depth           int     `json:"depth"`
	ParentID        string  `json:"parent_id,omitempty"`
	ChildCount      int     `json:"child_count"`
	DescendantCount int     `json:"descendant_count"`
	Children        []*Node `json:"children"`

	parent *Node
}

// Cycle is a hierarchy edge dropped because it closed a loop.
type Cycle struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Path []string `json:"path"`
}

// Tree is a cycle-free view of the hierarchy relationships. Every node
// hangs below the virtual root.
type Tree struct {
	Root   *Node   `json:"root"`
	Cycles []Cycle `json:"cycles"`

	nodes map[string]*Node
	order []string
	topo  []string
}

// Node looks up a node by object id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns the object nodes in input order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// TopologicalOrder lists object ids so that every parent precedes its
// children. Ties follow input order.
func (t *Tree) TopologicalOrder() []string {
	return t.topo
}

type builder struct {
	tree     *Tree
	index    map[string]int64
	children map[string][]string
	incoming map[string]bool
	roots    map[string]bool
}

// Build arranges objects into a tree. Relationships with unknown endpoints
// or other kinds are ignored; edges that close a cycle are logged and left
// out, so the result never reaches a node from itself.
func Build(objects []model.Object, relationships []model.Relationship) *Tree {
	b := &builder{
		tree: &Tree{
			Cycles: make([]Cycle, 0),
			nodes:  make(map[string]*Node, len(objects)),
		},
		index:    make(map[string]int64, len(objects)),
		children: make(map[string][]string),
		incoming: make(map[string]bool),
		roots:    make(map[string]bool),
	}
	for _, obj := range objects {
		if _, dup := b.tree.nodes[obj.ID]; dup {
			continue
		}
		b.index[obj.ID] = int64(len(b.tree.order))
		b.tree.order = append(b.tree.order, obj.ID)
		b.tree.nodes[obj.ID] = &Node{
			ID:       obj.ID,
			Type:     obj.Type,
			Name:     obj.DisplayName(obj.ID),
			Children: make([]*Node, 0),
		}
	}

	b.collectEdges(objects, relationships)
	b.breakCycles()
	b.checkAcyclic()
	b.findRoots(objects)
	b.attach()
	b.measure()
	return b.tree
}

// collectEdges gathers the tree edges per parent in priority order. A
// parent_id property stands in for a missing hierarchy relationship.
func (b *builder) collectEdges(objects []model.Object, relationships []model.Relationship) {
	seen := make(map[[2]string]bool)
	add := func(from, to string) {
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		b.children[from] = append(b.children[from], to)
	}

	for _, kind := range priority {
		for _, rel := range relationships {
			if rel.Kind() != kind {
				continue
			}
			if _, ok := b.tree.nodes[rel.SourceID]; !ok {
				continue
			}
			if _, ok := b.tree.nodes[rel.TargetID]; !ok {
				continue
			}
			add(rel.SourceID, rel.TargetID)
		}
	}

	targets := make(map[string]bool)
	for _, list := range b.children {
		for _, to := range list {
			targets[to] = true
		}
	}
	for _, obj := range objects {
		if targets[obj.ID] {
			continue
		}
		pid := obj.Properties.String("parent_id")
		if _, ok := b.tree.nodes[pid]; ok && pid != obj.ID {
			add(pid, obj.ID)
		}
	}
}

func (b *builder) breakCycles() {
	back := graph.FindBackEdges(b.tree.order, func(id string) []string { return b.children[id] })
	if len(back) == 0 {
		return
	}
	drop := make(map[[2]string]bool, len(back))
	for _, e := range back {
		drop[[2]string{e.From, e.To}] = true
		b.tree.Cycles = append(b.tree.Cycles, Cycle{From: e.From, To: e.To, Path: append(e.Cycle, e.To)})
		logger.Warn("[Hierarchy] Cycle detected, edge removed",
			"from", e.From, "to", e.To, "cycle", strings.Join(append(e.Cycle, e.To), " -> "))
	}
	for from, list := range b.children {
		b.children[from] = slices.DeleteFunc(list, func(to string) bool {
			return drop[[2]string{from, to}]
		})
	}
	logger.Info("[Hierarchy] Broke hierarchy cycles", "edges", len(back))
}

// checkAcyclic verifies the pruned edge set and records a topological order.
func (b *builder) checkAcyclic() {
	g := simple.NewDirectedGraph()
	for _, id := range b.tree.order {
		g.AddNode(simple.Node(b.index[id]))
	}
	for _, from := range b.tree.order {
		for _, to := range b.children[from] {
			if from == to {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(b.index[from]), simple.Node(b.index[to])))
		}
	}
	sorted, err := topo.SortStabilized(g, func(nodes []gonum.Node) {
		slices.SortFunc(nodes, func(x, y gonum.Node) int { return cmp.Compare(x.ID(), y.ID()) })
	})
	if err != nil {
		logger.Error("[Hierarchy] Hierarchy edges still cyclic after pruning", "err", err)
		return
	}
	b.tree.topo = make([]string, 0, len(sorted))
	for _, n := range sorted {
		b.tree.topo = append(b.tree.topo, b.tree.order[n.ID()])
	}
}

// findRoots marks folders and every node without an incoming tree edge.
func (b *builder) findRoots(objects []model.Object) {
	for _, list := range b.children {
		for _, to := range list {
			b.incoming[to] = true
		}
	}
	for _, obj := range objects {
		if model.Normalize(obj.Type) == model.TypeFolder || !b.incoming[obj.ID] {
			b.roots[obj.ID] = true
		}
	}
}

type frame struct {
	node *Node
	next int
}

// grow attaches unclaimed non-root descendants of top depth first.
func (b *builder) grow(top *Node) {
	stack := []frame{{node: top}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		kids := b.children[f.node.ID]
		if f.next >= len(kids) {
			stack = stack[:len(stack)-1]
			continue
		}
		child := b.tree.nodes[kids[f.next]]
		f.next++
		if child.parent != nil || b.roots[child.ID] || child == top {
			continue
		}
		child.parent = f.node
		child.ParentID = f.node.ID
		child.Depth = f.node.Depth + 1
		child.Path = f.node.Path + pathSeparator + child.Name
		f.node.Children = append(f.node.Children, child)
		stack = append(stack, frame{node: child})
	}
}

func (b *builder) attach() {
	for _, id := range b.tree.order {
		if b.roots[id] {
			n := b.tree.nodes[id]
			n.Path = n.Name
			b.grow(n)
		}
	}

	root := &Node{
		ID:       VirtualRootID,
		Type:     VirtualRootType,
		Name:     "Root",
		Path:     "Root",
		Depth:    -1,
		Children: make([]*Node, 0),
	}
	var orphans int
	for _, id := range b.tree.order {
		n := b.tree.nodes[id]
		if n.parent != nil {
			continue
		}
		if !b.roots[id] {
			orphans++
			n.Path = n.Name
			b.grow(n)
		}
		n.parent = root
		n.ParentID = root.ID
		root.Children = append(root.Children, n)
	}
	if orphans > 0 {
		logger.Info("[Hierarchy] Attached orphaned nodes to virtual root", "orphans", orphans)
	}
	b.tree.Root = root
}

// measure fills child and descendant counts in one post-order pass.
func (b *builder) measure() {
	type visit struct {
		node *Node
		done bool
	}
	stack := []visit{{node: b.tree.Root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.done {
			v.node.ChildCount = len(v.node.Children)
			v.node.DescendantCount = 0
			for _, c := range v.node.Children {
				v.node.DescendantCount += 1 + c.DescendantCount
			}
			continue
		}
		stack = append(stack, visit{node: v.node, done: true})
		for _, c := range v.node.Children {
			stack = append(stack, visit{node: c})
		}
	}
}
