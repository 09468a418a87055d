package graph

// Reach records, for every dashboard and report, which objects a breadth
// first search over containment children, usage children, usage parents and
// has_column parents touches. Usage edges cut across containment, so this is
// how "used by" counts are derived for packages, data modules and connections.
type Reach struct {
	dashboards []string
	reports    []string
	reached    map[string][]string
	dashByNode map[string][]string
	repByNode  map[string][]string
}

// NewReach walks usage edges in both directions from every dashboard and report.
func NewReach(g *Graph) *Reach {
	r := &Reach{
		reached:    make(map[string][]string),
		dashByNode: make(map[string][]string),
		repByNode:  make(map[string][]string),
	}
	for _, obj := range g.Objects() {
		if _, dup := r.reached[obj.ID]; dup {
			continue
		}
		var byNode map[string][]string
		switch Kind(obj.Kind()) {
		case KindDashboard:
			r.dashboards = append(r.dashboards, obj.ID)
			byNode = r.dashByNode
		case KindReport:
			r.reports = append(r.reports, obj.ID)
			byNode = r.repByNode
		default:
			continue
		}
		nodes := g.walk([]string{obj.ID}, g.mixedNeighbors)
		r.reached[obj.ID] = nodes
		for _, n := range nodes {
			byNode[n] = append(byNode[n], obj.ID)
		}
	}
	return r
}

// Dashboards returns dashboard ids in input order.
func (r *Reach) Dashboards() []string { return r.dashboards }

// Reports returns report ids in input order.
func (r *Reach) Reports() []string { return r.reports }

// Reached lists the nodes visited from root, root first.
func (r *Reach) Reached(root string) []string {
	return r.reached[root]
}

// UsedBy counts the distinct dashboards and reports that reach any of ids.
func (r *Reach) UsedBy(ids []string) (dashboards, reports int) {
	return countDistinct(r.dashByNode, ids), countDistinct(r.repByNode, ids)
}

func countDistinct(byNode map[string][]string, ids []string) int {
	set := make(map[string]struct{})
	for _, id := range ids {
		for _, root := range byNode[id] {
			set[root] = struct{}{}
		}
	}
	return len(set)
}
