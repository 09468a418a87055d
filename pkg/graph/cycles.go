package graph

// BackEdge is an edge closing a cycle during depth-first search. Cycle
// holds the path To ... From, so appending To closes the loop.
type BackEdge struct {
	From  string
	To    string
	Cycle []string
}

type frame struct {
	node string
	next int
}

// FindBackEdges runs an iterative depth-first search from each node in
// order, following adj, and returns every edge that points back into the
// current recursion stack. Removing all of them leaves an acyclic graph.
func FindBackEdges(nodes []string, adj func(string) []string) []BackEdge {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(nodes))
	var out []BackEdge

	for _, start := range nodes {
		if color[start] != white {
			continue
		}
		color[start] = grey
		stack := []frame{{node: start}}
		path := []string{start}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj(top.node)
			if top.next >= len(children) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			child := children[top.next]
			top.next++

			switch color[child] {
			case white:
				color[child] = grey
				stack = append(stack, frame{node: child})
				path = append(path, child)
			case grey:
				out = append(out, BackEdge{
					From:  top.node,
					To:    child,
					Cycle: cyclePath(path, child),
				})
			}
		}
	}
	return out
}

func cyclePath(path []string, to string) []string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == to {
			out := make([]string, len(path)-i)
			copy(out, path[i:])
			return out
		}
	}
	return nil
}
