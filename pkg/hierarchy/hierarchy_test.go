package hierarchy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

func obj(id, typ string, kv ...any) model.Object {
	return model.Object{ID: id, Type: typ, Name: id, Properties: model.NewProperties(kv...)}
}

func rel(src, tgt, typ string) model.Relationship {
	return model.Relationship{SourceID: src, TargetID: tgt, Type: typ}
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildTree(t *testing.T) {
	tree := Build([]model.Object{
		obj("F", "folder"),
		obj("R", "report"),
		obj("P", "page"),
		obj("V", "visualization"),
		obj("T", "table"),
		obj("C", "column"),
		obj("X", "query"),
	}, []model.Relationship{
		rel("F", "R", "contains"),
		rel("R", "P", "parent_child"),
		rel("P", "V", "contains"),
		rel("T", "C", "has_column"),
		rel("X", "V", "uses"),
		rel("X", "ghost", "contains"),
	})

	require.NotNil(t, tree.Root)
	assert.Equal(t, VirtualRootID, tree.Root.ID)
	assert.Equal(t, -1, tree.Root.Depth)
	assert.Equal(t, []string{"F", "T", "X"}, ids(tree.Root.Children))
	assert.Equal(t, 3, tree.Root.ChildCount)
	assert.Equal(t, 7, tree.Root.DescendantCount)
	assert.Empty(t, tree.Cycles)

	v, ok := tree.Node("V")
	require.True(t, ok)
	assert.Equal(t, "F > R > P > V", v.Path)
	assert.Equal(t, 3, v.Depth)
	assert.Equal(t, "P", v.ParentID)

	f, _ := tree.Node("F")
	assert.Equal(t, 0, f.Depth)
	assert.Equal(t, 1, f.ChildCount)
	assert.Equal(t, 3, f.DescendantCount)
	assert.Equal(t, VirtualRootID, f.ParentID)

	c, _ := tree.Node("C")
	assert.Equal(t, "T > C", c.Path)

	assert.Len(t, tree.Nodes(), 7)
	assert.Len(t, tree.TopologicalOrder(), 7)
}

func TestBuildBreaksCycles(t *testing.T) {
	tree := Build([]model.Object{
		obj("A", "page"),
		obj("B", "page"),
		obj("C", "page"),
	}, []model.Relationship{
		rel("A", "B", "contains"),
		rel("B", "C", "contains"),
		rel("C", "A", "contains"),
	})

	require.Len(t, tree.Cycles, 1)
	assert.Equal(t, Cycle{From: "C", To: "A", Path: []string{"A", "B", "C", "A"}}, tree.Cycles[0])
	assert.Equal(t, []string{"A"}, ids(tree.Root.Children))

	c, _ := tree.Node("C")
	assert.Equal(t, "A > B > C", c.Path)
	assert.Equal(t, []string{"A", "B", "C"}, tree.TopologicalOrder())
}

func TestBuildSelfLoop(t *testing.T) {
	tree := Build([]model.Object{obj("A", "page")}, []model.Relationship{rel("A", "A", "contains")})

	require.Len(t, tree.Cycles, 1)
	assert.Equal(t, []string{"A", "A"}, tree.Cycles[0].Path)
	assert.Equal(t, []string{"A"}, ids(tree.Root.Children))
	assert.Equal(t, []string{"A"}, tree.TopologicalOrder())
}

func TestFoldersAreAlwaysRoots(t *testing.T) {
	tree := Build([]model.Object{
		obj("F1", "folder"),
		obj("F2", "Folder"),
		obj("D", "dashboard"),
	}, []model.Relationship{
		rel("F1", "F2", "contains"),
		rel("F2", "D", "contains"),
	})

	assert.Equal(t, []string{"F1", "F2"}, ids(tree.Root.Children))
	f1, _ := tree.Node("F1")
	assert.Zero(t, f1.ChildCount)
	d, _ := tree.Node("D")
	assert.Equal(t, "F2", d.ParentID)
}

func TestChildrenFollowPriority(t *testing.T) {
	tree := Build([]model.Object{
		obj("P", "report"),
		obj("B", "page"),
		obj("A", "page"),
		obj("Q", "query", "parent_id", "P"),
	}, []model.Relationship{
		rel("P", "B", "contains"),
		rel("P", "A", "parent_child"),
	})

	p, _ := tree.Node("P")
	assert.Equal(t, []string{"A", "B", "Q"}, ids(p.Children))
	assert.Equal(t, []string{"P"}, ids(tree.Root.Children))
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil, nil)
	require.NotNil(t, tree.Root)
	assert.Empty(t, tree.Root.Children)
	assert.Zero(t, tree.Root.DescendantCount)
	assert.Empty(t, tree.Cycles)
}

func TestBuildTerminatesOnCycles(t *testing.T) {
	types := []string{"folder", "report", "page", "table", "column"}
	kinds := []string{"contains", "parent_child", "has_column", "uses"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(t, "n")
		var objs []model.Object
		for i := range n {
			o := obj(fmt.Sprintf("o%d", i), rapid.SampledFrom(types).Draw(t, "type"))
			if rapid.Bool().Draw(t, "hasParentID") {
				o.Properties.Set("parent_id", fmt.Sprintf("o%d", rapid.IntRange(0, n).Draw(t, "parent")))
			}
			objs = append(objs, o)
		}
		var rels []model.Relationship
		for range rapid.IntRange(0, 3*n).Draw(t, "m") {
			rels = append(rels, rel(
				fmt.Sprintf("o%d", rapid.IntRange(0, n-1).Draw(t, "src")),
				fmt.Sprintf("o%d", rapid.IntRange(0, n-1).Draw(t, "tgt")),
				rapid.SampledFrom(kinds).Draw(t, "kind"),
			))
		}

		tree := Build(objs, rels)

		seen := make(map[string]bool)
		stack := []*Node{tree.Root}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[node.ID] {
				t.Fatalf("node %s reachable twice", node.ID)
			}
			seen[node.ID] = true
			for _, c := range node.Children {
				if c.Depth != node.Depth+1 {
					t.Fatalf("node %s at depth %d below depth %d", c.ID, c.Depth, node.Depth)
				}
				stack = append(stack, c)
			}
		}
		if len(seen) != n+1 {
			t.Fatalf("reached %d nodes, want %d", len(seen), n+1)
		}
		if tree.Root.DescendantCount != n {
			t.Fatalf("descendant count %d, want %d", tree.Root.DescendantCount, n)
		}
		if len(tree.TopologicalOrder()) != n {
			t.Fatalf("topological order has %d nodes, want %d", len(tree.TopologicalOrder()), n)
		}
	})
}
