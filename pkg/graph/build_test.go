package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/migrascope/pkg/model"
)

func TestHasColumnIndexes(t *testing.T) {
	g := Build(
		[]model.Object{obj("t", "table", ""), obj("c1", "column", ""), obj("c2", "column", "")},
		[]model.Relationship{
			rel("t", "c1", "has_column"),
			rel("t", "c2", "HAS_COLUMN"),
			rel("t", "c1", "has_column"),
		},
	)

	assert.Equal(t, []string{"c1", "c2"}, g.HasColumnChildren("t"))
	assert.Equal(t, []string{"t"}, g.HasColumnParents("c1"))
	assert.Empty(t, g.HasColumnChildren("c1"))
	assert.Empty(t, g.ContainsChildren("t"))

	p, ok := g.ParentOf("c2")
	require.True(t, ok)
	assert.Equal(t, "t", p)
}

func TestUsageClosureStaysBoundedOnCycles(t *testing.T) {
	g := Build(
		[]model.Object{obj("a", "query", ""), obj("b", "data_module", ""), obj("c", "package", "")},
		[]model.Relationship{rel("a", "b", "uses"), rel("b", "c", "uses"), rel("c", "a", "uses")},
	)

	assert.Equal(t, []string{"a", "b", "c"}, g.UsageClosure([]string{"a"}))
	assert.Equal(t, []string{"c", "a", "b"}, g.UsageClosure([]string{"c", "c"}))
}

func TestAncestorOfKind(t *testing.T) {
	g := Build(
		[]model.Object{obj("p", "package", ""), obj("dm", "data_module", ""), obj("t", "table", ""), obj("c", "column", "")},
		[]model.Relationship{rel("p", "dm", "contains"), rel("dm", "t", "contains"), rel("t", "c", "has_column")},
	)

	pkg, ok := g.AncestorOfKind("c", model.TypePackage)
	require.True(t, ok)
	assert.Equal(t, "p", pkg)

	_, ok = g.ContainmentAncestorOfKind("c", model.TypePackage)
	assert.False(t, ok)

	pkg, ok = g.ContainmentAncestorOfKind("t", model.TypePackage)
	require.True(t, ok)
	assert.Equal(t, "p", pkg)
}
