package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/mindgraph/models"
)

func TestNewGraphHasAnchoredRoot(t *testing.T) {
	g := New("Root")
	require.Equal(t, 1, g.Len())

	root, ok := g.Node(g.DefaultRoot())
	require.True(t, ok)
	assert.Equal(t, "Root", root.Label)
	assert.True(t, root.Anchored)
	assert.Equal(t, models.DefaultRootMark, root.Mark)
	assert.Equal(t, models.DefaultMass, root.Mass)
}

func TestNodeIDsNeverReused(t *testing.T) {
	g := New("Root")
	a := g.AddNode("a", 0, 0, false)
	b := g.AddNode("b", 0, 0, false)
	require.NotEqual(t, a.ID, b.ID)

	g.RemoveNodes(a.ID, b.ID)
	c := g.AddNode("c", 0, 0, false)
	assert.Greater(t, c.ID, b.ID, "freed identifiers must not be reissued")
}

func TestAddEdgeRejections(t *testing.T) {
	g := New("Root")
	a := g.AddNode("a", 0, 0, false)

	assert.Error(t, g.AddEdge(a.ID, a.ID), "self-loop")
	assert.Error(t, g.AddEdge(a.ID, 999), "dangling endpoint")

	require.NoError(t, g.AddEdge(g.DefaultRoot(), a.ID))
	require.NoError(t, g.AddEdge(a.ID, g.DefaultRoot()), "re-adding is a no-op")
	assert.Len(t, g.Edges(), 1)
}

func TestEdgesNormalizedAndSorted(t *testing.T) {
	g := New("Root")
	a := g.AddNode("a", 0, 0, false)
	b := g.AddNode("b", 0, 0, false)
	require.NoError(t, g.AddEdge(b.ID, a.ID))
	require.NoError(t, g.AddEdge(a.ID, g.DefaultRoot()))

	edges := g.Edges()
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Less(t, e.A, e.B)
	}
}

func TestRecomputePartition(t *testing.T) {
	g := New("Root")
	a := g.AddNode("a", 10, 0, false)
	require.NoError(t, g.AddEdge(g.DefaultRoot(), a.ID))

	ext := g.AddNode("island", 500, 0, true)
	g.AddExternalRoot(ext.ID)
	require.NoError(t, g.Recompute())

	root, _ := g.Node(g.DefaultRoot())
	na, _ := g.Node(a.ID)
	ne, _ := g.Node(ext.ID)
	assert.Equal(t, 0, root.Component)
	assert.Equal(t, 0, na.Component)
	assert.Equal(t, 1, ne.Component)
	assert.Equal(t, "1", ne.Mark)
}

func TestRecomputeFailsOnOrphanedNodes(t *testing.T) {
	g := New("Root")
	g.AddNode("stray", 100, 0, false)
	assert.Error(t, g.Recompute(), "node reachable from no root")
}

func TestRecomputeFailsOnMergedExternal(t *testing.T) {
	g := New("Root")
	ext := g.AddNode("island", 500, 0, true)
	g.AddExternalRoot(ext.ID)
	require.NoError(t, g.AddEdge(g.DefaultRoot(), ext.ID))
	assert.Error(t, g.Recompute(), "external root claimed by component 0")
}

func TestExternalMarkRenumbering(t *testing.T) {
	g := New("Root")
	var roots []uint32
	for i := 0; i < 3; i++ {
		n := g.AddNode("ext", float64(100*(i+1)), 0, true)
		g.AddExternalRoot(n.ID)
		roots = append(roots, n.ID)
	}
	require.NoError(t, g.Recompute())

	mark := func(id uint32) string {
		n, _ := g.Node(id)
		return n.Mark
	}
	require.Equal(t, "1", mark(roots[0]))
	require.Equal(t, "2", mark(roots[1]))
	require.Equal(t, "3", mark(roots[2]))

	// Dropping the middle component shifts later numerals down.
	g.RemoveNodes(roots[1])
	require.NoError(t, g.Recompute())
	assert.Equal(t, "1", mark(roots[0]))
	assert.Equal(t, "2", mark(roots[2]))
	assert.Equal(t, []uint32{roots[0], roots[2]}, g.Externals())
}

func TestMarksCapAtNine(t *testing.T) {
	g := New("Root")
	var last uint32
	for i := 0; i < 11; i++ {
		n := g.AddNode("ext", float64(100*(i+1)), 0, true)
		g.AddExternalRoot(n.ID)
		last = n.ID
	}
	require.NoError(t, g.Recompute())

	n, _ := g.Node(last)
	assert.Empty(t, n.Mark, "components past the ninth stay unmarked")
}

func TestSubtree(t *testing.T) {
	// Root - a - b
	//          \ c - d
	g := New("Root")
	a := g.AddNode("a", 1, 0, false)
	b := g.AddNode("b", 2, 0, false)
	c := g.AddNode("c", 2, 1, false)
	d := g.AddNode("d", 3, 1, false)
	require.NoError(t, g.AddEdge(g.DefaultRoot(), a.ID))
	require.NoError(t, g.AddEdge(a.ID, b.ID))
	require.NoError(t, g.AddEdge(a.ID, c.ID))
	require.NoError(t, g.AddEdge(c.ID, d.ID))
	g.MustRecompute()

	set, parent, hasParent := g.Subtree(a.ID)
	require.True(t, hasParent)
	assert.Equal(t, g.DefaultRoot(), parent)
	assert.Len(t, set, 4)

	set, parent, hasParent = g.Subtree(c.ID)
	require.True(t, hasParent)
	assert.Equal(t, a.ID, parent)
	assert.Len(t, set, 2)
	assert.Contains(t, set, c.ID)
	assert.Contains(t, set, d.ID)

	set, _, hasParent = g.Subtree(g.DefaultRoot())
	assert.False(t, hasParent)
	assert.Len(t, set, 5)
}

func TestSoleAnchor(t *testing.T) {
	g := New("Root")
	a := g.AddNode("a", 1, 0, false)
	require.NoError(t, g.AddEdge(g.DefaultRoot(), a.ID))
	g.MustRecompute()

	assert.True(t, g.IsSoleAnchor(g.DefaultRoot()))

	na, _ := g.Node(a.ID)
	na.Anchored = true
	assert.False(t, g.IsSoleAnchor(g.DefaultRoot()))
	assert.Equal(t, 2, g.AnchorCount(0))
}

func TestInsertNodePreservesIdentity(t *testing.T) {
	g := NewEmpty()
	n := &models.Node{ID: 7, Label: "seven", Mass: models.DefaultMass, Anchored: true}
	require.NoError(t, g.InsertNode(n))
	assert.Error(t, g.InsertNode(&models.Node{ID: 7}))

	fresh := g.AddNode("next", 0, 0, false)
	assert.Equal(t, uint32(8), fresh.ID)
}
