// Package graph implements the identity-stable node/edge store for a sheet,
// together with the component index that partitions nodes into connected
// components and maintains the numeral marks of component roots.
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/TFMV/mindgraph/models"
)

// Graph owns the node and edge records of one sheet. Node IDs are allocated
// from a monotonic counter and never reused within the sheet's lifetime.
type Graph struct {
	nodes     map[uint32]*models.Node
	adjacency map[uint32]map[uint32]struct{}
	nextID    uint32

	// defaultRoot is the permanent root of component 0.
	defaultRoot uint32
	// externals lists the root node of every non-default component in mark
	// order: the root of component i+1 is externals[i].
	externals []uint32
}

// New creates a graph holding only the default root node, anchored at the
// origin and carrying the reserved root mark.
func New(rootLabel string) *Graph {
	g := &Graph{
		nodes:     make(map[uint32]*models.Node),
		adjacency: make(map[uint32]map[uint32]struct{}),
	}
	root := g.AddNode(rootLabel, 0, 0, true)
	root.Mark = models.DefaultRootMark
	g.defaultRoot = root.ID
	return g
}

// NewEmpty creates a graph with no nodes at all. Used by persistence, which
// restores the default root from saved records before any other use.
func NewEmpty() *Graph {
	return &Graph{
		nodes:     make(map[uint32]*models.Node),
		adjacency: make(map[uint32]map[uint32]struct{}),
	}
}

// Node returns the node record for id.
func (g *Graph) Node(id uint32) (*models.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// NextID returns the next identifier the store would allocate.
func (g *Graph) NextID() uint32 { return g.nextID }

// SetNextID raises the allocation counter. Persistence uses it to restore
// the saved high-water mark so identifiers are never reused after a load;
// lowering the counter is ignored.
func (g *Graph) SetNextID(next uint32) {
	if next > g.nextID {
		g.nextID = next
	}
}

// NodeIDs returns every node identifier in ascending (creation) order.
func (g *Graph) NodeIDs() []uint32 {
	ids := make([]uint32, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddNode allocates a fresh node. New nodes start with the default mass and
// belong to no component until the index is recomputed.
func (g *Graph) AddNode(label string, x, y float64, anchored bool) *models.Node {
	now := time.Now()
	n := &models.Node{
		ID:        g.nextID,
		Label:     label,
		X:         x,
		Y:         y,
		Mass:      models.DefaultMass,
		Anchored:  anchored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.nextID++
	g.nodes[n.ID] = n
	g.adjacency[n.ID] = make(map[uint32]struct{})
	return n
}

// InsertNode installs a fully populated node record, preserving its identity.
// Persistence uses this to rebuild a saved sheet; it never reuses an ID.
func (g *Graph) InsertNode(n *models.Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("graph: duplicate node id %d", n.ID)
	}
	g.nodes[n.ID] = n
	g.adjacency[n.ID] = make(map[uint32]struct{})
	if n.ID >= g.nextID {
		g.nextID = n.ID + 1
	}
	return nil
}

// AddEdge connects two distinct existing nodes. Adding an existing edge is a
// no-op; self-loops and dangling endpoints are rejected.
func (g *Graph) AddEdge(a, b uint32) error {
	if a == b {
		return fmt.Errorf("graph: self-loop on node %d", a)
	}
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("graph: edge endpoint %d does not exist", a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("graph: edge endpoint %d does not exist", b)
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
	return nil
}

// RemoveEdge disconnects two nodes if an edge exists between them.
func (g *Graph) RemoveEdge(a, b uint32) {
	if adj, ok := g.adjacency[a]; ok {
		delete(adj, b)
	}
	if adj, ok := g.adjacency[b]; ok {
		delete(adj, a)
	}
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b uint32) bool {
	_, ok := g.adjacency[a][b]
	return ok
}

// Neighbors returns the ids adjacent to id in ascending order.
func (g *Graph) Neighbors(id uint32) []uint32 {
	adj := g.adjacency[id]
	out := make([]uint32, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id uint32) int { return len(g.adjacency[id]) }

// Edges returns every edge exactly once, ordered by endpoints.
func (g *Graph) Edges() []models.Edge {
	var out []models.Edge
	for a, adj := range g.adjacency {
		for b := range adj {
			if a < b {
				out = append(out, models.Edge{A: a, B: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// RemoveNodes deletes the given nodes and every incident edge. This is the
// raw bulk removal used by the mutation engine; invariant checks happen
// before it is called.
func (g *Graph) RemoveNodes(ids ...uint32) {
	for _, id := range ids {
		for n := range g.adjacency[id] {
			delete(g.adjacency[n], id)
		}
		delete(g.adjacency, id)
		delete(g.nodes, id)
	}
}
