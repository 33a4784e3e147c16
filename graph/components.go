package graph

import (
	"fmt"
	"strconv"

	"github.com/TFMV/mindgraph/models"
)

// DefaultRoot returns the permanent root of component 0.
func (g *Graph) DefaultRoot() uint32 { return g.defaultRoot }

// SetDefaultRoot records the default root identity. Persistence only.
func (g *Graph) SetDefaultRoot(id uint32) { g.defaultRoot = id }

// Externals returns the external component roots in mark order.
func (g *Graph) Externals() []uint32 {
	out := make([]uint32, len(g.externals))
	copy(out, g.externals)
	return out
}

// SetExternals records the external root list wholesale. Persistence only.
func (g *Graph) SetExternals(ids []uint32) {
	g.externals = make([]uint32, len(ids))
	copy(g.externals, ids)
}

// IsRoot reports whether id is the root of any component.
func (g *Graph) IsRoot(id uint32) bool {
	if id == g.defaultRoot {
		return true
	}
	for _, r := range g.externals {
		if r == id {
			return true
		}
	}
	return false
}

// RootOf returns the root node of the given component index.
func (g *Graph) RootOf(component int) (uint32, bool) {
	if component == 0 {
		return g.defaultRoot, true
	}
	if component-1 < len(g.externals) {
		return g.externals[component-1], true
	}
	return 0, false
}

// AddExternalRoot registers id as the root of a new external component and
// returns the component index. The new component takes the lowest free
// numeral; the list stays dense so that is always the next index.
func (g *Graph) AddExternalRoot(id uint32) int {
	g.externals = append(g.externals, id)
	g.refreshRootMarks()
	return len(g.externals)
}

// Recompute rebuilds the component partition by flood-fill from every root.
// External entries whose root node no longer exists are dropped first, which
// renumbers the remaining components and keeps their numeral marks dense.
// An error means the roots no longer cover every node; mutations that could
// produce that state are rejected before they reach the store.
func (g *Graph) Recompute() error {
	kept := g.externals[:0]
	for _, r := range g.externals {
		if _, ok := g.nodes[r]; ok {
			kept = append(kept, r)
		}
	}
	g.externals = kept

	if _, ok := g.nodes[g.defaultRoot]; !ok {
		return fmt.Errorf("graph: default root %d missing", g.defaultRoot)
	}

	visited := make(map[uint32]struct{}, len(g.nodes))
	g.flood(g.defaultRoot, 0, visited)
	for i, r := range g.externals {
		if _, seen := visited[r]; seen {
			return fmt.Errorf("graph: external root %d already claimed by another component", r)
		}
		g.flood(r, i+1, visited)
	}
	if len(visited) != len(g.nodes) {
		return fmt.Errorf("graph: %d of %d nodes unreachable from any root", len(g.nodes)-len(visited), len(g.nodes))
	}
	g.refreshRootMarks()
	return nil
}

// MustRecompute recomputes the partition after an edit the engine has
// already validated. A failure here is a corrupted store, not a user error.
func (g *Graph) MustRecompute() {
	if err := g.Recompute(); err != nil {
		panic(err)
	}
}

func (g *Graph) flood(from uint32, component int, visited map[uint32]struct{}) {
	queue := []uint32{from}
	visited[from] = struct{}{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g.nodes[id].Component = component
		for n := range g.adjacency[id] {
			if _, seen := visited[n]; !seen {
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}
	}
}

// refreshRootMarks reassigns the dense numeral sequence to external roots.
// Roots past the ninth component carry no mark.
func (g *Graph) refreshRootMarks() {
	for i, r := range g.externals {
		node, ok := g.nodes[r]
		if !ok {
			continue
		}
		if i+1 <= models.MaxNumeralMark {
			node.Mark = strconv.Itoa(i + 1)
		} else {
			node.Mark = ""
		}
	}
	if root, ok := g.nodes[g.defaultRoot]; ok {
		root.Mark = models.DefaultRootMark
	}
}

// AnchorCount returns how many anchored nodes the component holds.
func (g *Graph) AnchorCount(component int) int {
	count := 0
	for _, n := range g.nodes {
		if n.Component == component && n.Anchored {
			count++
		}
	}
	return count
}

// IsSoleAnchor reports whether id is the only anchored node of its component.
func (g *Graph) IsSoleAnchor(id uint32) bool {
	n, ok := g.nodes[id]
	if !ok || !n.Anchored {
		return false
	}
	return g.AnchorCount(n.Component) == 1
}

// ComponentMembers returns the ids belonging to a component in creation order.
func (g *Graph) ComponentMembers(component int) []uint32 {
	var out []uint32
	for _, id := range g.NodeIDs() {
		if g.nodes[id].Component == component {
			out = append(out, id)
		}
	}
	return out
}
