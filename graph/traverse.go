package graph

// Edges carry no stored direction; tree-shaped mutations derive a rooted view
// on demand by traversal from the component root, so the physics-facing
// undirected structure and the mutation-facing tree can never drift apart.

// parentsFrom returns the BFS parent of every node reachable from root.
// The root maps to itself.
func (g *Graph) parentsFrom(root uint32) map[uint32]uint32 {
	parents := map[uint32]uint32{root: root}
	queue := []uint32{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for n := range g.adjacency[id] {
			if _, seen := parents[n]; !seen {
				parents[n] = id
				queue = append(queue, n)
			}
		}
	}
	return parents
}

// Subtree computes the set of nodes reachable from id by moving away from
// its component root: id and its descendants in the derived rooted view.
// The second return is id's parent toward the root; hasParent is false when
// id is itself the component root.
func (g *Graph) Subtree(id uint32) (set map[uint32]struct{}, parent uint32, hasParent bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, 0, false
	}
	root, ok := g.RootOf(n.Component)
	if !ok {
		return nil, 0, false
	}
	parents := g.parentsFrom(root)

	set = make(map[uint32]struct{})
	for member := range parents {
		// Walk the parent chain; membership in the subtree means the
		// chain passes through id before reaching the root.
		cur := member
		for {
			if cur == id {
				set[member] = struct{}{}
				break
			}
			next := parents[cur]
			if next == cur {
				break
			}
			cur = next
		}
	}
	if id == root {
		return set, 0, false
	}
	return set, parents[id], true
}

// Connected reports whether a path exists between two nodes.
func (g *Graph) Connected(a, b uint32) bool {
	if _, ok := g.nodes[a]; !ok {
		return false
	}
	parents := g.parentsFrom(a)
	_, ok := parents[b]
	return ok
}
