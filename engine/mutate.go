package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/TFMV/mindgraph/models"
)

// DeletionCount returns how many nodes DeleteSubtree(id) would remove, so
// the dispatch layer can prompt for confirmation when it exceeds one.
// Unknown identifiers count zero.
func (e *Engine) DeletionCount(id uint32) int {
	if _, ok := e.graph.Node(id); !ok {
		return 0
	}
	set, _, _ := e.graph.Subtree(id)
	return len(set)
}

// DeleteSubtree removes id and its descendants, copying them into the
// register first (yank-on-delete). A component root is only removable as
// the sole remaining node of its component, in which case the component
// dissolves and later numeral marks shift down. The default root is
// permanent. Removal that would leave the component without an anchored
// node is rejected.
func (e *Engine) DeleteSubtree(id uint32) (int, error) {
	n, ok := e.graph.Node(id)
	if !ok {
		return 0, fmt.Errorf("delete subtree of %d: %w", id, ErrNotFound)
	}
	set, parent, hasParent := e.graph.Subtree(id)

	if !hasParent {
		// id is its component's root.
		if id == e.graph.DefaultRoot() {
			return 0, fmt.Errorf("the default root is permanent: %w", ErrInvariantViolation)
		}
		if len(set) > 1 {
			return 0, fmt.Errorf("component root %d still has %d descendants: %w", id, len(set)-1, ErrInvariantViolation)
		}
		e.reg.Set(e.captureClip(set, id))
		e.purgeRefs(set)
		e.graph.RemoveNodes(id)
		e.graph.MustRecompute()
		e.sim.Wake()
		e.setActive(e.graph.DefaultRoot())
		e.log.Debug("component dissolved", "root", id)
		return 1, nil
	}

	anchorsKept := e.graph.AnchorCount(n.Component)
	for rid := range set {
		if rn, _ := e.graph.Node(rid); rn.Anchored {
			anchorsKept--
		}
	}
	if anchorsKept == 0 {
		return 0, fmt.Errorf("removing subtree of %d would unanchor component %d: %w", id, n.Component, ErrInvariantViolation)
	}

	e.reg.Set(e.captureClip(set, id))
	e.purgeRefs(set)
	ids := make([]uint32, 0, len(set))
	for rid := range set {
		ids = append(ids, rid)
	}
	e.graph.RemoveNodes(ids...)
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(parent)
	e.log.Debug("subtree deleted", "id", id, "count", len(set))
	return len(set), nil
}

// Snip removes a degree-2 non-root node and joins its two former neighbors
// directly, preserving connectivity. The snipped node lands in the register.
// Returns the surviving neighbor closest by identifier.
func (e *Engine) Snip(id uint32) (uint32, error) {
	if _, ok := e.graph.Node(id); !ok {
		return 0, fmt.Errorf("snip %d: %w", id, ErrNotFound)
	}
	if e.graph.IsRoot(id) {
		return 0, fmt.Errorf("cannot snip a root node: %w", ErrInvalidTopology)
	}
	if e.graph.Degree(id) != 2 {
		return 0, fmt.Errorf("snip requires exactly two neighbors, node %d has %d: %w", id, e.graph.Degree(id), ErrInvalidTopology)
	}
	neighbors := e.graph.Neighbors(id)
	e.reg.Set(e.captureClip(map[uint32]struct{}{id: {}}, id))
	e.purgeRefs(map[uint32]struct{}{id: {}})
	e.graph.RemoveNodes(id)
	if err := e.graph.AddEdge(neighbors[0], neighbors[1]); err != nil {
		panic(err)
	}
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(neighbors[0])
	return neighbors[0], nil
}

// SplitToExternal detaches the subtree rooted at id from its parent edge
// and promotes it to a new external component with id as root. The new
// component takes the lowest free numeral mark; both the old and the new
// component are left with at least one anchored node.
func (e *Engine) SplitToExternal(id uint32) (int, error) {
	n, ok := e.graph.Node(id)
	if !ok {
		return 0, fmt.Errorf("split %d: %w", id, ErrNotFound)
	}
	if e.graph.IsRoot(id) {
		return 0, fmt.Errorf("node %d is already a component root: %w", id, ErrInvalidTopology)
	}
	set, parent, _ := e.graph.Subtree(id)

	anchorsMoved := 0
	for rid := range set {
		if rn, _ := e.graph.Node(rid); rn.Anchored {
			anchorsMoved++
		}
	}
	anchorsKept := e.graph.AnchorCount(n.Component) - anchorsMoved

	e.graph.RemoveEdge(id, parent)
	if anchorsMoved == 0 {
		n.Anchored = true
	}
	if anchorsKept == 0 {
		oldRoot, _ := e.graph.RootOf(n.Component)
		if rn, ok := e.graph.Node(oldRoot); ok {
			rn.Anchored = true
		}
	}
	component := e.graph.AddExternalRoot(id)
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(id)
	e.log.Debug("subtree split to external", "id", id, "component", component)
	return component, nil
}

// Yank copies a single node into the register without removing it.
func (e *Engine) Yank(id uint32) error {
	if _, ok := e.graph.Node(id); !ok {
		return fmt.Errorf("yank %d: %w", id, ErrNotFound)
	}
	e.reg.Set(e.captureClip(map[uint32]struct{}{id: {}}, id))
	return nil
}

// YankSubtree copies id and its descendants into the register.
func (e *Engine) YankSubtree(id uint32) error {
	if _, ok := e.graph.Node(id); !ok {
		return fmt.Errorf("yank subtree of %d: %w", id, ErrNotFound)
	}
	set, _, _ := e.graph.Subtree(id)
	e.reg.Set(e.captureClip(set, id))
	return nil
}

// Attach grafts a clip into the component containing parent. The clip root
// becomes a new child of parent, placed one rest length away in a free
// angular slot between parent's existing neighbors, and the clip's internal
// relative geometry is preserved under that rotation so the graft does not
// collapse into a point cluster. Returns the graft root's new identifier.
func (e *Engine) Attach(clip models.Clip, parent uint32) (uint32, error) {
	if err := validateClip(clip); err != nil {
		return 0, err
	}
	p, ok := e.graph.Node(parent)
	if !ok {
		return 0, fmt.Errorf("attach at %d: %w", parent, ErrNotFound)
	}

	angle := e.freeAngle(parent)
	rootX := p.X + e.sim.Params.RestLength*math.Cos(angle)
	rootY := p.Y + e.sim.Params.RestLength*math.Sin(angle)

	ids := make([]uint32, len(clip.Nodes))
	for i, cn := range clip.Nodes {
		rx, ry := rotate(cn.X, cn.Y, angle)
		n := e.graph.AddNode(cn.Label, rootX+rx, rootY+ry, cn.Anchored)
		n.Mass = cn.Mass
		ids[i] = n.ID
		e.applyCharMark(n.ID, cn.Mark)
	}
	for _, edge := range clip.Edges {
		if err := e.graph.AddEdge(ids[edge[0]], ids[edge[1]]); err != nil {
			panic(err)
		}
	}
	if err := e.graph.AddEdge(parent, ids[clip.Root]); err != nil {
		panic(err)
	}
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(ids[clip.Root])
	e.log.Debug("clip attached", "parent", parent, "root", ids[clip.Root], "count", len(ids))
	return ids[clip.Root], nil
}

// PasteAsExternal recreates a clip as a standalone component rooted and
// anchored at the given position, with fresh numeral mark assignment.
func (e *Engine) PasteAsExternal(clip models.Clip, x, y float64) (uint32, error) {
	if err := validateClip(clip); err != nil {
		return 0, err
	}
	ids := make([]uint32, len(clip.Nodes))
	for i, cn := range clip.Nodes {
		anchored := cn.Anchored || i == clip.Root
		n := e.graph.AddNode(cn.Label, x+cn.X, y+cn.Y, anchored)
		n.Mass = cn.Mass
		ids[i] = n.ID
		e.applyCharMark(n.ID, cn.Mark)
	}
	for _, edge := range clip.Edges {
		if err := e.graph.AddEdge(ids[edge[0]], ids[edge[1]]); err != nil {
			panic(err)
		}
	}
	component := e.graph.AddExternalRoot(ids[clip.Root])
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(ids[clip.Root])
	e.log.Debug("clip pasted as external", "root", ids[clip.Root], "component", component)
	return ids[clip.Root], nil
}

// SeedFromClip populates a freshly constructed sheet from a clip: the clip
// root takes over the default root, everything else pastes around it. The
// session uses this for paste-as-new-tab.
func (e *Engine) SeedFromClip(clip models.Clip) error {
	if err := validateClip(clip); err != nil {
		return err
	}
	if e.graph.Len() != 1 {
		return fmt.Errorf("sheet already populated: %w", ErrInvalidTopology)
	}
	rootID := e.graph.DefaultRoot()
	root, _ := e.graph.Node(rootID)
	root.SetLabel(clip.Nodes[clip.Root].Label)
	root.Mass = clip.Nodes[clip.Root].Mass

	ids := make([]uint32, len(clip.Nodes))
	for i, cn := range clip.Nodes {
		if i == clip.Root {
			ids[i] = rootID
			continue
		}
		n := e.graph.AddNode(cn.Label, cn.X, cn.Y, cn.Anchored)
		n.Mass = cn.Mass
		ids[i] = n.ID
		e.applyCharMark(n.ID, cn.Mark)
	}
	for _, edge := range clip.Edges {
		if err := e.graph.AddEdge(ids[edge[0]], ids[edge[1]]); err != nil {
			panic(err)
		}
	}
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(rootID)
	return nil
}

// captureClip copies a node set into a clip rooted at rootID. Positions are
// stored relative to the root and rotated so the root-outward direction
// (from the sheet origin toward the root) lies along +X; numeral marks
// never travel with a clip.
func (e *Engine) captureClip(set map[uint32]struct{}, rootID uint32) models.Clip {
	root, _ := e.graph.Node(rootID)
	outward := 0.0
	if root.X != 0 || root.Y != 0 {
		outward = math.Atan2(root.Y, root.X)
	}

	ids := make([]uint32, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	clip := models.Clip{Nodes: make([]models.ClipNode, len(ids))}
	local := make(map[uint32]int, len(ids))
	for i, id := range ids {
		n, _ := e.graph.Node(id)
		rx, ry := rotate(n.X-root.X, n.Y-root.Y, -outward)
		mark := n.Mark
		if isNumeralMark(mark) {
			mark = ""
		}
		clip.Nodes[i] = models.ClipNode{
			X:        rx,
			Y:        ry,
			Label:    n.Label,
			Mass:     n.Mass,
			Anchored: n.Anchored,
			Mark:     mark,
		}
		local[id] = i
		if id == rootID {
			clip.Root = i
		}
	}
	for _, edge := range e.graph.Edges() {
		a, aok := local[edge.A]
		b, bok := local[edge.B]
		if aok && bok {
			clip.Edges = append(clip.Edges, [2]int{a, b})
		}
	}
	return clip
}

// freeAngle picks the attachment direction around a node: the middle of the
// widest angular gap between its existing neighbors, so a graft does not
// land on top of an existing child. A node with no neighbors hands out its
// own outward direction from the sheet origin.
func (e *Engine) freeAngle(id uint32) float64 {
	n, _ := e.graph.Node(id)
	neighbors := e.graph.Neighbors(id)
	if len(neighbors) == 0 {
		if n.X == 0 && n.Y == 0 {
			return e.lastTraverseAngle
		}
		return math.Atan2(n.Y, n.X)
	}
	angles := make([]float64, 0, len(neighbors))
	for _, nb := range neighbors {
		nn, _ := e.graph.Node(nb)
		angles = append(angles, math.Atan2(nn.Y-n.Y, nn.X-n.X))
	}
	sort.Float64s(angles)

	bestGap := 0.0
	bestAngle := angles[0] + math.Pi
	for i := range angles {
		next := angles[(i+1)%len(angles)]
		gap := next - angles[i]
		if gap <= 0 {
			gap += 2 * math.Pi
		}
		if gap > bestGap {
			bestGap = gap
			bestAngle = angles[i] + gap/2
		}
	}
	return bestAngle
}

// applyCharMark assigns a character mark to a node, clearing it from any
// previous holder so the character-to-node mapping stays a bijection.
func (e *Engine) applyCharMark(id uint32, mark string) {
	if mark == "" {
		return
	}
	if holder, ok := e.NodeByMark(mark); ok {
		hn, _ := e.graph.Node(holder)
		hn.Mark = ""
	}
	n, _ := e.graph.Node(id)
	n.Mark = mark
}

// purgeRefs drops every auxiliary reference to the given nodes in the same
// mutation that removes them, so no collaborator observes a dangling id.
// The register holds copies, never references, so it needs no purge.
func (e *Engine) purgeRefs(set map[uint32]struct{}) {
	e.matches = filterIDs(e.matches, set)
	e.targets = filterIDs(e.targets, set)
	if e.targetIdx >= len(e.targets) {
		e.targetIdx = 0
	}
	e.hasTarget = e.hasTarget && len(e.targets) > 0
	if _, gone := set[e.active]; gone {
		e.hasActive = false
	}
}

func filterIDs(ids []uint32, drop map[uint32]struct{}) []uint32 {
	kept := ids[:0]
	for _, id := range ids {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	return kept
}

// validateClip runs before any store mutation; instantiating a clip that
// fails it would strand nodes outside the component partition.
func validateClip(clip models.Clip) error {
	if clip.Len() == 0 {
		return fmt.Errorf("paste: %w", ErrEmptyRegister)
	}
	if clip.Root < 0 || clip.Root >= len(clip.Nodes) {
		return fmt.Errorf("clip root index %d out of range: %w", clip.Root, ErrInvalidTopology)
	}
	adj := make([][]int, len(clip.Nodes))
	for _, edge := range clip.Edges {
		for _, end := range edge {
			if end < 0 || end >= len(clip.Nodes) {
				return fmt.Errorf("clip edge endpoint %d out of range: %w", end, ErrInvalidTopology)
			}
		}
		if edge[0] == edge[1] {
			return fmt.Errorf("clip contains a self-loop: %w", ErrInvalidTopology)
		}
		adj[edge[0]] = append(adj[edge[0]], edge[1])
		adj[edge[1]] = append(adj[edge[1]], edge[0])
	}

	// Every node must hang off the clip root.
	seen := make([]bool, len(clip.Nodes))
	seen[clip.Root] = true
	queue := []int{clip.Root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for i, reached := range seen {
		if !reached {
			return fmt.Errorf("clip node %d unreachable from the clip root: %w", i, ErrInvalidTopology)
		}
	}
	return nil
}

func isNumeralMark(mark string) bool {
	return len(mark) == 1 && mark[0] >= '0' && mark[0] <= '9'
}

func rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}
