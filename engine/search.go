package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/TFMV/mindgraph/models"
)

// Active returns the currently active node. A sheet always has one after
// construction; the flag only drops momentarily inside a mutation.
func (e *Engine) Active() (uint32, bool) {
	return e.active, e.hasActive
}

// SetActive moves the activation cursor to an existing node.
func (e *Engine) SetActive(id uint32) error {
	if _, ok := e.graph.Node(id); !ok {
		return fmt.Errorf("activate %d: %w", id, ErrNotFound)
	}
	e.setActive(id)
	return nil
}

// ActivateByMark jumps the activation cursor to the holder of a mark.
func (e *Engine) ActivateByMark(mark string) error {
	id, ok := e.NodeByMark(mark)
	if !ok {
		return fmt.Errorf("no node holds mark %q: %w", mark, ErrNotFound)
	}
	e.setActive(id)
	return nil
}

func (e *Engine) setActive(id uint32) {
	if prev, ok := e.graph.Node(e.active); ok && e.hasActive {
		if next, nok := e.graph.Node(id); nok && (next.X != prev.X || next.Y != prev.Y) {
			e.lastTraverseAngle = math.Atan2(next.Y-prev.Y, next.X-prev.X)
		}
	}
	e.active = id
	e.hasActive = true
	e.refreshTargets()
}

// Target returns the traversal candidate among the active node's neighbors.
func (e *Engine) Target() (uint32, bool) {
	if !e.hasTarget || len(e.targets) == 0 {
		return 0, false
	}
	return e.targets[e.targetIdx], true
}

// CycleTarget advances the traversal candidate through the active node's
// neighbors in angular order; negative dir cycles backwards.
func (e *Engine) CycleTarget(dir int) (uint32, bool) {
	if len(e.targets) == 0 {
		return 0, false
	}
	if !e.hasTarget {
		e.hasTarget = true
		return e.targets[e.targetIdx], true
	}
	step := 1
	if dir < 0 {
		step = len(e.targets) - 1
	}
	e.targetIdx = (e.targetIdx + step) % len(e.targets)
	return e.targets[e.targetIdx], true
}

// ActivateTarget commits the current traversal candidate as the new active
// node, remembering the direction of travel so the next neighbor listing
// starts from where the cursor came in.
func (e *Engine) ActivateTarget() (uint32, bool) {
	id, ok := e.Target()
	if !ok {
		return 0, false
	}
	e.setActive(id)
	return id, true
}

// refreshTargets rebuilds the neighbor traversal ring for the active node,
// sorted by angle and rotated so the neighbor closest to the last traversal
// direction comes first.
func (e *Engine) refreshTargets() {
	e.targets = e.targets[:0]
	e.targetIdx = 0
	e.hasTarget = false
	if !e.hasActive {
		return
	}
	n, ok := e.graph.Node(e.active)
	if !ok {
		return
	}
	neighbors := e.graph.Neighbors(e.active)
	if len(neighbors) == 0 {
		return
	}
	type candidate struct {
		id    uint32
		angle float64
	}
	ring := make([]candidate, 0, len(neighbors))
	for _, nb := range neighbors {
		nn, _ := e.graph.Node(nb)
		ring = append(ring, candidate{id: nb, angle: math.Atan2(nn.Y-n.Y, nn.X-n.X)})
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].angle < ring[j].angle })

	start := 0
	best := math.MaxFloat64
	for i, c := range ring {
		d := math.Abs(angleDiff(c.angle, e.lastTraverseAngle))
		if d < best {
			best = d
			start = i
		}
	}
	for i := range ring {
		e.targets = append(e.targets, ring[(start+i)%len(ring)].id)
	}
	e.hasTarget = true
}

// Search recomputes the match set against node labels. Matching is
// case-insensitive substring containment, results come back in creation
// order, and sole reports whether exactly one node matched so the caller
// can jump straight to it instead of cycling.
func (e *Engine) Search(query string) (matches []uint32, sole bool) {
	e.matches = e.matches[:0]
	if query == "" {
		return nil, false
	}
	needle := strings.ToLower(query)
	for _, id := range e.graph.NodeIDs() {
		n, _ := e.graph.Node(id)
		if strings.Contains(strings.ToLower(n.Label), needle) {
			e.matches = append(e.matches, id)
		}
	}
	out := make([]uint32, len(e.matches))
	copy(out, e.matches)
	return out, len(out) == 1
}

// Matches returns the result of the most recent Search in creation order.
func (e *Engine) Matches() []uint32 {
	out := make([]uint32, len(e.matches))
	copy(out, e.matches)
	return out
}

// ClearSearch drops the current match set.
func (e *Engine) ClearSearch() {
	e.matches = e.matches[:0]
}

// Snapshot exports every node's render state in identifier order.
func (e *Engine) Snapshot() []models.NodeState {
	matched := make(map[uint32]struct{}, len(e.matches))
	for _, id := range e.matches {
		matched[id] = struct{}{}
	}
	target, hasTarget := e.Target()

	ids := e.graph.NodeIDs()
	states := make([]models.NodeState, 0, len(ids))
	for _, id := range ids {
		n, _ := e.graph.Node(id)
		_, isMatch := matched[id]
		states = append(states, models.NodeState{
			ID:       n.ID,
			Label:    n.Label,
			X:        n.X,
			Y:        n.Y,
			VX:       n.VX,
			VY:       n.VY,
			Mass:     n.Mass,
			Anchored: n.Anchored,
			Mark:     n.Mark,
			Root:     e.graph.IsRoot(id),
			Active:   e.hasActive && id == e.active,
			Target:   hasTarget && id == target,
			Matched:  isMatch,
		})
	}
	return states
}

// EdgeStates exports endpoint positions for every edge.
func (e *Engine) EdgeStates() []models.EdgeState {
	edges := e.graph.Edges()
	states := make([]models.EdgeState, 0, len(edges))
	for _, edge := range edges {
		a, _ := e.graph.Node(edge.A)
		b, _ := e.graph.Node(edge.B)
		states = append(states, models.EdgeState{A: edge.A, B: edge.B, AX: a.X, AY: a.Y, BX: b.X, BY: b.Y})
	}
	return states
}

// angleDiff returns the signed smallest difference between two angles.
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
