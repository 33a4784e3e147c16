// Package physics advances node positions with a force-directed simulation:
// mass-scaled pair repulsion, spring attraction along edges, velocity damping,
// and kinetic-energy settle detection.
package physics

import (
	"math"

	"github.com/TFMV/mindgraph/graph"
	"github.com/TFMV/mindgraph/models"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// jitterSeed keeps the coincident-pair jitter deterministic across runs.
const jitterSeed = 7

// Simulator steps a sheet's node positions once per animation tick. It is
// not safe for concurrent use; the sheet's event loop drives it serially
// between mutations.
type Simulator struct {
	Params models.SimulationParams

	settled bool
	noise   opensimplex.Noise
}

// NewSimulator creates a simulator with the given parameters.
func NewSimulator(params models.SimulationParams) *Simulator {
	return &Simulator{
		Params: params,
		noise:  opensimplex.NewNormalized(jitterSeed),
	}
}

// Settled reports whether stepping is currently suspended.
func (s *Simulator) Settled() bool { return s.settled }

// Wake resumes stepping. The engine calls this on every topology, mass,
// anchor, or manual-position change so the layout adapts without an
// external poke.
func (s *Simulator) Wake() { s.settled = false }

// force accumulates the force vector acting on one node during a step.
type force struct {
	fx, fy float64
}

// Step advances every node position by one tick of dt seconds and returns
// the largest single-axis movement any node underwent. While settled it is
// a no-op. Anchored nodes exert forces but are never displaced.
func (s *Simulator) Step(g *graph.Graph, dt float64) float64 {
	if s.settled || g.Len() == 0 {
		return 0
	}

	ids := g.NodeIDs()
	forces := make(map[uint32]force, len(ids))

	// Repulsion: every unordered pair, regardless of component. The force
	// scales with the product of the masses, so integration below (which
	// divides by the node's own mass) displaces heavy nodes less while
	// they push others harder.
	for i, a := range ids {
		na, _ := g.Node(a)
		for _, b := range ids[i+1:] {
			nb, _ := g.Node(b)
			dx, dy, dist := s.separation(na, nb)
			strength := s.Params.ForceCharge * (na.Mass * nb.Mass) / (dist * dist)
			fa := forces[a]
			fa.fx -= dx * strength
			fa.fy -= dy * strength
			forces[a] = fa
			fb := forces[b]
			fb.fx += dx * strength
			fb.fy += dy * strength
			forces[b] = fb
		}
	}

	// Attraction: only edge-joined nodes, spring force proportional to the
	// distance past the rest length, symmetric on both endpoints.
	for _, e := range g.Edges() {
		na, _ := g.Node(e.A)
		nb, _ := g.Node(e.B)
		dx, dy, dist := s.separation(na, nb)
		strength := s.Params.ForceSpring * (dist - s.Params.RestLength) * 0.5
		fa := forces[e.A]
		fa.fx += dx * strength
		fa.fy += dy * strength
		forces[e.A] = fa
		fb := forces[e.B]
		fb.fx -= dx * strength
		fb.fy -= dy * strength
		forces[e.B] = fb
	}

	// Integration: clamped force over mass, damped velocity, then position.
	largest := 0.0
	energy := 0.0
	for _, id := range ids {
		n, _ := g.Node(id)
		if n.Anchored {
			n.VX = 0
			n.VY = 0
			continue
		}
		f := forces[id]
		ax := clamp(f.fx, s.Params.ForceMax) / n.Mass * dt * s.Params.NodeSpeed
		ay := clamp(f.fy, s.Params.ForceMax) / n.Mass * dt * s.Params.NodeSpeed
		n.VX = (n.VX + ax*dt) * s.Params.DampingFactor
		n.VY = (n.VY + ay*dt) * s.Params.DampingFactor
		n.X += n.VX * dt
		n.Y += n.VY * dt
		movement := math.Max(math.Abs(n.VX*dt), math.Abs(n.VY*dt))
		if movement > largest {
			largest = movement
		}
		energy += 0.5 * n.Mass * (n.VX*n.VX + n.VY*n.VY)
	}

	if energy < s.Params.SettleEpsilon {
		s.settled = true
	}
	return largest
}

// KineticEnergy sums the kinetic energy of every unanchored node.
func (s *Simulator) KineticEnergy(g *graph.Graph) float64 {
	total := 0.0
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if n.Anchored {
			continue
		}
		total += 0.5 * n.Mass * (n.VX*n.VX + n.VY*n.VY)
	}
	return total
}

// separation returns the unit vector from a to b and their distance. The
// distance is floored at 1 so the repulsion denominator stays sane, and
// coincident nodes get a deterministic noise-derived direction instead of
// a divide-by-zero.
func (s *Simulator) separation(a, b *models.Node) (dx, dy, dist float64) {
	dx = b.X - a.X
	dy = b.Y - a.Y
	dist = math.Hypot(dx, dy)
	if dist < 1e-9 {
		angle := 2 * math.Pi * s.noise.Eval2(float64(a.ID), float64(b.ID))
		return math.Cos(angle), math.Sin(angle), 1
	}
	dx /= dist
	dy /= dist
	if dist < 1 {
		dist = 1
	}
	return dx, dy, dist
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
