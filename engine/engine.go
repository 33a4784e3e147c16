// Package engine implements the mutation engine for one sheet: validated,
// atomic structural edits over the graph store, the mark and search
// registries, the cut/yank register, and the per-tick simulation driver.
// An external dispatch layer invokes operations by node identifier; every
// operation either applies completely or rejects with a sentinel error and
// leaves the sheet untouched.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/TFMV/mindgraph/graph"
	"github.com/TFMV/mindgraph/models"
	"github.com/TFMV/mindgraph/physics"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// offsetSeed keeps fresh-child placement deterministic per engine.
const offsetSeed = 11

// Engine owns a single sheet. It is not safe for concurrent use; a sheet's
// event loop drives mutations and simulation ticks serially, so the
// simulator never observes a half-applied edit.
type Engine struct {
	graph *graph.Graph
	sim   *physics.Simulator
	reg   *Register
	log   *slog.Logger

	noise    opensimplex.Noise
	noiseSeq float64

	active    uint32
	hasActive bool

	// targets is the cyclic navigation list: neighbors of the active node
	// ordered by angle, or the current search matches.
	targets   []uint32
	targetIdx int
	hasTarget bool

	// lastTraverseAngle biases neighbor cycling toward the direction the
	// user was already moving.
	lastTraverseAngle float64

	matches  []uint32
	viewport models.Viewport
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithParams overrides the simulation parameters.
func WithParams(params models.SimulationParams) Option {
	return func(e *Engine) { e.sim = physics.NewSimulator(params) }
}

// New creates a sheet containing only the anchored default root. The
// register may be shared across sheets by a session; passing nil gives the
// engine a private one.
func New(reg *Register, opts ...Option) *Engine {
	if reg == nil {
		reg = NewRegister()
	}
	e := &Engine{
		graph:             graph.New(models.DefaultRootLabel),
		sim:               physics.NewSimulator(models.DefaultSimulationParams()),
		reg:               reg,
		noise:             opensimplex.NewNormalized(offsetSeed),
		lastTraverseAngle: -math.Pi / 2,
		viewport:          models.DefaultViewport(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.graph.MustRecompute()
	e.setActive(e.graph.DefaultRoot())
	return e
}

// FromGraph wraps an already-populated store, as produced by the load
// path. The store must partition cleanly into components; the caller is
// expected to have validated invariants beforehand.
func FromGraph(g *graph.Graph, reg *Register, opts ...Option) (*Engine, error) {
	if reg == nil {
		reg = NewRegister()
	}
	e := &Engine{
		graph:             g,
		sim:               physics.NewSimulator(models.DefaultSimulationParams()),
		reg:               reg,
		noise:             opensimplex.NewNormalized(offsetSeed),
		lastTraverseAngle: -math.Pi / 2,
		viewport:          models.DefaultViewport(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if err := g.Recompute(); err != nil {
		return nil, err
	}
	e.setActive(g.DefaultRoot())
	return e, nil
}

// Graph exposes the underlying store for persistence and rendering.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Register returns the register mutation results are yanked into.
func (e *Engine) Register() *Register { return e.reg }

// Params returns the simulation tuning in force.
func (e *Engine) Params() models.SimulationParams { return e.sim.Params }

// Viewport returns the sheet's pan/zoom state.
func (e *Engine) Viewport() models.Viewport { return e.viewport }

// SetViewport replaces the sheet's pan/zoom state.
func (e *Engine) SetViewport(v models.Viewport) { e.viewport = v }

// Settled reports whether the simulation is suspended.
func (e *Engine) Settled() bool { return e.sim.Settled() }

// Tick advances the simulation by one tick and returns the largest movement
// any node underwent. While settled it is a no-op; any mutation wakes it.
func (e *Engine) Tick() float64 {
	return e.sim.Step(e.graph, e.sim.Params.UpdateDelta)
}

// KineticEnergy returns the current total kinetic energy of the sheet.
func (e *Engine) KineticEnergy() float64 {
	return e.sim.KineticEnergy(e.graph)
}

// AddChild creates a new node labeled label and an edge joining it to
// parent. The child spawns unanchored at a deterministic offset from the
// parent so repulsion does not fling it.
func (e *Engine) AddChild(parent uint32, label string) (uint32, error) {
	p, ok := e.graph.Node(parent)
	if !ok {
		return 0, fmt.Errorf("add child of %d: %w", parent, ErrNotFound)
	}
	ox, oy := e.childOffset()
	n := e.graph.AddNode(label, p.X+ox, p.Y+oy, false)
	if err := e.graph.AddEdge(parent, n.ID); err != nil {
		// The endpoints were just verified; a failure here is a bug.
		panic(err)
	}
	e.graph.MustRecompute()
	e.sim.Wake()
	e.refreshTargets()
	e.log.Debug("node added", "id", n.ID, "parent", parent)
	return n.ID, nil
}

// AddExternal creates a new single-node component rooted and anchored at
// the given position, assigning the lowest free numeral mark.
func (e *Engine) AddExternal(label string, x, y float64) (uint32, error) {
	n := e.graph.AddNode(label, x, y, true)
	component := e.graph.AddExternalRoot(n.ID)
	e.graph.MustRecompute()
	e.sim.Wake()
	e.log.Debug("external node added", "id", n.ID, "component", component)
	return n.ID, nil
}

// InsertBetween splices a new node onto the edge joining a and b. The pair
// must be adjacent.
func (e *Engine) InsertBetween(a, b uint32, label string) (uint32, error) {
	na, ok := e.graph.Node(a)
	if !ok {
		return 0, fmt.Errorf("insert between %d and %d: %w", a, b, ErrNotFound)
	}
	nb, ok := e.graph.Node(b)
	if !ok {
		return 0, fmt.Errorf("insert between %d and %d: %w", a, b, ErrNotFound)
	}
	if !e.graph.HasEdge(a, b) {
		return 0, fmt.Errorf("nodes %d and %d are not adjacent: %w", a, b, ErrInvalidTopology)
	}
	n := e.graph.AddNode(label, (na.X+nb.X)/2, (na.Y+nb.Y)/2, false)
	e.graph.RemoveEdge(a, b)
	if err := e.graph.AddEdge(a, n.ID); err != nil {
		panic(err)
	}
	if err := e.graph.AddEdge(n.ID, b); err != nil {
		panic(err)
	}
	e.graph.MustRecompute()
	e.sim.Wake()
	e.setActive(n.ID)
	return n.ID, nil
}

// ToggleAnchor flips a node's anchored flag. Unanchoring the sole anchor of
// a component is rejected.
func (e *Engine) ToggleAnchor(id uint32) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("toggle anchor of %d: %w", id, ErrNotFound)
	}
	if n.Anchored && e.graph.IsSoleAnchor(id) {
		return fmt.Errorf("node %d is the only anchor of component %d: %w", id, n.Component, ErrInvariantViolation)
	}
	n.Anchored = !n.Anchored
	n.VX = 0
	n.VY = 0
	e.sim.Wake()
	return nil
}

// AdjustMass moves a node's mass by the given number of discrete steps,
// clamped to the legal range. Negative steps decrease.
func (e *Engine) AdjustMass(id uint32, steps int) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("adjust mass of %d: %w", id, ErrNotFound)
	}
	mass := n.Mass + float64(steps)*models.MassStep
	if mass < models.MinMass {
		mass = models.MinMass
	}
	if mass > models.MaxMass {
		mass = models.MaxMass
	}
	n.Mass = mass
	e.sim.Wake()
	return nil
}

// ResetMass restores a node's mass to the default exactly. Idempotent.
func (e *Engine) ResetMass(id uint32) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("reset mass of %d: %w", id, ErrNotFound)
	}
	n.Mass = models.DefaultMass
	e.sim.Wake()
	return nil
}

// MoveNode nudges a node by a manual offset. The node is anchored first so
// the simulation does not immediately undo the user's placement; the
// default root never moves.
func (e *Engine) MoveNode(id uint32, dx, dy float64) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("move node %d: %w", id, ErrNotFound)
	}
	if id == e.graph.DefaultRoot() {
		return fmt.Errorf("the default root is fixed: %w", ErrInvalidTopology)
	}
	n.Anchored = true
	n.SetPosition(n.X+dx, n.Y+dy)
	e.sim.Wake()
	return nil
}

// SetLabel stores the committed label string from the text collaborator.
func (e *Engine) SetLabel(id uint32, label string) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("set label of %d: %w", id, ErrNotFound)
	}
	n.SetLabel(label)
	e.sim.Wake()
	return nil
}

// childOffset returns a small deterministic displacement for a new child.
func (e *Engine) childOffset() (float64, float64) {
	e.noiseSeq++
	angle := 2 * math.Pi * e.noise.Eval2(e.noiseSeq, 0)
	r := e.sim.Params.RestLength * 0.25
	return r * math.Cos(angle), r * math.Sin(angle)
}
