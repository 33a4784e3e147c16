// Package models provides data structures shared across the mindgraph engine.
// It defines the core domain models: nodes, edges, clips, and the simulation
// parameters that drive the force-directed layout.
package models

import (
	"time"
)

// Mass and mark defaults shared by every sheet.
const (
	// DefaultMass is the mass assigned to every new node.
	DefaultMass = 10.0
	// MassStep is the amount a single adjust-mass step adds or removes.
	MassStep = 2.0
	// MinMass and MaxMass bound adjustable node mass.
	MinMass = 1.0
	MaxMass = 100.0

	// MaxNumeralMark is the highest numeral mark assigned to external
	// component roots. Components beyond it exist but carry no mark.
	MaxNumeralMark = 9

	// DefaultRootLabel is the label of the permanent root of a new sheet.
	DefaultRootLabel = "Root"
	// DefaultRootMark is the numeral mark reserved for the default root.
	DefaultRootMark = "0"
)

// Node represents a node in a sheet's graph.
type Node struct {
	ID        uint32    `json:"id"`
	Label     string    `json:"label"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	VX        float64   `json:"vx"`
	VY        float64   `json:"vy"`
	Mass      float64   `json:"mass"`
	Anchored  bool      `json:"anchored"`
	Mark      string    `json:"mark,omitempty"`
	Component int       `json:"component"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetLabel replaces the node's label payload. The engine treats the label as
// an opaque string owned by the text collaborator.
func (n *Node) SetLabel(label string) {
	n.Label = label
	n.UpdatedAt = time.Now()
}

// SetPosition sets the position of a node and zeroes its velocity.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.VX = 0
	n.VY = 0
	n.UpdatedAt = time.Now()
}

// Touch records that the node changed without moving it.
func (n *Node) Touch() {
	n.UpdatedAt = time.Now()
}

// MarkEntry pairs an assigned mark with the node holding it.
type MarkEntry struct {
	Mark string `json:"mark"`
	Node uint32 `json:"node"`
}

// Edge represents an undirected edge between two distinct nodes.
// A < B always holds; physics treats the pair symmetrically.
type Edge struct {
	A uint32 `json:"a"`
	B uint32 `json:"b"`
}

// NewEdge normalizes an unordered node pair into an Edge.
func NewEdge(a, b uint32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Other returns the endpoint opposite to id.
func (e Edge) Other(id uint32) uint32 {
	if e.A == id {
		return e.B
	}
	return e.A
}

// NodeState is the per-tick export of a node for rendering. It carries
// everything a renderer needs without exposing the mutable store.
type NodeState struct {
	ID       uint32  `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Mass     float64 `json:"mass"`
	Anchored bool    `json:"anchored"`
	Mark     string  `json:"mark,omitempty"`
	Root     bool    `json:"root"`
	Active   bool    `json:"active"`
	Target   bool    `json:"target"`
	Matched  bool    `json:"matched"`
}

// EdgeState is the per-tick export of an edge for rendering.
type EdgeState struct {
	A  uint32  `json:"a"`
	B  uint32  `json:"b"`
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
	BX float64 `json:"bx"`
	BY float64 `json:"by"`
}

// Viewport holds the pan/zoom state a sheet exports to persistence.
type Viewport struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Scale   float64 `json:"scale"`
}

// DefaultViewport returns the viewport of a freshly created sheet.
func DefaultViewport() Viewport {
	return Viewport{Scale: 1.0}
}

// SimulationParams controls the force-directed simulation.
type SimulationParams struct {
	ForceCharge   float64 `json:"force_charge"`   // pair repulsion strength
	ForceSpring   float64 `json:"force_spring"`   // edge spring stiffness
	ForceMax      float64 `json:"force_max"`      // per-axis force clamp
	NodeSpeed     float64 `json:"node_speed"`     // acceleration multiplier
	DampingFactor float64 `json:"damping_factor"` // velocity drag per tick
	RestLength    float64 `json:"rest_length"`    // target edge separation
	UpdateDelta   float64 `json:"update_delta"`   // seconds per tick
	SettleEpsilon float64 `json:"settle_epsilon"` // kinetic energy floor
}

// DefaultSimulationParams returns the tuning used by interactive sheets.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		ForceCharge:   1000.0,
		ForceSpring:   4.0,
		ForceMax:      280.0,
		NodeSpeed:     3000.0,
		DampingFactor: 0.5,
		RestLength:    180.0,
		UpdateDelta:   0.032,
		SettleEpsilon: 0.1,
	}
}
