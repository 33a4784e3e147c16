// Package persist reads and writes sheet files. A file carries every tab of
// a session; loading validates the whole payload against the engine's
// structural invariants and rejects it as a unit, so a malformed save never
// partially populates a graph.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/TFMV/mindgraph/graph"
	"github.com/TFMV/mindgraph/models"
)

// Version identifies the current file layout.
const Version = 1

// ErrMalformedSave is returned when a save file fails structural
// validation. The cause wraps it with a description of the first defect.
var ErrMalformedSave = errors.New("malformed save file")

// File is the on-disk form of a session.
type File struct {
	Version int     `json:"version"`
	Sheets  []Sheet `json:"sheets"`
}

// Sheet is the on-disk form of one tab.
type Sheet struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Nodes       []models.Node   `json:"nodes"`
	Edges       []models.Edge   `json:"edges"`
	DefaultRoot uint32          `json:"default_root"`
	Externals   []uint32        `json:"externals"`
	NextID      uint32          `json:"next_id"`
	Viewport    models.Viewport `json:"viewport"`
}

// EncodeSheet snapshots a graph into its on-disk form.
func EncodeSheet(id, name string, g *graph.Graph, viewport models.Viewport) Sheet {
	sheet := Sheet{
		ID:          id,
		Name:        name,
		Nodes:       make([]models.Node, 0, g.Len()),
		Edges:       g.Edges(),
		DefaultRoot: g.DefaultRoot(),
		Externals:   g.Externals(),
		NextID:      g.NextID(),
		Viewport:    viewport,
	}
	for _, nodeID := range g.NodeIDs() {
		n, _ := g.Node(nodeID)
		sheet.Nodes = append(sheet.Nodes, *n)
	}
	return sheet
}

// DecodeSheet rebuilds a graph from its on-disk form, validating every
// structural invariant before handing anything back.
func DecodeSheet(sheet Sheet) (*graph.Graph, error) {
	if _, err := uuid.Parse(sheet.ID); err != nil {
		return nil, fmt.Errorf("%w: sheet id %q is not a UUID", ErrMalformedSave, sheet.ID)
	}
	if len(sheet.Nodes) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no nodes", ErrMalformedSave, sheet.Name)
	}

	g := graph.NewEmpty()
	for i := range sheet.Nodes {
		n := sheet.Nodes[i]
		if n.Mass < models.MinMass || n.Mass > models.MaxMass {
			return nil, fmt.Errorf("%w: node %d mass %v out of range", ErrMalformedSave, n.ID, n.Mass)
		}
		if err := g.InsertNode(&n); err != nil {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrMalformedSave, n.ID)
		}
	}
	if sheet.NextID > g.NextID() {
		// The saved high-water mark wins so identifiers are never reused
		// across a save/load cycle.
		g.SetNextID(sheet.NextID)
	}

	seen := make(map[models.Edge]struct{}, len(sheet.Edges))
	for _, raw := range sheet.Edges {
		edge := models.NewEdge(raw.A, raw.B)
		if _, dup := seen[edge]; dup {
			return nil, fmt.Errorf("%w: duplicate edge %d-%d", ErrMalformedSave, edge.A, edge.B)
		}
		seen[edge] = struct{}{}
		if err := g.AddEdge(edge.A, edge.B); err != nil {
			return nil, fmt.Errorf("%w: edge %d-%d: %v", ErrMalformedSave, edge.A, edge.B, err)
		}
	}

	if _, ok := g.Node(sheet.DefaultRoot); !ok {
		return nil, fmt.Errorf("%w: default root %d does not exist", ErrMalformedSave, sheet.DefaultRoot)
	}
	g.SetDefaultRoot(sheet.DefaultRoot)
	for _, ext := range sheet.Externals {
		if _, ok := g.Node(ext); !ok {
			return nil, fmt.Errorf("%w: external root %d does not exist", ErrMalformedSave, ext)
		}
	}
	g.SetExternals(sheet.Externals)

	if err := g.Recompute(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}
	edgeCount := make(map[int]int)
	for _, edge := range g.Edges() {
		n, _ := g.Node(edge.A)
		edgeCount[n.Component]++
	}
	for component := 0; component <= len(sheet.Externals); component++ {
		if g.AnchorCount(component) == 0 {
			return nil, fmt.Errorf("%w: component %d has no anchored node", ErrMalformedSave, component)
		}
		// Mutations only ever produce trees; a cycle would make the derived
		// rooted view depend on traversal order.
		members := len(g.ComponentMembers(component))
		if edgeCount[component] != members-1 {
			return nil, fmt.Errorf("%w: component %d has %d edges for %d nodes", ErrMalformedSave, component, edgeCount[component], members)
		}
	}
	if err := validateMarks(g); err != nil {
		return nil, err
	}
	return g, nil
}

// validateMarks rejects duplicate marks and, on non-root nodes, anything the
// engine's mark assignment could never produce: numerals, multi-character
// strings, unprintable runes. Root numerals themselves were rewritten by
// Recompute.
func validateMarks(g *graph.Graph) error {
	holders := make(map[string]uint32)
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if n.Mark == "" {
			continue
		}
		if prev, dup := holders[n.Mark]; dup {
			return fmt.Errorf("%w: mark %q held by both %d and %d", ErrMalformedSave, n.Mark, prev, id)
		}
		holders[n.Mark] = id
		if g.IsRoot(id) {
			continue
		}
		r, size := utf8.DecodeRuneInString(n.Mark)
		if size != len(n.Mark) || r == utf8.RuneError || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: mark %q on node %d is not a single printable character", ErrMalformedSave, n.Mark, id)
		}
		if unicode.IsDigit(r) {
			return fmt.Errorf("%w: numeral mark %q on non-root node %d", ErrMalformedSave, n.Mark, id)
		}
	}
	return nil
}

// Save writes a file as indented JSON.
func Save(w io.Writer, file File) error {
	file.Version = Version
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding save file: %w", err)
	}
	return nil
}

// Load parses and validates a file. Every sheet is decoded before any
// result is returned, so a defect anywhere rejects the whole file.
func Load(r io.Reader) (File, []*graph.Graph, error) {
	var file File
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return File{}, nil, fmt.Errorf("%w: %v", ErrMalformedSave, err)
	}
	if file.Version != Version {
		return File{}, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedSave, file.Version)
	}
	if len(file.Sheets) == 0 {
		return File{}, nil, fmt.Errorf("%w: no sheets", ErrMalformedSave)
	}
	graphs := make([]*graph.Graph, len(file.Sheets))
	for i, sheet := range file.Sheets {
		g, err := DecodeSheet(sheet)
		if err != nil {
			return File{}, nil, err
		}
		graphs[i] = g
	}
	return file, graphs, nil
}
