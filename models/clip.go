package models

// ClipNode is one node of a clip. Positions are stored relative to the clip
// root, rotated so the captured root-outward direction lies along +X; the
// paste transform re-rotates them into a free slot at the destination.
type ClipNode struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Label    string  `json:"label"`
	Mass     float64 `json:"mass"`
	Anchored bool    `json:"anchored"`
	Mark     string  `json:"mark,omitempty"` // character marks only
}

// Clip is the node+edge payload held in the register after a cut or yank.
// It references nodes by local index only, so a clip is valid across sheets
// and survives the deletion of its source nodes.
type Clip struct {
	Nodes []ClipNode `json:"nodes"`
	Edges [][2]int   `json:"edges"`
	Root  int        `json:"root"`
}

// Len returns the number of nodes in the clip.
func (c Clip) Len() int { return len(c.Nodes) }

// Clone deep-copies the clip. Cross-tab paste hands each destination sheet
// its own copy so no state is shared between engine instances.
func (c Clip) Clone() Clip {
	out := Clip{
		Nodes: make([]ClipNode, len(c.Nodes)),
		Edges: make([][2]int, len(c.Edges)),
		Root:  c.Root,
	}
	copy(out.Nodes, c.Nodes)
	copy(out.Edges, c.Edges)
	return out
}
