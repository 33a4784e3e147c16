package engine

import (
	"fmt"

	"github.com/TFMV/mindgraph/models"
)

// Register is the single-slot holding area for a cut or copied subtree.
// Every delete, snip, or explicit yank overwrites it; there is no history.
// A session shares one register across its sheets, and every read hands out
// an independent copy so sheets never alias clip state.
type Register struct {
	clip *models.Clip
}

// NewRegister returns an empty register.
func NewRegister() *Register { return &Register{} }

// Set overwrites the register with a copy of the clip. Last write wins.
func (r *Register) Set(clip models.Clip) {
	c := clip.Clone()
	r.clip = &c
}

// Get returns a copy of the held clip, or ErrEmptyRegister.
func (r *Register) Get() (models.Clip, error) {
	if r.clip == nil {
		return models.Clip{}, fmt.Errorf("nothing yanked: %w", ErrEmptyRegister)
	}
	return r.clip.Clone(), nil
}

// Len returns the node count of the held clip, zero when empty. Callers use
// it to label paste affordances without consuming the clip.
func (r *Register) Len() int {
	if r.clip == nil {
		return 0
	}
	return len(r.clip.Nodes)
}
