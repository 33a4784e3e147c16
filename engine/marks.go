package engine

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/TFMV/mindgraph/models"
)

// SetMark assigns a single-character mark to a node so it can be addressed
// directly later. Numeral marks are owned by the component registry and
// cannot be assigned by hand; assigning a character already in use moves it
// to the new node. A space clears the node's mark.
func (e *Engine) SetMark(id uint32, mark string) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("mark %d: %w", id, ErrNotFound)
	}
	if e.graph.IsRoot(id) {
		return fmt.Errorf("root marks are managed automatically: %w", ErrInvariantViolation)
	}
	if mark == "" || mark == " " {
		n.Mark = ""
		n.Touch()
		return nil
	}
	r, size := utf8.DecodeRuneInString(mark)
	if size != len(mark) || r == utf8.RuneError || !unicode.IsPrint(r) {
		return fmt.Errorf("mark must be a single printable character: %w", ErrInvariantViolation)
	}
	if unicode.IsDigit(r) {
		return fmt.Errorf("numeral marks are reserved for component roots: %w", ErrInvariantViolation)
	}
	e.applyCharMark(id, mark)
	n.Touch()
	return nil
}

// ClearMark removes a node's character mark if it has one.
func (e *Engine) ClearMark(id uint32) error {
	return e.SetMark(id, "")
}

// NodeByMark resolves a mark, numeral or character, to its holder.
func (e *Engine) NodeByMark(mark string) (uint32, bool) {
	for _, id := range e.graph.NodeIDs() {
		n, _ := e.graph.Node(id)
		if n.Mark != "" && n.Mark == mark {
			return id, true
		}
	}
	return 0, false
}

// Marks lists every assigned mark and its holder in identifier order.
func (e *Engine) Marks() []models.MarkEntry {
	var entries []models.MarkEntry
	for _, id := range e.graph.NodeIDs() {
		n, _ := e.graph.Node(id)
		if n.Mark != "" {
			entries = append(entries, models.MarkEntry{Mark: n.Mark, Node: id})
		}
	}
	return entries
}
