// Package session coordinates multiple sheets under one shared register,
// so content yanked in one tab can be pasted into any other. Tabs are
// independent engines; the session only routes between them.
package session

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/TFMV/mindgraph/engine"
	"github.com/TFMV/mindgraph/persist"
)

// Tab is one sheet in a session.
type Tab struct {
	ID     uuid.UUID
	Name   string
	Engine *engine.Engine
}

// Session holds the open tabs and the register they share.
type Session struct {
	reg    *engine.Register
	log    *slog.Logger
	tabs   []*Tab
	active int
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a session with a single empty tab.
func New(opts ...Option) *Session {
	s := &Session{reg: engine.NewRegister()}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.NewTab("untitled")
	return s
}

// Register returns the register shared by every tab.
func (s *Session) Register() *engine.Register { return s.reg }

// Tabs returns the open tabs in order.
func (s *Session) Tabs() []*Tab { return s.tabs }

// Active returns the currently selected tab.
func (s *Session) Active() *Tab { return s.tabs[s.active] }

// Select makes the tab at index i active.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.tabs) {
		return fmt.Errorf("no tab at index %d", i)
	}
	s.active = i
	return nil
}

// Next cycles the active tab forward.
func (s *Session) Next() *Tab {
	s.active = (s.active + 1) % len(s.tabs)
	return s.tabs[s.active]
}

// Prev cycles the active tab backward.
func (s *Session) Prev() *Tab {
	s.active = (s.active + len(s.tabs) - 1) % len(s.tabs)
	return s.tabs[s.active]
}

// NewTab opens a fresh sheet sharing the session register and selects it.
func (s *Session) NewTab(name string) *Tab {
	tab := &Tab{
		ID:     uuid.New(),
		Name:   name,
		Engine: engine.New(s.reg, engine.WithLogger(s.log)),
	}
	s.tabs = append(s.tabs, tab)
	s.active = len(s.tabs) - 1
	s.log.Debug("tab opened", "id", tab.ID, "name", name)
	return tab
}

// PasteAsNewTab seeds a fresh tab from the register contents. The register
// hands out a deep copy, so later edits in either tab never bleed into the
// other.
func (s *Session) PasteAsNewTab(name string) (*Tab, error) {
	clip, err := s.reg.Get()
	if err != nil {
		return nil, err
	}
	tab := s.NewTab(name)
	if err := tab.Engine.SeedFromClip(clip); err != nil {
		s.CloseTab(len(s.tabs) - 1)
		return nil, err
	}
	return tab, nil
}

// CloseTab discards the tab at index i. The last remaining tab cannot be
// closed; a session always has at least one sheet.
func (s *Session) CloseTab(i int) error {
	if i < 0 || i >= len(s.tabs) {
		return fmt.Errorf("no tab at index %d", i)
	}
	if len(s.tabs) == 1 {
		return fmt.Errorf("cannot close the last tab")
	}
	closed := s.tabs[i]
	s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
	if s.active >= len(s.tabs) {
		s.active = len(s.tabs) - 1
	}
	s.log.Debug("tab closed", "id", closed.ID, "name", closed.Name)
	return nil
}

// Save writes every tab to w.
func (s *Session) Save(w io.Writer) error {
	file := persist.File{Sheets: make([]persist.Sheet, len(s.tabs))}
	for i, tab := range s.tabs {
		file.Sheets[i] = persist.EncodeSheet(tab.ID.String(), tab.Name, tab.Engine.Graph(), tab.Engine.Viewport())
	}
	return persist.Save(w, file)
}

// Load replaces the session's tabs with the contents of a save file. The
// file is validated as a whole before any tab is touched, so a malformed
// save leaves the session exactly as it was.
func (s *Session) Load(r io.Reader) error {
	file, graphs, err := persist.Load(r)
	if err != nil {
		return err
	}
	tabs := make([]*Tab, len(graphs))
	for i, g := range graphs {
		eng, err := engine.FromGraph(g, s.reg, engine.WithLogger(s.log))
		if err != nil {
			return fmt.Errorf("%w: %v", persist.ErrMalformedSave, err)
		}
		eng.SetViewport(file.Sheets[i].Viewport)
		tabs[i] = &Tab{
			ID:     uuid.MustParse(file.Sheets[i].ID),
			Name:   file.Sheets[i].Name,
			Engine: eng,
		}
	}
	s.tabs = tabs
	s.active = 0
	return nil
}
