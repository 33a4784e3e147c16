package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/mindgraph/persist"
)

func TestNewSessionHasOneTab(t *testing.T) {
	s := New()
	require.Len(t, s.Tabs(), 1)
	assert.Equal(t, s.Tabs()[0], s.Active())
	assert.Equal(t, 1, s.Active().Engine.Graph().Len())
}

func TestTabCycling(t *testing.T) {
	s := New()
	s.NewTab("second")
	s.NewTab("third")
	require.NoError(t, s.Select(0))

	assert.Equal(t, "second", s.Next().Name)
	assert.Equal(t, "third", s.Next().Name)
	assert.Equal(t, "untitled", s.Next().Name)
	assert.Equal(t, "third", s.Prev().Name)
}

func TestCloseTab(t *testing.T) {
	s := New()
	s.NewTab("second")
	require.NoError(t, s.CloseTab(1))
	require.Len(t, s.Tabs(), 1)

	assert.Error(t, s.CloseTab(0), "the last tab stays open")
	assert.Error(t, s.CloseTab(5))
}

func TestRegisterSharedAcrossTabs(t *testing.T) {
	s := New()
	src := s.Active().Engine
	root := src.Graph().DefaultRoot()
	a, err := src.AddChild(root, "shared")
	require.NoError(t, err)
	require.NoError(t, src.YankSubtree(a))

	dst := s.NewTab("destination").Engine
	clip, err := dst.Register().Get()
	require.NoError(t, err)

	graft, err := dst.Attach(clip, dst.Graph().DefaultRoot())
	require.NoError(t, err)
	n, _ := dst.Graph().Node(graft)
	assert.Equal(t, "shared", n.Label)

	// The copy went by value: the source node is untouched and later edits
	// in the destination do not reach back.
	require.NoError(t, dst.SetLabel(graft, "renamed"))
	sn, _ := src.Graph().Node(a)
	assert.Equal(t, "shared", sn.Label)
}

func TestPasteAsNewTab(t *testing.T) {
	s := New()
	src := s.Active().Engine
	root := src.Graph().DefaultRoot()
	a, _ := src.AddChild(root, "trunk")
	b, _ := src.AddChild(a, "branch")
	require.NoError(t, src.YankSubtree(a))

	tab, err := s.PasteAsNewTab("extracted")
	require.NoError(t, err)
	assert.Equal(t, tab, s.Active())

	g := tab.Engine.Graph()
	assert.Equal(t, 2, g.Len())
	rn, _ := g.Node(g.DefaultRoot())
	assert.Equal(t, "trunk", rn.Label)

	// Source keeps both nodes; yanking copies.
	_, ok := src.Graph().Node(b)
	assert.True(t, ok)
}

func TestPasteAsNewTabEmptyRegister(t *testing.T) {
	s := New()
	_, err := s.PasteAsNewTab("nothing")
	require.Error(t, err)
	assert.Len(t, s.Tabs(), 1)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	src := s.Active().Engine
	a, _ := src.AddChild(src.Graph().DefaultRoot(), "a")
	_, _ = src.AddChild(a, "b")
	s.NewTab("second")
	_, err := s.Tabs()[1].Engine.AddExternal("island", 300, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	restored := New()
	require.NoError(t, restored.Load(&buf))
	require.Len(t, restored.Tabs(), 2)
	assert.Equal(t, s.Tabs()[0].ID, restored.Tabs()[0].ID)
	assert.Equal(t, "second", restored.Tabs()[1].Name)
	assert.Equal(t, 3, restored.Tabs()[0].Engine.Graph().Len())
	assert.Len(t, restored.Tabs()[1].Engine.Graph().Externals(), 1)
}

func TestLoadRejectsMalformedWithoutClobbering(t *testing.T) {
	s := New()
	s.NewTab("precious")

	err := s.Load(bytes.NewReader([]byte(`{"version":1,"sheets":[]}`)))
	require.ErrorIs(t, err, persist.ErrMalformedSave)
	assert.Len(t, s.Tabs(), 2, "a failed load leaves the session untouched")
}
