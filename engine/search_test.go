package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	apple, _ := e.AddChild(root, "Apple Pie")
	grape, _ := e.AddChild(root, "grapefruit")
	_, _ = e.AddChild(root, "banana")

	matches, sole := e.Search("APE")
	assert.False(t, sole)
	assert.Equal(t, []uint32{grape}, matches)

	matches, sole = e.Search("apple")
	assert.True(t, sole)
	assert.Equal(t, []uint32{apple}, matches)

	matches, sole = e.Search("zzz")
	assert.False(t, sole)
	assert.Empty(t, matches)
}

func TestSearchResultsInCreationOrder(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	first, _ := e.AddChild(root, "task one")
	second, _ := e.AddChild(first, "task two")
	third, _ := e.AddChild(root, "task three")

	matches, _ := e.Search("task")
	assert.Equal(t, []uint32{first, second, third}, matches)
}

func TestSearchMatchesPurgedOnDelete(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "note")
	b, _ := e.AddChild(root, "note again")

	matches, _ := e.Search("note")
	require.Len(t, matches, 2)

	_, err := e.DeleteSubtree(a)
	require.NoError(t, err)
	assert.Equal(t, []uint32{b}, e.Matches(),
		"deleted nodes must leave the match set in the same mutation")
}

func TestMatchedFlagInSnapshot(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "findme")
	_, _ = e.Search("findme")

	for _, state := range e.Snapshot() {
		assert.Equal(t, state.ID == a, state.Matched)
	}

	e.ClearSearch()
	for _, state := range e.Snapshot() {
		assert.False(t, state.Matched)
	}
}

func TestSetMarkAndJump(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")

	require.NoError(t, e.SetMark(a, "q"))
	holder, ok := e.NodeByMark("q")
	require.True(t, ok)
	assert.Equal(t, a, holder)

	require.NoError(t, e.ActivateByMark("q"))
	active, _ := e.Active()
	assert.Equal(t, a, active)

	assert.ErrorIs(t, e.ActivateByMark("z"), ErrNotFound)
}

func TestMarkRules(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")

	assert.ErrorIs(t, e.SetMark(root, "q"), ErrInvariantViolation, "root marks are reserved")
	assert.ErrorIs(t, e.SetMark(a, "7"), ErrInvariantViolation, "numerals are reserved")
	assert.ErrorIs(t, e.SetMark(a, "ab"), ErrInvariantViolation, "multi-character")
	assert.ErrorIs(t, e.SetMark(999, "q"), ErrNotFound)
}

func TestMarkIsBijective(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")
	b, _ := e.AddChild(root, "b")

	require.NoError(t, e.SetMark(a, "q"))
	require.NoError(t, e.SetMark(b, "q"))

	holder, ok := e.NodeByMark("q")
	require.True(t, ok)
	assert.Equal(t, b, holder)
	na, _ := e.Graph().Node(a)
	assert.Empty(t, na.Mark, "reassignment clears the previous holder")
}

func TestClearMark(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")
	require.NoError(t, e.SetMark(a, "q"))
	require.NoError(t, e.ClearMark(a))
	_, ok := e.NodeByMark("q")
	assert.False(t, ok)
}

func TestNumeralMarksResolvable(t *testing.T) {
	e := New(nil)
	ext, _ := e.AddExternal("island", 400, 0)

	holder, ok := e.NodeByMark("1")
	require.True(t, ok)
	assert.Equal(t, ext, holder)

	holder, ok = e.NodeByMark("0")
	require.True(t, ok)
	assert.Equal(t, e.Graph().DefaultRoot(), holder)
}

func TestCycleTargetWalksNeighbors(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	children := make(map[uint32]struct{})
	for _, label := range []string{"a", "b", "c"} {
		id, err := e.AddChild(root, label)
		require.NoError(t, err)
		children[id] = struct{}{}
	}
	require.NoError(t, e.SetActive(root))

	seen := make(map[uint32]struct{})
	cur, ok := e.Target()
	require.True(t, ok)
	seen[cur] = struct{}{}
	for i := 0; i < 2; i++ {
		cur, ok = e.CycleTarget(1)
		require.True(t, ok)
		seen[cur] = struct{}{}
	}
	assert.Equal(t, children, seen, "cycling visits every neighbor exactly once per lap")

	// One more step wraps around.
	wrapped, _ := e.CycleTarget(1)
	_, wasSeen := seen[wrapped]
	assert.True(t, wasSeen)
}

func TestActivateTargetMovesCursor(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")
	require.NoError(t, e.SetActive(root))

	target, ok := e.Target()
	require.True(t, ok)
	require.Equal(t, a, target)

	moved, ok := e.ActivateTarget()
	require.True(t, ok)
	assert.Equal(t, a, moved)
	active, _ := e.Active()
	assert.Equal(t, a, active)

	// From the leaf the only way is back.
	back, ok := e.Target()
	require.True(t, ok)
	assert.Equal(t, root, back)
}

func TestSnapshotFlags(t *testing.T) {
	e := New(nil)
	root := e.Graph().DefaultRoot()
	a, _ := e.AddChild(root, "a")
	require.NoError(t, e.SetActive(root))

	for _, state := range e.Snapshot() {
		switch state.ID {
		case root:
			assert.True(t, state.Root)
			assert.True(t, state.Active)
		case a:
			assert.False(t, state.Root)
			assert.True(t, state.Target)
		}
	}

	edges := e.EdgeStates()
	require.Len(t, edges, 1)
	assert.Equal(t, root, edges[0].A)
	assert.Equal(t, a, edges[0].B)
}
