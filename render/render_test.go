package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/mindgraph/engine"
	"github.com/TFMV/mindgraph/models"
)

func sampleSheet(t *testing.T) ([]models.NodeState, []models.EdgeState) {
	t.Helper()
	e := engine.New(nil)
	a, err := e.AddChild(e.Graph().DefaultRoot(), "child & friend")
	require.NoError(t, err)
	require.NoError(t, e.SetMark(a, "m"))
	for i := 0; i < 200 && !e.Settled(); i++ {
		e.Tick()
	}
	return e.Snapshot(), e.EdgeStates()
}

func TestGetRenderer(t *testing.T) {
	for _, format := range []string{"svg", "SVG", "dot", "json"} {
		r, err := GetRenderer(format)
		require.NoError(t, err)
		assert.NotEmpty(t, r.Name())
		assert.NotEmpty(t, r.Description())
	}
	_, err := GetRenderer("webgl")
	assert.Error(t, err)
}

func TestSVGOutput(t *testing.T) {
	nodes, edges := sampleSheet(t)
	out, err := Generate(nodes, edges, "svg")
	require.NoError(t, err)

	svg := string(out)
	assert.True(t, strings.HasPrefix(svg, `<?xml`))
	assert.Contains(t, svg, "<circle")
	assert.Contains(t, svg, "<line")
	assert.Contains(t, svg, "child &amp; friend", "labels must be escaped")
	assert.Contains(t, svg, ">m</text>", "mark badge")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
}

func TestDOTOutput(t *testing.T) {
	nodes, edges := sampleSheet(t)
	out, err := Generate(nodes, edges, "dot")
	require.NoError(t, err)

	dot := string(out)
	assert.True(t, strings.HasPrefix(dot, "graph sheet {"))
	assert.Contains(t, dot, "n0 -- n1")
	assert.Contains(t, dot, "[m]", "marks land in the label")
}

func TestJSONOutput(t *testing.T) {
	nodes, edges := sampleSheet(t)
	out, err := Generate(nodes, edges, "json")
	require.NoError(t, err)

	var payload struct {
		Nodes []models.NodeState `json:"nodes"`
		Edges []models.EdgeState `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.Len(t, payload.Nodes, 2)
	assert.Len(t, payload.Edges, 1)
}

func TestEmptySheetRenders(t *testing.T) {
	out, err := Generate(nil, nil, "svg")
	require.NoError(t, err)
	assert.Contains(t, string(out), "</svg>")
}
