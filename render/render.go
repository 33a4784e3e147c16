// Package render turns sheet snapshots into static output. Renderers work
// from the engine's exported node and edge states, never the mutable store.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/TFMV/mindgraph/models"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, dot, json)
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Background string  // Background color
	NodeSize   float64 // Base node radius; scales with mass
	EdgeWidth  float64 // Edge stroke width
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
	ShowMarks  bool    // Show mark badges next to marked nodes
	Margin     float64 // Padding around the fitted drawing
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization from exported sheet state
	Render(nodes []models.NodeState, edges []models.EdgeState, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#f8f8f8",
		NodeSize:   12.0,
		EdgeWidth:  1.0,
		FontSize:   10.0,
		ShowLabels: true,
		ShowMarks:  true,
		Margin:     40.0,
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate renders exported sheet state in the given format with defaults.
func Generate(nodes []models.NodeState, edges []models.EdgeState, format string) ([]byte, error) {
	renderer, err := GetRenderer(format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(nodes, edges, NewDefaultOptions(format))
}

// fit maps simulation coordinates, which are centered on the sheet origin
// and unbounded, onto the output canvas.
type fit struct {
	minX, minY float64
	scale      float64
	margin     float64
}

func fitBounds(nodes []models.NodeState, options *OutputOptions) fit {
	f := fit{minX: 0, minY: 0, scale: 1, margin: options.Margin}
	if len(nodes) == 0 {
		return f
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	scale := 1.0
	if spanX > 0 || spanY > 0 {
		sx := (options.Width - 2*options.Margin) / math.Max(spanX, 1)
		sy := (options.Height - 2*options.Margin) / math.Max(spanY, 1)
		scale = math.Min(sx, sy)
		if scale > 1 {
			scale = 1
		}
	}
	return fit{minX: minX, minY: minY, scale: scale, margin: options.Margin}
}

func (f fit) point(x, y float64) (float64, float64) {
	return (x-f.minX)*f.scale + f.margin, (y-f.minY)*f.scale + f.margin
}

// SVGRenderer renders sheets as static vector graphics
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders sheets as Scalable Vector Graphics (SVG) for high-quality static output"
}

// Render creates an SVG representation of the sheet
func (r *SVGRenderer) Render(nodes []models.NodeState, edges []models.EdgeState, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	f := fitBounds(nodes, options)

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%f" height="%f" viewBox="0 0 %f %f" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, options.Background))

	for _, edge := range edges {
		ax, ay := f.point(edge.AX, edge.AY)
		bx, by := f.point(edge.BX, edge.BY)
		buf.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#666666" stroke-width="%f"/>
`, ax, ay, bx, by, options.EdgeWidth))
	}

	for _, node := range nodes {
		x, y := f.point(node.X, node.Y)
		radius := options.NodeSize * math.Sqrt(node.Mass/models.DefaultMass)

		fill := "#4285F4"
		switch {
		case node.Active:
			fill = "#EA4335"
		case node.Target:
			fill = "#FBBC05"
		case node.Matched:
			fill = "#34A853"
		case node.Root:
			fill = "#673AB7"
		}
		stroke := ""
		if node.Anchored {
			stroke = ` stroke="#202020" stroke-width="2"`
		}
		buf.WriteString(fmt.Sprintf(`<circle cx="%f" cy="%f" r="%f" fill="%s"%s/>
`, x, y, radius, fill, stroke))

		if options.ShowLabels && node.Label != "" {
			buf.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="sans-serif" font-size="%f" fill="#202020" text-anchor="middle">%s</text>
`, x, y+radius+options.FontSize, options.FontSize, html.EscapeString(node.Label)))
		}
		if options.ShowMarks && node.Mark != "" {
			buf.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="monospace" font-size="%f" fill="#B00020" text-anchor="middle">%s</text>
`, x+radius+options.FontSize/2, y-radius, options.FontSize, html.EscapeString(node.Mark)))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// DOTRenderer emits Graphviz DOT with pinned positions
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders sheets as Graphviz DOT with simulated positions pinned"
}

// Render creates a DOT representation of the sheet
func (r *DOTRenderer) Render(nodes []models.NodeState, edges []models.EdgeState, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("graph sheet {\n  layout=neato;\n  node [shape=circle];\n")

	for _, node := range nodes {
		label := node.Label
		if node.Mark != "" {
			label = fmt.Sprintf("%s [%s]", label, node.Mark)
		}
		attrs := fmt.Sprintf("label=%q, pos=\"%f,%f!\"", label, node.X/72, -node.Y/72)
		if node.Anchored {
			attrs += ", penwidth=2"
		}
		if node.Active {
			attrs += ", color=red"
		}
		buf.WriteString(fmt.Sprintf("  n%d [%s];\n", node.ID, attrs))
	}
	for _, edge := range edges {
		buf.WriteString(fmt.Sprintf("  n%d -- n%d;\n", edge.A, edge.B))
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// JSONRenderer emits the raw exported state for external tooling
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Exports sheet state as JSON for external tooling"
}

// Render creates a JSON representation of the sheet
func (r *JSONRenderer) Render(nodes []models.NodeState, edges []models.EdgeState, options *OutputOptions) ([]byte, error) {
	payload := struct {
		Nodes []models.NodeState `json:"nodes"`
		Edges []models.EdgeState `json:"edges"`
	}{Nodes: nodes, Edges: edges}
	return json.MarshalIndent(payload, "", "  ")
}
