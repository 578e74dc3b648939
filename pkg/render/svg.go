package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
)

const svgMargin = 40.0

// WriteSVG writes a static export of the scene. The viewport transform is ignored:
// the export is framed around the bounding box of all nodes.
func WriteSVG(w io.Writer, scene Scene) error {
	minX, minY, maxX, maxY := bounds(scene)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		minX-svgMargin, minY-svgMargin, maxX-minX+2*svgMargin, maxY-minY+2*svgMargin)

	for _, e := range scene.Edges {
		fmt.Fprintf(&buf, `  <path d="%s" fill="none" stroke="#64748b" stroke-width="2"/>`+"\n", e.Path)
	}
	for _, n := range scene.Nodes {
		fill := n.Color
		if fill == "" {
			fill = kindColor(string(n.Kind))
		}
		fmt.Fprintf(&buf, `  <g id="%s">`+"\n", escape(n.ID))
		fmt.Fprintf(&buf, `    <rect x="%g" y="%g" width="%g" height="%g" rx="8" fill="%s" fill-opacity="0.15" stroke="%s"/>`+"\n",
			n.Position.X, n.Position.Y, n.Size.W, n.Size.H, escape(fill), escape(fill))
		fmt.Fprintf(&buf, `    <text x="%g" y="%g" font-family="sans-serif" font-size="14" font-weight="bold">%s</text>`+"\n",
			n.Position.X+12, n.Position.Y+24, escape(n.Title))
		if body := bodyLine(n.Body); body != "" {
			fmt.Fprintf(&buf, `    <text x="%g" y="%g" font-family="sans-serif" font-size="12">%s</text>`+"\n",
				n.Position.X+12, n.Position.Y+48, escape(body))
		}
		for _, p := range n.Ports {
			fmt.Fprintf(&buf, `    <circle cx="%g" cy="%g" r="6" fill="#fff" stroke="#334155"/>`+"\n", p.Anchor.X, p.Anchor.Y)
		}
		buf.WriteString("  </g>\n")
	}
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func bounds(scene Scene) (minX, minY, maxX, maxY float64) {
	if len(scene.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range scene.Nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+n.Size.W)
		maxY = math.Max(maxY, n.Position.Y+n.Size.H)
	}
	return minX, minY, maxX, maxY
}

func bodyLine(b Body) string {
	switch {
	case b.Badge != "":
		return b.Badge + " " + b.Text
	case b.Department != "":
		return b.Department
	case len(b.Chips) > 0:
		return fmt.Sprint(b.Chips)
	default:
		return Truncate(b.Text, DefaultPreviewRunes)
	}
}

func kindColor(kind string) string {
	switch kind {
	case "welcome":
		return "#22c55e"
	case "intent":
		return "#3b82f6"
	case "handoff":
		return "#f97316"
	case "condition":
		return "#a855f7"
	default:
		return "#0ea5e9"
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
