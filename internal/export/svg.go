// Package export renders beds and telemetry as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/regolith/internal/dynamo"
	"github.com/san-kum/regolith/internal/telemetry"
	"github.com/san-kum/regolith/internal/viz"
)

const (
	background = "#0a0a0a"
	grainFill  = "#c8c2b4"
	toolStroke = "#ffb347"
	// world padding around the bed, metres
	sceneMargin = 0.01
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a braille canvas to SVG, one dot per lit sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	cw, ch := canvas.Pixels()

	var sb strings.Builder
	header(&sb, float64(cw)*scale, float64(ch)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", grainFill)
	dotRadius := scale * 0.4
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG draws a flat view of a bed at true scale: grains as circles
// and the tool as the outline of its oriented box. half is the tool
// half-extent. View3D falls back to the side view.
func SnapshotToSVG(s dynamo.Snapshot, half mgl64.Vec3, view viz.View, width, height int) string {
	if view == viz.View3D {
		view = viz.ViewSide
	}
	f := viz.FrameFor(s, sceneMargin)
	scale := f.Scale(view, width, height)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	if view == viz.ViewSide {
		_, y := f.Project(mgl64.Vec3{}, view, width, height)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"#444466\"/>\n", y, width, y)
	}

	fmt.Fprintf(&sb, "<g fill=\"%s\" fill-opacity=\"0.8\">\n", grainFill)
	for i, p := range s.Positions {
		x, y := f.Project(p, view, width, height)
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.2f\"/>\n", x, y, s.Radii[i]*scale)
	}
	sb.WriteString("</g>\n")

	if s.HasTool {
		corners := viz.BoxCorners(s.ToolPosition, s.ToolRotation, half)
		fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1.5\">\n", toolStroke)
		for _, e := range viz.BoxEdges {
			x0, y0 := f.Project(corners[e[0]], view, width, height)
			x1, y1 := f.Project(corners[e[1]], view, width, height)
			fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", x0, y0, x1, y1)
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// TelemetryToSVG plots one telemetry field against time. It returns an error
// for unknown fields and an empty document for fewer than two samples.
func TelemetryToSVG(samples []telemetry.Sample, field string, width, height int, strokeColor string) (string, error) {
	values, err := telemetry.Series(samples, field)
	if err != nil {
		return "", err
	}
	times, err := telemetry.Series(samples, "time")
	if err != nil {
		return "", err
	}
	if len(values) < 2 {
		return "", nil
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := range values {
		minX, maxX = min(minX, times[i]), max(maxX, times[i])
		minY, maxY = min(minY, values[i]), max(maxY, values[i])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)
	for i := range values {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	fmt.Fprintf(&sb, "\"/>\n<text x=\"8\" y=\"16\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">%s</text>\n</svg>", field)
	return sb.String(), nil
}
