package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/regolith/internal/telemetry"
)

type Point struct{ X, Y float64 }

// Scatter pairs two telemetry columns sample by sample.
type Scatter struct {
	XField, YField string
	Points         []Point
}

func NewScatter(samples []telemetry.Sample, xField, yField string) (*Scatter, error) {
	xs, err := telemetry.Series(samples, xField)
	if err != nil {
		return nil, err
	}
	ys, err := telemetry.Series(samples, yField)
	if err != nil {
		return nil, err
	}
	sc := &Scatter{XField: xField, YField: yField, Points: make([]Point, len(xs))}
	for i := range xs {
		sc.Points[i] = Point{xs[i], ys[i]}
	}
	return sc, nil
}

// Bounds returns the padded data range, never empty on either axis.
func (s *Scatter) Bounds() (minX, maxX, minY, maxY float64) {
	if len(s.Points) == 0 {
		return 0, 1, 0, 1
	}
	minX, maxX = s.Points[0].X, s.Points[0].X
	minY, maxY = s.Points[0].Y, s.Points[0].Y
	for _, p := range s.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ASCII plots the points oldest to newest as '.', 'o' and '●' by thirds of
// the run, with axes where zero is in range.
func (s *Scatter) ASCII(width, height int) string {
	if len(s.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	minX, maxX, minY, maxY := s.Bounds()
	rangeX := maxX - minX
	rangeY := maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			canvas[r][c] = '─'
		}
	}

	marks := []rune{'.', 'o', '●'}
	for i, p := range s.Points {
		canvas[row(p.Y)][col(p.X)] = marks[i*len(marks)/len(s.Points)]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s vs %s\n", s.YField, s.XField)
	fmt.Fprintf(&sb, "%10.3g ┐\n", maxY)
	for _, r := range canvas {
		sb.WriteString("           ")
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	fmt.Fprintf(&sb, "%10.3g ┘%*s\n", minY, width, fmt.Sprintf("%.3g .. %.3g", minX, maxX))
	return sb.String()
}
