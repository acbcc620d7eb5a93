package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/sim"
	"github.com/san-kum/robosim/internal/viz"
)

var ErrNoFrames = errors.New("export: no frames to draw")

type Point struct{ X, Y float64 }

// Path is one labelled polyline in field coordinates.
type Path struct {
	Label  string
	Color  string
	Points []Point
}

// RunPaths extracts the ball path and one path per robot from recorded
// frames, coloured from theme.
func RunPaths(frames []sim.Frame, theme viz.Theme) []Path {
	if len(frames) == 0 {
		return nil
	}
	ball := Path{Label: "ball", Color: string(theme.Ball)}
	robots := make([]Path, len(frames[0].Robots))
	for i, r := range frames[0].Robots {
		color := theme.Blue
		if r.Team == robot.Yellow {
			color = theme.Yellow
		}
		robots[i] = Path{Label: fmt.Sprintf("robot %d", r.ID), Color: string(color)}
	}

	for _, f := range frames {
		ball.Points = append(ball.Points, Point{f.Ball.X, f.Ball.Y})
		for i, r := range f.Robots {
			if i < len(robots) {
				robots[i].Points = append(robots[i].Points, Point{r.X, r.Y})
			}
		}
	}
	return append(robots, ball)
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func pathBounds(paths []Path) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, p := range paths {
		for _, pt := range p.Points {
			b.minX, b.maxX = math.Min(b.minX, pt.X), math.Max(b.maxX, pt.X)
			b.minY, b.maxY = math.Min(b.minY, pt.Y), math.Max(b.maxY, pt.Y)
			found = true
		}
	}
	return b, found
}

// TrajectorySVG draws paths centred on one field with equal scale on both
// axes and y pointing up. Each path gets a start dot and a label at its end.
func TrajectorySVG(w io.Writer, paths []Path, width, height int, background string) error {
	b, ok := pathBounds(paths)
	if !ok {
		return ErrNoFrames
	}

	// pad by 10% and at least a robot radius so still paths stay visible
	pad := math.Max(0.1*math.Max(b.maxX-b.minX, b.maxY-b.minY), 0.1)
	b.minX, b.maxX = b.minX-pad, b.maxX+pad
	b.minY, b.maxY = b.minY-pad, b.maxY+pad
	scale := math.Min(float64(width)/(b.maxX-b.minX), float64(height)/(b.maxY-b.minY))
	offX := (float64(width) - (b.maxX-b.minX)*scale) / 2
	offY := (float64(height) - (b.maxY-b.minY)*scale) / 2
	project := func(p Point) (float64, float64) {
		return offX + (p.X-b.minX)*scale, float64(height) - offY - (p.Y-b.minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		sb.WriteString(`<path fill="none" stroke="` + p.Color + `" stroke-width="1.5" d="`)
		for i, pt := range p.Points {
			x, y := project(pt)
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		x0, y0 := project(p.Points[0])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x0, y0, p.Color)
		x1, y1 := project(p.Points[len(p.Points)-1])
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"%s\" font-size=\"10\">%s</text>\n", x1+4, y1-4, p.Color, p.Label)
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write svg")
}

// RunSVG draws the recorded frames of a run in the current theme.
func RunSVG(w io.Writer, frames []sim.Frame, width, height int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	return TrajectorySVG(w, RunPaths(frames, viz.CurrentTheme), width, height, "#0a0a0a")
}
