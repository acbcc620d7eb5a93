package export

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Series is one named column against time.
type Series struct {
	Name string
	X, Y []float64
}

var seriesColors = []color.RGBA{
	{R: 0x33, G: 0x99, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x88, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xcc, B: 0x66, A: 0xff},
	{R: 0xcc, G: 0x33, B: 0x99, A: 0xff},
}

// SeriesPNG plots every series on one set of axes and writes the image as
// PNG.
func SeriesPNG(w io.Writer, title string, series []Series) error {
	if len(series) == 0 {
		return ErrNoFrames
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Title.TextStyle.Font.Size = vg.Points(14)

	for i, s := range series {
		if len(s.X) != len(s.Y) || len(s.X) == 0 {
			return errors.Errorf("series %s: %d times for %d values", s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j].X, pts[j].Y = s.X[j], s.Y[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "series %s", s.Name)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = seriesColors[i%len(seriesColors)]
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "render plot")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "write png")
}
