// Package export draws episode traces as image files with gonum/plot.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/cruisectl/internal/episode"
)

var ErrFormat = errors.New("export: unsupported image format")

var (
	egoColor     = color.RGBA{R: 0x1f, G: 0x9d, B: 0x55, A: 0xff}
	desiredColor = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	leadColor    = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	gapColor     = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	commandColor = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
)

var formats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"svg": true, "pdf": true, "eps": true,
}

type Options struct {
	Width, Height vg.Length
	// DistanceThreshold draws a reference line on the gap panel when > 0.
	DistanceThreshold float64
}

func DefaultOptions() Options {
	return Options{Width: 10 * vg.Inch, Height: 8 * vg.Inch}
}

// Save infers the format from the file extension.
func Save(path string, tr *episode.Trace, opts Options) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[format] {
		return fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTo(f, format, tr, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo renders the stacked panels: speeds, gap and, when the trace has
// them, commands.
func WriteTo(w io.Writer, format string, tr *episode.Trace, opts Options) error {
	if !formats[format] {
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if len(tr.Rows) == 0 {
		return errors.New("export: empty trace")
	}

	panels, err := Panels(tr, opts)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(opts.Width, opts.Height, format)
	if err != nil {
		return err
	}
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadY: vg.Millimeter * 4,
		PadX: vg.Millimeter * 4,
	}
	canvases := plot.Align(panels, tiles, draw.New(c))
	for i := range panels {
		panels[i][0].Draw(canvases[i][0])
	}

	_, err = c.WriteTo(w)
	return err
}

// Panels builds one plot per row, laid out for plot.Align.
func Panels(tr *episode.Trace, opts Options) ([][]*plot.Plot, error) {
	times := make([]float64, len(tr.Rows))
	for i := range times {
		times[i] = tr.Time(i)
	}

	speed := newPanel(tr.Name, "speed (m/s)")
	series := []struct {
		name   string
		col    func(episode.TraceRow) float64
		color  color.Color
		dashed bool
	}{
		{"ego", episode.EgoVelocity, egoColor, false},
		{"desired", episode.TargetSpeed, desiredColor, true},
		{"lead", episode.LeadVelocity, leadColor, false},
	}
	for _, s := range series {
		l, err := line(times, tr.Series(s.col), s.color)
		if err != nil {
			return nil, err
		}
		if s.dashed {
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		speed.Add(l)
		speed.Legend.Add(s.name, l)
	}

	gap := newPanel("", "distance to lead (m)")
	for _, seg := range segments(times, tr.Series(episode.DistanceToLead)) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return nil, err
		}
		l.Color = gapColor
		gap.Add(l)
	}
	if opts.DistanceThreshold > 0 {
		ref, err := line([]float64{0, tr.Duration()}, []float64{opts.DistanceThreshold, opts.DistanceThreshold}, desiredColor)
		if err != nil {
			return nil, err
		}
		ref.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		gap.Add(ref)
		gap.Legend.Add("threshold", ref)
	}

	panels := [][]*plot.Plot{{speed}, {gap}}

	if len(tr.Commands) > 0 {
		cmd := newPanel("", "command (m/s²)")
		l, err := line(times[:len(tr.Commands)], tr.Commands, commandColor)
		if err != nil {
			return nil, err
		}
		cmd.Add(l)
		panels = append(panels, []*plot.Plot{cmd})
	}

	panels[len(panels)-1][0].X.Label.Text = "time (s)"
	return panels, nil
}

func newPanel(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func line(xs, ys []float64, c color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = vg.Points(1.5)
	return l, nil
}

// segments splits a series at NaN so ticks without a lead leave a hole.
func segments(xs, ys []float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i := range xs {
		if math.IsNaN(ys[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
