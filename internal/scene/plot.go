package scene

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrUnsupportedPlotFormat is returned for an image format the plot backends
// cannot encode.
var ErrUnsupportedPlotFormat = errors.New("unsupported plot format")

var plotFormats = map[string]bool{
	"eps": true, "jpg": true, "jpeg": true, "pdf": true, "png": true,
	"svg": true, "tex": true, "tif": true, "tiff": true,
}

// TrajectoryFormat returns the image format implied by the extension of path,
// png when there is none.
func TrajectoryFormat(path string) string {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return "png"
	}
	return format
}

// RenderTrajectory draws the camera centres of d projected onto the world X/Y
// plane, in frame order, and returns the encoded image.
func RenderTrajectory(d *Description, format string) ([]byte, error) {
	if len(d.Frames) == 0 {
		return nil, ErrNoImages
	}
	if !plotFormats[format] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlotFormat, format)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Camera trajectory (%d frames)", len(d.Frames))
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	pts := make(plotter.XYs, 0, len(d.Frames))
	for _, f := range d.Frames {
		c := f.TransformMatrix.Translation()
		pts = append(pts, plotter.XY{X: c.X, Y: c.Y})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create trajectory line: %w", err)
	}
	line.Width = vg.Points(1)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(plotter.NewGrid(), line, scatter)

	w, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, format)
	if err != nil {
		return nil, fmt.Errorf("failed to render trajectory plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render trajectory plot: %w", err)
	}
	return buf.Bytes(), nil
}
