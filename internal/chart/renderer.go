// Package chart draws grouped height series as line charts with go-chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"familymeter/internal/config"
	"familymeter/internal/grouping"
)

// ErrNoSeries is returned for a group without any observation to draw.
var ErrNoSeries = errors.New("group has no observations to draw")

// Format selects the output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Renderer turns groups into charts using the configured presentation.
type Renderer struct {
	cfg config.ChartConfig
}

// NewRenderer creates a renderer.
func NewRenderer(cfg config.ChartConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// RenderSVG renders g as an SVG document.
func (r *Renderer) RenderSVG(g *grouping.Group) ([]byte, error) {
	return r.Render(g, FormatSVG)
}

// Render renders g in the given format. One line with markers is drawn per
// series that has at least one point.
func (r *Renderer) Render(g *grouping.Group, format Format) ([]byte, error) {
	// go-chart writes SVG text nodes verbatim
	provider, label := gochart.SVG, html.EscapeString
	if format == FormatPNG {
		provider, label = gochart.PNG, identity
	}

	ch, err := r.build(g, label)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render chart %q: %w", g.Key, err)
	}
	return buf.Bytes(), nil
}

func identity(s string) string { return s }

func (r *Renderer) build(g *grouping.Group, label func(string) string) (*gochart.Chart, error) {
	series := make([]gochart.Series, 0, len(g.Series))
	xr := newBounds()
	yr := newBounds()

	for _, s := range g.Series {
		if s.Len() == 0 {
			continue
		}
		xs, ys := s.Ages, s.Heights
		// a single point would give the series a zero-width x range
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0]}
			ys = []float64{ys[0], ys[0]}
		}
		for i := range xs {
			xr.add(xs[i])
			yr.add(ys[i])
		}

		color := gochart.GetDefaultColor(len(series))
		series = append(series, gochart.ContinuousSeries{
			Name:    label(s.Name),
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeWidth: r.cfg.StrokeWidth,
				StrokeColor: color,
				DotWidth:    r.cfg.DotWidth,
				DotColor:    color,
			},
		})
	}

	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	ch := &gochart.Chart{
		Title:      label(g.Title),
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  label(r.cfg.XAxisLabel),
			Range: xr.rangeOf(),
		},
		YAxis: gochart.YAxis{
			Name:  label(r.cfg.YAxisLabel),
			Range: yr.rangeOf(),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

type bounds struct {
	min, max float64
}

func newBounds() *bounds {
	return &bounds{min: math.MaxFloat64, max: -math.MaxFloat64}
}

func (b *bounds) add(v float64) {
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

// rangeOf returns the axis range, widened by one unit on each side when
// every value is the same.
func (b *bounds) rangeOf() *gochart.ContinuousRange {
	if b.max <= b.min {
		return &gochart.ContinuousRange{Min: b.min - 1, Max: b.max + 1}
	}
	return &gochart.ContinuousRange{Min: b.min, Max: b.max}
}
