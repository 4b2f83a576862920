package render

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/samirrijal/parcelarea/internal/core/domain"
)

const (
	margin      = 48.0
	titleHeight = 32.0
	markerSize  = 3.5
	labelOffset = 5.0
)

// Plotter implements ports.PlotRenderer with the gg software rasterizer.
type Plotter struct {
	width, height int
	font          *text.FontSource
}

// NewPlotter creates a plotter drawing on a width x height canvas.
func NewPlotter(width, height int) (*Plotter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Plotter{width: width, height: height, font: src}, nil
}

// Size returns the canvas dimensions in pixels.
func (p *Plotter) Size() (width, height int) {
	return p.width, p.height
}

// Render draws the boundary polygon with its vertex labels and the area as
// title, and returns the PNG encoding.
func (p *Plotter) Render(ctx context.Context, result *domain.AreaResult) ([]byte, error) {
	if len(result.Coordinates) == 0 {
		return nil, domain.ErrEmptyBoundary
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(p.width, p.height)
	defer dc.Close()

	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, float64(p.width), float64(p.height))
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	project := p.projection(result.Coordinates)

	for i, c := range result.Coordinates {
		x, y := project(c.Easting, c.Northing)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetRGBA(0.12, 0.47, 0.71, 0.3)
	if err := dc.FillPreserve(); err != nil {
		return nil, fmt.Errorf("fill polygon: %w", err)
	}
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("stroke polygon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dc.SetFont(p.font.Face(12))
	// the closing vertex repeats the first; label it once
	vertices := result.Coordinates
	if n := len(vertices); n > 1 && vertices[0] == vertices[n-1] {
		vertices = vertices[:n-1]
	}
	for _, c := range vertices {
		x, y := project(c.Easting, c.Northing)
		dc.SetRGB(0.84, 0.15, 0.16)
		dc.DrawCircle(x, y, markerSize)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("vertex marker: %w", err)
		}
		dc.SetRGB(0, 0, 0)
		dc.DrawString(c.Name, x+labelOffset, y-labelOffset)
	}

	dc.SetFont(p.font.Face(16))
	dc.DrawStringAnchored(fmt.Sprintf("Area: %.3f sqm", result.AreaSqm), float64(p.width)/2, titleHeight/2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// projection maps survey coordinates onto the canvas with equal axis
// scaling, northing up, centred in the area below the title.
func (p *Plotter) projection(ring []domain.LabeledCoordinate) func(e, n float64) (float64, float64) {
	minE, minN := math.Inf(1), math.Inf(1)
	maxE, maxN := math.Inf(-1), math.Inf(-1)
	for _, c := range ring {
		minE, maxE = math.Min(minE, c.Easting), math.Max(maxE, c.Easting)
		minN, maxN = math.Min(minN, c.Northing), math.Max(maxN, c.Northing)
	}

	plotW := float64(p.width) - 2*margin
	plotH := float64(p.height) - 2*margin - titleHeight
	spanE, spanN := maxE-minE, maxN-minN

	scale := math.Inf(1)
	if spanE > 0 {
		scale = plotW / spanE
	}
	if spanN > 0 {
		scale = math.Min(scale, plotH/spanN)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	offX := margin + (plotW-spanE*scale)/2
	offY := margin + titleHeight + (plotH-spanN*scale)/2
	return func(e, n float64) (float64, float64) {
		return offX + (e-minE)*scale, offY + (maxN-n)*scale
	}
}
