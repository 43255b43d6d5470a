package domain

import (
	"fmt"
	"math"
)

// PointsPerInch is the PDF unit scale: 72 points to the inch.
const PointsPerInch = 72.0

// metersPerYard is the exact international conversion factor.
const metersPerYard = 0.9144

// Page is a paper size in inches, portrait orientation.
type Page struct {
	WidthIn  float64
	HeightIn float64
}

// Layout bounds the derived grid independent of the request.
type Layout struct {
	MarginIn  float64 // unprintable border on every side
	MinTickIn float64 // legibility floor for the tick spacing
}

// GridSpec is the fully derived page layout consumed by the renderer.
// All coordinates are in points with the origin at the top-left corner of
// the page and y increasing downward, matching the drawing backend.
type GridSpec struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64

	CenterX float64
	CenterY float64

	TickInches float64 // linear size of one grid square on paper
	TickPoints float64
	Clamped    bool // spacing was raised to the legibility floor

	Rows int
	Cols int

	XTicks []float64 // vertical grid line positions
	YTicks []float64 // horizontal grid line positions

	GridLeft   float64
	GridTop    float64
	GridRight  float64
	GridBottom float64

	DiagonalWidth  float64 // points
	QuadrantLabels bool
	RingRadii      []float64 // points, smallest first

	// Request echoes for captions and document metadata.
	Distance float64
	Unit     Unit
	MOA      float64
}

// InchesPerMOA returns the linear subtension on paper, in inches, of moa
// minutes of angle at the given distance.
func InchesPerMOA(distance float64, unit Unit, moa float64) float64 {
	yards := distance
	if unit == UnitMeters {
		yards = distance / metersPerYard
	}
	inches := yards * 36
	return inches * (moa / 60) * (math.Pi / 180)
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// NewGridSpec derives the complete grid layout for req on the given page.
// The grid is square, centered, and always fits inside the printable area.
// Spacing finer than layout.MinTickIn is clamped to the floor, producing
// fewer, coarser squares instead of an illegible grid.
func NewGridSpec(req TargetRequest, page Page, layout Layout) (*GridSpec, error) {
	if !positiveFinite(req.Distance) {
		return nil, fmt.Errorf("%w: distance must be positive, got %v", ErrInvalidParameter, req.Distance)
	}
	if !positiveFinite(req.MOA) {
		return nil, fmt.Errorf("%w: moa must be positive, got %v", ErrInvalidParameter, req.MOA)
	}
	if req.Unit != UnitYards && req.Unit != UnitMeters {
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidParameter, req.Unit)
	}
	if req.DiagonalThickness < 0 || math.IsInf(req.DiagonalThickness, 1) || math.IsNaN(req.DiagonalThickness) {
		return nil, fmt.Errorf("%w: diagonal thickness must be non-negative, got %v", ErrInvalidParameter, req.DiagonalThickness)
	}
	if req.AimRings < 0 {
		return nil, fmt.Errorf("%w: aim rings must be non-negative, got %d", ErrInvalidParameter, req.AimRings)
	}
	if !positiveFinite(page.WidthIn) || !positiveFinite(page.HeightIn) {
		return nil, fmt.Errorf("%w: page size %vx%v in", ErrInvalidParameter, page.WidthIn, page.HeightIn)
	}

	margin := layout.MarginIn
	if margin < 0 {
		margin = 0
	}
	availW := page.WidthIn - 2*margin
	availH := page.HeightIn - 2*margin
	if availW <= 0 || availH <= 0 {
		return nil, fmt.Errorf("%w: margin %v in leaves no printable area", ErrInvalidParameter, margin)
	}

	tick := InchesPerMOA(req.Distance, req.Unit, req.MOA)
	clamped := false
	if layout.MinTickIn > 0 && tick < layout.MinTickIn {
		tick = layout.MinTickIn
		clamped = true
	}

	avail := math.Min(availW, availH)
	cols := int(avail / tick)
	cols -= cols % 2 // keep the center on a grid line
	if cols < 2 {
		return nil, fmt.Errorf("%w: %v MOA at %v %s needs %.1f in per square, more than the %.1f in printable area",
			ErrInvalidParameter, req.MOA, req.Distance, req.Unit, tick, avail)
	}
	rows := cols

	spec := &GridSpec{
		PageWidth:  page.WidthIn * PointsPerInch,
		PageHeight: page.HeightIn * PointsPerInch,
		Margin:     margin * PointsPerInch,

		TickInches: tick,
		TickPoints: tick * PointsPerInch,
		Clamped:    clamped,

		Rows: rows,
		Cols: cols,

		DiagonalWidth:  req.DiagonalThickness * PointsPerInch,
		QuadrantLabels: req.QuadrantLabels,

		Distance: req.Distance,
		Unit:     req.Unit,
		MOA:      req.MOA,
	}
	spec.CenterX = spec.PageWidth / 2
	spec.CenterY = spec.PageHeight / 2

	gridPts := float64(cols) * spec.TickPoints
	spec.GridLeft = spec.CenterX - gridPts/2
	spec.GridRight = spec.CenterX + gridPts/2
	spec.GridTop = spec.CenterY - gridPts/2
	spec.GridBottom = spec.CenterY + gridPts/2

	spec.XTicks = make([]float64, cols+1)
	for i := 0; i <= cols; i++ {
		spec.XTicks[i] = spec.GridLeft + float64(i)*spec.TickPoints
	}
	spec.YTicks = make([]float64, rows+1)
	for i := 0; i <= rows; i++ {
		spec.YTicks[i] = spec.GridTop + float64(i)*spec.TickPoints
	}

	for k := 1; k <= req.AimRings; k++ {
		r := float64(k) * spec.TickPoints
		if r > gridPts/2 {
			break
		}
		spec.RingRadii = append(spec.RingRadii, r)
	}

	return spec, nil
}
