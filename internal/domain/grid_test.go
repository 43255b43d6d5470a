package domain

import (
	"errors"
	"math"
	"testing"
)

var letter = Page{WidthIn: 8.5, HeightIn: 11}

func defaultLayout() Layout {
	return Layout{MarginIn: 0.5, MinTickIn: 0.1}
}

func TestInchesPerMOA_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		unit     Unit
		moa      float64
		want     float64
	}{
		{name: "1 moa at 100 yards", distance: 100, unit: UnitYards, moa: 1, want: 1.047},
		{name: "quarter moa at 100 yards", distance: 100, unit: UnitYards, moa: 0.25, want: 0.262},
		{name: "1 moa at 200 yards", distance: 200, unit: UnitYards, moa: 1, want: 2.094},
		{name: "1 moa at 100 meters", distance: 100, unit: UnitMeters, moa: 1, want: 1.145},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := InchesPerMOA(tc.distance, tc.unit, tc.moa)
			if math.Abs(got-tc.want) > 0.001 {
				t.Fatalf("InchesPerMOA = %v, want about %v", got, tc.want)
			}
		})
	}
}

func TestInchesPerMOA_PositiveAndFinite(t *testing.T) {
	for _, d := range []float64{1, 25, 100, 600, 1000, 2000} {
		for _, moa := range []float64{0.125, 0.25, 0.5, 1, 2, 8} {
			got := InchesPerMOA(d, UnitYards, moa)
			if got <= 0 || math.IsInf(got, 0) || math.IsNaN(got) {
				t.Fatalf("InchesPerMOA(%v, yards, %v) = %v, want positive finite", d, moa, got)
			}
		}
	}
}

func TestNewGridSpec_TicksStayInsidePage(t *testing.T) {
	req := TargetRequest{Distance: 100, Unit: UnitYards, MOA: 1, DiagonalThickness: 0.125}
	spec, err := NewGridSpec(req, letter, defaultLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, x := range spec.XTicks {
		if x < spec.Margin-1e-9 || x > spec.PageWidth-spec.Margin+1e-9 {
			t.Fatalf("x tick %v outside printable area [%v, %v]", x, spec.Margin, spec.PageWidth-spec.Margin)
		}
	}
	for _, y := range spec.YTicks {
		if y < spec.Margin-1e-9 || y > spec.PageHeight-spec.Margin+1e-9 {
			t.Fatalf("y tick %v outside printable area [%v, %v]", y, spec.Margin, spec.PageHeight-spec.Margin)
		}
	}
}

func TestNewGridSpec_GridIsCenteredAndEven(t *testing.T) {
	req := TargetRequest{Distance: 100, Unit: UnitYards, MOA: 1}
	spec, err := NewGridSpec(req, letter, defaultLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if spec.Cols%2 != 0 || spec.Rows%2 != 0 {
		t.Fatalf("expected even grid, got %dx%d", spec.Cols, spec.Rows)
	}
	if spec.Cols != spec.Rows {
		t.Fatalf("expected square grid, got %dx%d", spec.Cols, spec.Rows)
	}
	gridMidX := (spec.GridLeft + spec.GridRight) / 2
	gridMidY := (spec.GridTop + spec.GridBottom) / 2
	if math.Abs(gridMidX-spec.CenterX) > 1e-9 || math.Abs(gridMidY-spec.CenterY) > 1e-9 {
		t.Fatalf("grid not centered: mid (%v, %v), center (%v, %v)", gridMidX, gridMidY, spec.CenterX, spec.CenterY)
	}
	// The page center must sit on a grid intersection.
	if math.Abs(spec.XTicks[spec.Cols/2]-spec.CenterX) > 1e-9 {
		t.Fatalf("center column off center: %v vs %v", spec.XTicks[spec.Cols/2], spec.CenterX)
	}
}

func TestNewGridSpec_ClampsFineSpacing(t *testing.T) {
	// 0.125 MOA at 25 yards is about 0.033 in per square, far below the floor.
	req := TargetRequest{Distance: 25, Unit: UnitYards, MOA: 0.125}
	spec, err := NewGridSpec(req, letter, defaultLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spec.Clamped {
		t.Fatalf("expected spacing to be clamped to the legibility floor")
	}
	if spec.TickInches != 0.1 {
		t.Fatalf("expected tick of 0.1 in, got %v", spec.TickInches)
	}
}

func TestNewGridSpec_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		req  TargetRequest
	}{
		{name: "zero distance", req: TargetRequest{Distance: 0, Unit: UnitYards, MOA: 1}},
		{name: "negative distance", req: TargetRequest{Distance: -100, Unit: UnitYards, MOA: 1}},
		{name: "zero moa", req: TargetRequest{Distance: 100, Unit: UnitYards, MOA: 0}},
		{name: "negative moa", req: TargetRequest{Distance: 100, Unit: UnitYards, MOA: -0.25}},
		{name: "nan distance", req: TargetRequest{Distance: math.NaN(), Unit: UnitYards, MOA: 1}},
		{name: "inf moa", req: TargetRequest{Distance: 100, Unit: UnitYards, MOA: math.Inf(1)}},
		{name: "bad unit", req: TargetRequest{Distance: 100, Unit: "furlongs", MOA: 1}},
		{name: "negative thickness", req: TargetRequest{Distance: 100, Unit: UnitYards, MOA: 1, DiagonalThickness: -1}},
		{name: "negative rings", req: TargetRequest{Distance: 100, Unit: UnitYards, MOA: 1, AimRings: -1}},
		{name: "spacing wider than page", req: TargetRequest{Distance: 1000, Unit: UnitYards, MOA: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := NewGridSpec(tc.req, letter, defaultLayout())
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			if spec != nil {
				t.Fatalf("expected nil spec on error")
			}
		})
	}
}

func TestNewGridSpec_RingRadiiStayInsideGrid(t *testing.T) {
	req := TargetRequest{Distance: 100, Unit: UnitYards, MOA: 2, AimRings: 50}
	spec, err := NewGridSpec(req, letter, defaultLayout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.RingRadii) == 0 {
		t.Fatalf("expected at least one ring")
	}
	half := (spec.GridRight - spec.GridLeft) / 2
	for _, r := range spec.RingRadii {
		if r <= 0 || r > half+1e-9 {
			t.Fatalf("ring radius %v outside (0, %v]", r, half)
		}
	}
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{
		"":       UnitYards,
		"yards":  UnitYards,
		"YD":     UnitYards,
		"meters": UnitMeters,
		"m":      UnitMeters,
	} {
		got, err := ParseUnit(in)
		if err != nil || got != want {
			t.Fatalf("ParseUnit(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseUnit("cubits"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for unknown unit, got %v", err)
	}
}
