package domain

import (
	"fmt"
	"strings"
)

// Unit is the measurement system for the target distance.
type Unit string

const (
	UnitYards  Unit = "yards"
	UnitMeters Unit = "meters"
)

// ParseUnit normalizes a user-supplied unit name.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yards", "yard", "yd":
		return UnitYards, nil
	case "meters", "meter", "m":
		return UnitMeters, nil
	}
	return "", fmt.Errorf("%w: unknown unit %q", ErrInvalidParameter, s)
}

// TargetRequest holds the validated parameters for one target. It is built
// once from the incoming form and never mutated afterwards.
type TargetRequest struct {
	Distance float64 // distance to the target, in Unit
	Unit     Unit
	MOA      float64 // angular size of one grid square, minutes of angle

	DiagonalThickness float64 // width of the diagonal aiming lines, inches
	QuadrantLabels    bool    // draw scope-adjustment labels and divider lines
	AimRings          int     // concentric rings around the grid center
}
