// Package boundary implements the horizontal and vertical boundary
// calculators: reflecting/restoring in the horizontal, reflecting/
// absorbing-bottom in the vertical (spec §4.F).
package boundary

import "github.com/oceanmodel/lagtrack/mesh"

// Horizontal corrects a tentative position that crossed a land edge. It is
// given the pre-step position (already known to be a valid host), the
// tentative post-step position, and the element at which the crossing was
// detected, and returns a corrected position for the driver to re-locate.
type Horizontal interface {
	Apply(m *mesh.Mesh, oldX, oldY float64, oldHost int, newX, newY float64, crossHost int) (x, y float64, err error)
}

// VertStatus is the outcome of a vertical boundary calculator.
type VertStatus int

const (
	// VertOK means z was adjusted (or left alone) and remains active.
	VertOK VertStatus = iota
	// VertAbsorbed means the particle crossed the absorbing bottom and is
	// now terminal.
	VertAbsorbed
)

// Vertical corrects a z that has left [zmin, zmax].
type Vertical interface {
	Apply(z, zmin, zmax float64) (newZ float64, status VertStatus)
}

func reflectOnce(z, bound float64) float64 {
	return 2*bound - z
}

// reflectBounded applies the reflecting formula at bound up to twice
// (spec §4.F: "Apply at most twice ... clamp to the far bound if still
// out"), used by both Reflecting and AbsorbingBottom's surface behaviour.
func reflectBounded(z, bound float64, over func(float64) bool) float64 {
	for i := 0; i < 2 && over(z); i++ {
		z = reflectOnce(z, bound)
	}
	return z
}

// Reflecting is the horizontal BC calculator (BOUNDARY_CONDITIONS.
// horiz_bound_cond = "reflecting"): mirrors the tentative position across
// the crossed land edge.
type Reflecting struct{}

// Apply implements Horizontal.
func (Reflecting) Apply(m *mesh.Mesh, oldX, oldY float64, oldHost int, newX, newY float64, crossHost int) (float64, float64, error) {
	edge, err := m.CrossEdge(crossHost, newX, newY)
	if err != nil {
		return oldX, oldY, err
	}
	x1, y1, x2, y2 := m.EdgeEndpoints(crossHost, edge)

	xi, yi, ok := segmentIntersect(oldX, oldY, newX, newY, x1, y1, x2, y2)
	if !ok {
		// Degenerate (parallel/non-crossing) segment: fall back to
		// restoring rather than reflecting off an undefined intersection.
		return oldX, oldY, nil
	}

	nx, ny := y2-y1, x1-x2 // edge normal; its sign does not affect the reflection
	dx, dy := newX-xi, newY-yi
	dot := nx*dx + ny*dy
	nn := nx*nx + ny*ny
	if nn == 0 {
		return oldX, oldY, nil
	}
	scale := 2 * dot / nn
	rx := xi + dx - scale*nx
	ry := yi + dy - scale*ny
	return rx, ry, nil
}

// segmentIntersect finds the intersection of segments (x1,y1)-(x2,y2) and
// (x3,y3)-(x4,y4), reporting ok=false if they are parallel or don't cross
// within both segments' extents.
func segmentIntersect(x1, y1, x2, y2, x3, y3, x4, y4 float64) (x, y float64, ok bool) {
	d := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if d == 0 {
		return 0, 0, false
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / d
	u := ((x1-x3)*(y1-y2) - (y1-y3)*(x1-x2)) / d
	if t < -1e-9 || t > 1+1e-9 || u < -1e-9 || u > 1+1e-9 {
		return 0, 0, false
	}
	return x1 + t*(x2-x1), y1 + t*(y2-y1), true
}

// Restoring is the horizontal BC calculator (horiz_bound_cond =
// "restoring"): the tentative position and host both revert to the
// pre-step value (spec §4.F).
type Restoring struct{}

// Apply implements Horizontal.
func (Restoring) Apply(m *mesh.Mesh, oldX, oldY float64, oldHost int, newX, newY float64, crossHost int) (float64, float64, error) {
	return oldX, oldY, nil
}

// NoneHorizontal is horiz_bound_cond = "none": the tentative position is
// left uncorrected.
type NoneHorizontal struct{}

// Apply implements Horizontal.
func (NoneHorizontal) Apply(m *mesh.Mesh, oldX, oldY float64, oldHost int, newX, newY float64, crossHost int) (float64, float64, error) {
	return newX, newY, nil
}

// VReflecting is the vertical BC calculator (vert_bound_cond =
// "reflecting"): both the surface and the bottom reflect.
type VReflecting struct{}

// Apply implements Vertical.
func (VReflecting) Apply(z, zmin, zmax float64) (float64, VertStatus) {
	z = reflectBounded(z, zmax, func(v float64) bool { return v > zmax })
	z = reflectBounded(z, zmin, func(v float64) bool { return v < zmin })
	if z > zmax {
		z = zmax
	}
	if z < zmin {
		z = zmin
	}
	return z, VertOK
}

// AbsorbingBottom is the vertical BC calculator (vert_bound_cond =
// "absorbing_bottom"): the bottom is terminal, the surface still reflects
// (spec §4.F: "Surface remains reflecting").
type AbsorbingBottom struct{}

// Apply implements Vertical.
func (AbsorbingBottom) Apply(z, zmin, zmax float64) (float64, VertStatus) {
	if z < zmin {
		return zmin, VertAbsorbed
	}
	z = reflectBounded(z, zmax, func(v float64) bool { return v > zmax })
	if z > zmax {
		z = zmax
	}
	if z < zmin {
		return zmin, VertAbsorbed
	}
	return z, VertOK
}

// NoneVertical is vert_bound_cond = "none": z passes through unmodified.
type NoneVertical struct{}

// Apply implements Vertical.
func (NoneVertical) Apply(z, zmin, zmax float64) (float64, VertStatus) {
	return z, VertOK
}
