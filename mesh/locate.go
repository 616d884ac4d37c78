package mesh

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Eps is the numerical tolerance applied to barycentric coordinates when
// deciding whether a point lies inside an element (spec §4.A: "treat φ ≥ -ε
// as inside").
const Eps = 1e-10

// MaxWalkSteps bounds the local host-element walk (spec §4.A: "exceeds
// max_walk_steps"). It is generous relative to any reasonable single
// sub-step displacement, which should cross at most a handful of elements.
const MaxWalkSteps = 64

// CrossStatus is the outcome of a host-element search.
type CrossStatus int

const (
	// Inside means the point was located within a valid element.
	Inside CrossStatus = iota
	// LandCross means the search crossed (or landed in an element
	// bordering, per the two-land-boundary rule) a land edge.
	LandCross
	// OpenCross means the search crossed an open-boundary edge.
	OpenCross
	// SearchFail means the walk did not converge (revisited an element it
	// had already visited or exceeded MaxWalkSteps).
	SearchFail
)

func (s CrossStatus) String() string {
	switch s {
	case Inside:
		return "inside"
	case LandCross:
		return "land_cross"
	case OpenCross:
		return "open_cross"
	case SearchFail:
		return "search_fail"
	default:
		return "unknown"
	}
}

// Barycentric returns the barycentric coordinates of (x, y) with respect to
// element e, in vertex order NV[e]. The coordinates sum to 1 by
// construction; the caller (FindHostLocal/FindHostGlobal) is responsible for
// treating values >= -Eps as "inside" per spec §4.A.
func (m *Mesh) Barycentric(e int, x, y float64) ([3]float64, error) {
	v := m.NV[e]
	x1, y1 := m.X[v[0]], m.Y[v[0]]
	x2, y2 := m.X[v[1]], m.Y[v[1]]
	x3, y3 := m.X[v[2]], m.Y[v[2]]

	area := (y2-y3)*(x1-x3) + (x3-x2)*(y1-y3)
	if area == 0 {
		return [3]float64{}, fmt.Errorf("mesh: element %d is degenerate (zero area)", e)
	}
	var phi [3]float64
	phi[0] = ((y2-y3)*(x-x3) + (x3-x2)*(y-y3)) / area
	phi[1] = ((y3-y1)*(x-x3) + (x1-x3)*(y-y3)) / area
	phi[2] = 1 - phi[0] - phi[1]
	for _, p := range phi {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return phi, fmt.Errorf("mesh: non-finite barycentric coordinate in element %d", e)
		}
	}
	return phi, nil
}

// Reconstruct maps barycentric coordinates phi back to cartesian (x, y)
// within element e: Σ φ_i * (x_i, y_i). Used by the round-trip test in
// spec §8.
func (m *Mesh) Reconstruct(e int, phi [3]float64) (x, y float64) {
	v := m.NV[e]
	x = phi[0]*m.X[v[0]] + phi[1]*m.X[v[1]] + phi[2]*m.X[v[2]]
	y = phi[0]*m.Y[v[0]] + phi[1]*m.Y[v[1]] + phi[2]*m.Y[v[2]]
	return x, y
}

func inside(phi [3]float64) bool {
	return phi[0] >= -Eps && phi[1] >= -Eps && phi[2] >= -Eps
}

// argminEdge returns the index of the edge (vertex) with the smallest
// barycentric coordinate, applying the edge-tie rule from spec §4.A: if two
// φ are equal minima, prefer the neighbour that is not land, then not open;
// if both candidates are open boundaries, pick the lower edge index.
func (m *Mesh) argminEdge(e int, phi [3]float64) int {
	best := 0
	for i := 1; i < 3; i++ {
		if phi[i] < phi[best] {
			best = i
		} else if phi[i] == phi[best] {
			best = resolveTie(m.NBE[e], best, i)
		}
	}
	return best
}

func resolveTie(nbe [3]int, a, b int) int {
	ra, rb := rank(nbe[a]), rank(nbe[b])
	switch {
	case ra < rb:
		return a
	case rb < ra:
		return b
	default:
		// Equal rank (including "both open boundaries"): prefer the
		// lower-index edge.
		if a < b {
			return a
		}
		return b
	}
}

// rank orders neighbour kinds for the edge-tie rule: a real neighbour beats
// an open boundary, which beats a land boundary.
func rank(nb int) int {
	switch {
	case nb >= 0:
		return 0
	case nb == Open:
		return 1
	default: // Land
		return 2
	}
}

// FindHostLocal walks from startHost toward (x, y), moving across the edge
// with the smallest barycentric coordinate until it finds an element that
// contains the point (spec §4.A). It applies the two-land-boundary
// rejection rule: even a geometrically-containing element is rejected as
// LandCross if it borders land on two or more edges.
func (m *Mesh) FindHostLocal(startHost int, x, y float64) (CrossStatus, int, [3]float64) {
	visited := make(map[int]bool, 8)
	cur := startHost
	for step := 0; step < MaxWalkSteps; step++ {
		if visited[cur] {
			return SearchFail, -1, [3]float64{}
		}
		visited[cur] = true

		phi, err := m.Barycentric(cur, x, y)
		if err != nil {
			return SearchFail, -1, [3]float64{}
		}
		if inside(phi) {
			if m.landEdges[cur] >= 2 {
				return LandCross, cur, phi
			}
			return Inside, cur, phi
		}
		edge := m.argminEdge(cur, phi)
		next := m.NBE[cur][edge]
		switch {
		case next == Land:
			return LandCross, cur, phi
		case next == Open:
			return OpenCross, cur, phi
		default:
			cur = next
		}
	}
	return SearchFail, -1, [3]float64{}
}

// CrossEdge returns the edge index of element e with the smallest
// barycentric coordinate for (x, y) — the edge a LandCross/OpenCross result
// was attributed to — so a horizontal boundary calculator can recover the
// crossed segment's endpoints without FindHostLocal needing to thread an
// extra return value through every caller.
func (m *Mesh) CrossEdge(e int, x, y float64) (int, error) {
	phi, err := m.Barycentric(e, x, y)
	if err != nil {
		return 0, err
	}
	return m.argminEdge(e, phi), nil
}

// EdgeEndpoints returns the (x, y) coordinates of the two vertices bounding
// edge i of element e, following NV's counter-clockwise orientation (edge i
// is opposite vertex i, so it runs from vertex (i+1)%3 to vertex (i+2)%3).
func (m *Mesh) EdgeEndpoints(e, i int) (x1, y1, x2, y2 float64) {
	v := m.NV[e]
	a, b := v[(i+1)%3], v[(i+2)%3]
	return m.X[a], m.Y[a], m.X[b], m.Y[b]
}

// FindHostGlobal performs a spatial-index-accelerated search for the
// element containing (x, y), falling back to the O(N_elems) scan spec §4.A
// describes if the index query is inconclusive. Used to bootstrap seed
// particles and to recover from FindHostLocal's SearchFail.
func (m *Mesh) FindHostGlobal(x, y float64) (CrossStatus, int, [3]float64) {
	if m.index != nil {
		hits := m.index.SearchIntersect(&geom.Bounds{Min: geom.Point{X: x, Y: y}, Max: geom.Point{X: x, Y: y}})
		for _, h := range hits {
			el, ok := h.(*element)
			if !ok {
				continue
			}
			phi, err := m.Barycentric(el.id, x, y)
			if err != nil {
				continue
			}
			if inside(phi) {
				if m.landEdges[el.id] >= 2 {
					return LandCross, el.id, phi
				}
				return Inside, el.id, phi
			}
		}
	}
	for e := 0; e < m.NElems; e++ {
		phi, err := m.Barycentric(e, x, y)
		if err != nil {
			continue
		}
		if inside(phi) {
			if m.landEdges[e] >= 2 {
				return LandCross, e, phi
			}
			return Inside, e, phi
		}
	}
	return SearchFail, -1, [3]float64{}
}
