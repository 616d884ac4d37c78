package mesh

import (
	"math"
	"testing"
)

// twoTriangleMesh builds two unit-ish right triangles sharing the edge
// between nodes 1 and 2, so tests can exercise cross-element host location.
//
//	2-------3
//	|     / |
//	|   /   |
//	| /     |
//	0-------1
//
// Element 0: nodes {0,1,2}, element 1: nodes {1,3,2}.
func twoTriangleMesh(t *testing.T) *Mesh {
	t.Helper()
	x := []float64{0, 2, 0, 2}
	y := []float64{0, 0, 2, 2}
	nv := [][3]int{{0, 1, 2}, {1, 3, 2}}
	// Element 0's edge opposite vertex0 (node0) is the node1-node2 diagonal,
	// shared with element 1; its other two edges are open boundaries.
	// Element 1's edge opposite vertex1 (node3) is that same diagonal.
	nbe := [][3]int{{1, Open, Open}, {Open, 0, Open}}
	siglev := [][]float64{{0, 0, 0, 0}, {-1, -1, -1, -1}}
	siglay := [][]float64{{-0.5, -0.5, -0.5, -0.5}}
	h := []float64{10, 10, 10, 10}
	a1u := [][4]float64{{0, 0, 0, 0}, {0, 0, 0, 0}}
	a2u := [][4]float64{{0, 0, 0, 0}, {0, 0, 0, 0}}
	m, err := Build(nv, nbe, x, y, siglev, siglay, h, a1u, a2u)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBarycentricRoundTrip(t *testing.T) {
	m := twoTriangleMesh(t)
	pts := [][2]float64{{0.5, 0.5}, {1.2, 0.3}, {0.9, 1.4}}
	for _, p := range pts {
		for e := 0; e < m.NElems; e++ {
			phi, err := m.Barycentric(e, p[0], p[1])
			if err != nil {
				t.Fatalf("Barycentric: %v", err)
			}
			sum := phi[0] + phi[1] + phi[2]
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("element %d: phi does not sum to 1: %v", e, phi)
			}
			gotX, gotY := m.Reconstruct(e, phi)
			if math.Abs(gotX-p[0]) > 1e-12 || math.Abs(gotY-p[1]) > 1e-12 {
				t.Errorf("element %d: round trip mismatch: want (%v,%v) got (%v,%v)", e, p[0], p[1], gotX, gotY)
			}
		}
	}
}

func TestFindHostLocalCrossesSharedEdge(t *testing.T) {
	m := twoTriangleMesh(t)
	// A point just inside element 1's half of the square, searched from
	// element 0 as the starting host, must resolve to element 1 by
	// crossing the shared edge (spec §8 "Host-walk convergence").
	status, host, phi := m.FindHostLocal(0, 1.6, 1.6)
	if status != Inside {
		t.Fatalf("status = %v, want Inside", status)
	}
	if host != 1 {
		t.Fatalf("host = %d, want 1", host)
	}
	if phi[0] < -Eps || phi[1] < -Eps || phi[2] < -Eps {
		t.Errorf("phi has a component below -Eps: %v", phi)
	}

	// And the reverse direction.
	status, host, _ = m.FindHostLocal(1, 0.4, 0.4)
	if status != Inside || host != 0 {
		t.Fatalf("reverse search: status=%v host=%d, want Inside/0", status, host)
	}
}

func TestFindHostLocalOpenCross(t *testing.T) {
	m := twoTriangleMesh(t)
	// Far outside the domain in the direction of an open-boundary edge.
	status, _, _ := m.FindHostLocal(0, -5, 0.1)
	if status != OpenCross {
		t.Fatalf("status = %v, want OpenCross", status)
	}
}

func TestFindHostGlobalMatchesLocal(t *testing.T) {
	m := twoTriangleMesh(t)
	status, host, _ := m.FindHostGlobal(0.5, 0.5)
	if status != Inside || host != 0 {
		t.Fatalf("FindHostGlobal: status=%v host=%d, want Inside/0", status, host)
	}
}

func TestTwoLandBoundaryRule(t *testing.T) {
	x := []float64{0, 1, 0}
	y := []float64{0, 0, 1}
	nv := [][3]int{{0, 1, 2}}
	nbe := [][3]int{{Land, Land, Open}}
	siglev := [][]float64{{0, 0, 0}, {-1, -1, -1}}
	siglay := [][]float64{{-0.5, -0.5, -0.5}}
	h := []float64{10, 10, 10}
	a1u := [][4]float64{{0, 0, 0, 0}}
	a2u := [][4]float64{{0, 0, 0, 0}}
	m, err := Build(nv, nbe, x, y, siglev, siglay, h, a1u, a2u)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	status, _, _ := m.FindHostLocal(0, 0.2, 0.2)
	if status != LandCross {
		t.Fatalf("status = %v, want LandCross (two-land-boundary rule)", status)
	}
}
