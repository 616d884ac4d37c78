// Package mesh holds the unstructured triangular horizontal mesh and the
// terrain-following vertical layering used by the particle tracker: element
// topology, host-element location (locate.go) and the barycentric/temporal/
// sigma/LLS interpolation kernels (interp.go) that sample fields defined on
// it.
package mesh

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Edge classifications held in NBE. Any value >= 0 is the index of the
// neighbouring element across that edge.
const (
	Land = -1
	Open = -2
)

// Mesh is the immutable-after-load triangular horizontal mesh plus the
// terrain-following sigma layers/levels defined on it. All slices are
// indexed the way FVCOM (and the rest of the unstructured-grid ocean model
// family this spec targets) indexes them: NV/NBE per element, X/Y/H/SigLev/
// SigLay per node.
type Mesh struct {
	NElems, NNodes int

	// NV holds the three node indices of each element, consistently
	// oriented (counter-clockwise).
	NV [][3]int

	// NBE holds, for each element and each edge (edge i is opposite vertex
	// i), the neighbouring element index, or Land/Open.
	NBE [][3]int

	X, Y   []float64 // node coordinates
	XC, YC []float64 // element centroids

	// SigLev and SigLay are level (interface) and layer (cell-centred)
	// sigma coordinates, each shaped [N_siglev or N_siglay][N_nodes],
	// monotonically decreasing from 0 at the surface to -1 at the bottom.
	SigLev [][]float64
	SigLay [][]float64

	H []float64 // static bathymetry, positive downward, per node

	// A1U, A2U are the precomputed LLS interpolation coefficients for
	// element-centred vector fields (u, v). Index 0 of each row
	// corresponds to the host element itself, indices 1-3 to the three
	// neighbours in NBE order.
	A1U, A2U [][4]float64

	// landEdges[e] is the number of edges of element e that border land
	// (NBE == Land). Precomputed so the two-land-boundary rejection rule in
	// locate.go is a slice lookup, not a per-step scan.
	landEdges []int

	index *rtree.Rtree
}

// element adapts an element's bounding box to rtree.Spatial so the mesh's
// elements can be indexed the same way the teacher indexes grid cells in
// vargrid.go's gridTree/cellTree.
type element struct {
	id     int
	bounds *geom.Bounds
}

func (e *element) Bounds() *geom.Bounds { return e.bounds }

// Build validates and assembles a Mesh from raw topology, precomputing
// element centroids, the land-edge count used by the two-land-boundary
// rule, and a spatial index over element bounding boxes for
// FindHostGlobal's bootstrap search. It mirrors the one-time
// neighborInfo()/index-build pass the teacher runs in InitInMAPdata and
// vargrid.go's grid construction, rather than redoing this work per step.
func Build(nv, nbe [][3]int, x, y []float64, siglev, siglay [][]float64, h []float64, a1u, a2u [][4]float64) (*Mesh, error) {
	nElems := len(nv)
	nNodes := len(x)
	switch {
	case len(nbe) != nElems:
		return nil, fmt.Errorf("mesh: len(nbe)=%d does not match len(nv)=%d", len(nbe), nElems)
	case len(y) != nNodes:
		return nil, fmt.Errorf("mesh: len(y)=%d does not match len(x)=%d", len(y), nNodes)
	case len(h) != nNodes:
		return nil, fmt.Errorf("mesh: len(h)=%d does not match number of nodes=%d", len(h), nNodes)
	case len(a1u) != nElems || len(a2u) != nElems:
		return nil, fmt.Errorf("mesh: a1u/a2u must have one row per element")
	}
	for _, lay := range siglay {
		if len(lay) != nNodes {
			return nil, fmt.Errorf("mesh: siglay row length %d does not match number of nodes=%d", len(lay), nNodes)
		}
	}
	for _, lev := range siglev {
		if len(lev) != nNodes {
			return nil, fmt.Errorf("mesh: siglev row length %d does not match number of nodes=%d", len(lev), nNodes)
		}
	}
	for e, vv := range nv {
		for i, n := range vv {
			if n < 0 || n >= nNodes {
				return nil, fmt.Errorf("mesh: element %d vertex %d references out-of-range node %d", e, i, n)
			}
		}
	}

	m := &Mesh{
		NElems: nElems, NNodes: nNodes,
		NV: nv, NBE: nbe,
		X: x, Y: y,
		SigLev: siglev, SigLay: siglay,
		H:   h,
		A1U: a1u, A2U: a2u,
	}
	m.XC = make([]float64, nElems)
	m.YC = make([]float64, nElems)
	m.landEdges = make([]int, nElems)

	m.index = rtree.NewTree(25, 50)
	for e := 0; e < nElems; e++ {
		v := m.NV[e]
		m.XC[e] = (x[v[0]] + x[v[1]] + x[v[2]]) / 3.
		m.YC[e] = (y[v[0]] + y[v[1]] + y[v[2]]) / 3.
		n := 0
		for _, nb := range m.NBE[e] {
			if nb == Land {
				n++
			}
		}
		m.landEdges[e] = n

		b := geom.NewBoundsPoint(geom.Point{X: x[v[0]], Y: y[v[0]]})
		b.Extend(geom.NewBoundsPoint(geom.Point{X: x[v[1]], Y: y[v[1]]}))
		b.Extend(geom.NewBoundsPoint(geom.Point{X: x[v[2]], Y: y[v[2]]}))
		m.index.Insert(&element{id: e, bounds: b})
	}
	return m, nil
}

// Centroid returns the centroid of element e.
func (m *Mesh) Centroid(e int) (x, y float64) { return m.XC[e], m.YC[e] }

// NumLandEdges returns the number of land-bounding edges of element e.
func (m *Mesh) NumLandEdges(e int) int { return m.landEdges[e] }
