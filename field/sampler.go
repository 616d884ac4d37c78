package field

import (
	"math"

	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// DepthCoordinates selects how GetZMin/GetZMax and the velocity vertical
// scaling treat the vertical axis (spec §6 "SIMULATION.depth_coordinates").
type DepthCoordinates int

const (
	Sigma DepthCoordinates = iota
	Cartesian
)

// Sampler is the concrete Source over a Mesh and its time-indexed
// snapshots, adapted from the teacher's CTMData-backed lookups in
// vargrid.go: a dual f_last/f_next Buffer stands in for CTMData's single
// snapshot, and elemLayerLLS plays the role of getCells' rtree-accelerated
// cell lookup, but against mesh.Mesh's LLS coefficients instead of a
// regular nested grid.
type Sampler struct {
	Mesh          *mesh.Mesh
	Loader        Loader
	Buf           Buffer
	AllowBeaching bool
	Depth         DepthCoordinates
}

// NewSampler returns a Sampler with an empty (not-yet-read) buffer.
func NewSampler(m *mesh.Mesh, l Loader, depth DepthCoordinates, allowBeaching bool) *Sampler {
	return &Sampler{Mesh: m, Loader: l, Depth: depth, AllowBeaching: allowBeaching}
}

// ReadData implements Source.
func (s *Sampler) ReadData(t float64) error {
	if s.Buf.InRange(t) {
		return nil
	}
	last, next, err := s.Loader.LoadSnapshot(t)
	if err != nil {
		return &IOError{Op: "read_data", Err: err}
	}
	s.Buf.Swap(last, next)
	return nil
}

// SetLocalCoordinates implements Source.
func (s *Sampler) SetLocalCoordinates(t float64, p *particle.Particle) error {
	status, host, phi := s.Mesh.FindHostLocal(p.Host, p.X, p.Y)
	if status != mesh.Inside {
		status, host, phi = s.Mesh.FindHostGlobal(p.X, p.Y)
	}
	if status != mesh.Inside {
		return &BoundaryError{X: p.X, Y: p.Y}
	}
	p.Host = host
	p.Phi = phi
	return s.setSigmaBrackets(t, p)
}

// setSigmaBrackets fills the sigma layer/level brackets for p at its
// current host, converting p.Z to sigma first when the source is
// depth_coordinates=cartesian (spec §6): σ = (z - ζ) / (h + ζ). p.Host and
// p.Phi must already be current; this never re-runs host location.
func (s *Sampler) setSigmaBrackets(t float64, p *particle.Particle) error {
	z := p.Z
	if s.Depth == Cartesian {
		sigma, err := s.sigmaAt(t, p)
		if err != nil {
			return err
		}
		z = sigma
	}

	lLower, lUpper, lBeta, lBound := s.Mesh.SigmaLocateElem(p.Host, z)
	p.KLayerLower, p.KLayerUpper, p.BetaLayer = lLower, lUpper, lBeta

	vLower, vUpper, vBeta, vBound := s.Mesh.SigmaLocateElemLevel(p.Host, z)
	p.KLevLower, p.KLevUpper, p.BetaLevel = vLower, vUpper, vBeta

	p.InVerticalBoundaryLayer = lBound || vBound
	return nil
}

// sigmaAt converts p.Z, held in metres under depth_coordinates=cartesian,
// to the sigma coordinate at p's host and the sea surface elevation at t.
func (s *Sampler) sigmaAt(t float64, p *particle.Particle) (float64, error) {
	h, err := s.GetBathymetry(p)
	if err != nil {
		return 0, err
	}
	zeta, err := s.GetSeaSurElev(t, p)
	if err != nil {
		return 0, err
	}
	depth := h + zeta
	if depth == 0 {
		return 0, &NumericalError{Field: "depth coordinate conversion (zero water column)"}
	}
	return (p.Z - zeta) / depth, nil
}

// FindHost implements Source.
func (s *Sampler) FindHost(p *particle.Particle, xNew, yNew float64) (mesh.CrossStatus, int, [3]float64) {
	status, host, phi := s.Mesh.FindHostLocal(p.Host, xNew, yNew)
	if status == mesh.SearchFail {
		status, host, phi = s.Mesh.FindHostGlobal(xNew, yNew)
	}
	return status, host, phi
}

func (s *Sampler) elemLayerLLS(arr layerGetter, e, k int, x, y float64) float64 {
	var u [4]float64
	u[0] = arr.Get(k, e)
	for i, nb := range s.Mesh.NBE[e] {
		if nb >= 0 {
			u[i+1] = arr.Get(k, nb)
		}
	}
	return s.Mesh.LLSVelocity(e, u, x, y)
}

type layerGetter interface {
	Get(index ...int) float64
}

// elemLayerValue samples an element-layer field (u, v) at (t, p): bilinear
// in time, LLS in the triangle, linear in sigma between layer brackets
// (spec §4.C get_velocity).
func (s *Sampler) elemLayerValue(name string, t float64, p *particle.Particle) (float64, error) {
	tLast, tNext := s.Buf.Bounds()
	alpha := mesh.TemporalWeight(t, tLast, tNext)
	last, next := s.Buf.Snapshots()
	if last == nil || next == nil {
		return 0, &IOError{Op: name, Err: errNoData}
	}
	lastArr, err := last.Get(name)
	if err != nil {
		return 0, err
	}
	nextArr, err := next.Get(name)
	if err != nil {
		return 0, err
	}
	vLast := mesh.SigmaInterp(
		s.elemLayerLLS(lastArr, p.Host, p.KLayerLower, p.X, p.Y),
		s.elemLayerLLS(lastArr, p.Host, p.KLayerUpper, p.X, p.Y),
		p.BetaLayer)
	vNext := mesh.SigmaInterp(
		s.elemLayerLLS(nextArr, p.Host, p.KLayerLower, p.X, p.Y),
		s.elemLayerLLS(nextArr, p.Host, p.KLayerUpper, p.X, p.Y),
		p.BetaLayer)
	return checkFinite(name, mesh.Lerp(vLast, vNext, alpha))
}

// nodeLevelVertexValues returns the time+sigma-interpolated value of a
// node/level field (ω, k_h) at each of host's three vertices, without
// combining them across the triangle.
func (s *Sampler) nodeLevelVertexValues(name string, t float64, p *particle.Particle) ([3]float64, error) {
	tLast, tNext := s.Buf.Bounds()
	alpha := mesh.TemporalWeight(t, tLast, tNext)
	last, next := s.Buf.Snapshots()
	if last == nil || next == nil {
		return [3]float64{}, &IOError{Op: name, Err: errNoData}
	}
	lastArr, err := last.Get(name)
	if err != nil {
		return [3]float64{}, err
	}
	nextArr, err := next.Get(name)
	if err != nil {
		return [3]float64{}, err
	}
	var out [3]float64
	for i, node := range s.Mesh.NV[p.Host] {
		vLast := mesh.SigmaInterp(lastArr.Get(p.KLevLower, node), lastArr.Get(p.KLevUpper, node), p.BetaLevel)
		vNext := mesh.SigmaInterp(nextArr.Get(p.KLevLower, node), nextArr.Get(p.KLevUpper, node), p.BetaLevel)
		out[i] = mesh.Lerp(vLast, vNext, alpha)
	}
	return out, nil
}

func (s *Sampler) nodeLevelValue(name string, t float64, p *particle.Particle) (float64, error) {
	vals, err := s.nodeLevelVertexValues(name, t, p)
	if err != nil {
		return 0, err
	}
	return checkFinite(name, mesh.WithinTriangle(vals, p.Phi))
}

// nodeLayerVertexValues is nodeLevelVertexValues' layer-bracket (A_h)
// counterpart.
func (s *Sampler) nodeLayerVertexValues(name string, t float64, p *particle.Particle) ([3]float64, error) {
	tLast, tNext := s.Buf.Bounds()
	alpha := mesh.TemporalWeight(t, tLast, tNext)
	last, next := s.Buf.Snapshots()
	if last == nil || next == nil {
		return [3]float64{}, &IOError{Op: name, Err: errNoData}
	}
	lastArr, err := last.Get(name)
	if err != nil {
		return [3]float64{}, err
	}
	nextArr, err := next.Get(name)
	if err != nil {
		return [3]float64{}, err
	}
	var out [3]float64
	for i, node := range s.Mesh.NV[p.Host] {
		vLast := mesh.SigmaInterp(lastArr.Get(p.KLayerLower, node), lastArr.Get(p.KLayerUpper, node), p.BetaLayer)
		vNext := mesh.SigmaInterp(nextArr.Get(p.KLayerLower, node), nextArr.Get(p.KLayerUpper, node), p.BetaLayer)
		out[i] = mesh.Lerp(vLast, vNext, alpha)
	}
	return out, nil
}

func (s *Sampler) nodeLayerValue(name string, t float64, p *particle.Particle) (float64, error) {
	vals, err := s.nodeLayerVertexValues(name, t, p)
	if err != nil {
		return 0, err
	}
	return checkFinite(name, mesh.WithinTriangle(vals, p.Phi))
}

// node2DValue samples a node field with no vertical dimension (ζ), time
// interpolated only.
func (s *Sampler) node2DValue(name string, t float64, p *particle.Particle) (float64, error) {
	tLast, tNext := s.Buf.Bounds()
	alpha := mesh.TemporalWeight(t, tLast, tNext)
	last, next := s.Buf.Snapshots()
	if last == nil || next == nil {
		return 0, &IOError{Op: name, Err: errNoData}
	}
	lastArr, err := last.Get(name)
	if err != nil {
		return 0, err
	}
	nextArr, err := next.Get(name)
	if err != nil {
		return 0, err
	}
	var vals [3]float64
	for i, node := range s.Mesh.NV[p.Host] {
		vals[i] = mesh.Lerp(lastArr.Get(node), nextArr.Get(node), alpha)
	}
	return checkFinite(name, mesh.WithinTriangle(vals, p.Phi))
}

// GetSeaSurElev implements Source.
func (s *Sampler) GetSeaSurElev(t float64, p *particle.Particle) (float64, error) {
	return s.node2DValue(VarZeta, t, p)
}

// GetBathymetry implements Source. Bathymetry is static (loaded once into
// the mesh), so it is a plain within-triangle combination of nodal h.
func (s *Sampler) GetBathymetry(p *particle.Particle) (float64, error) {
	v := s.Mesh.NV[p.Host]
	vals := [3]float64{s.Mesh.H[v[0]], s.Mesh.H[v[1]], s.Mesh.H[v[2]]}
	return checkFinite("bathymetry", mesh.WithinTriangle(vals, p.Phi))
}

// GetZMin implements Source.
func (s *Sampler) GetZMin(t float64, p *particle.Particle) (float64, error) {
	if s.Depth == Sigma {
		return -1, nil
	}
	h, err := s.GetBathymetry(p)
	if err != nil {
		return 0, err
	}
	return -h, nil
}

// GetZMax implements Source.
func (s *Sampler) GetZMax(t float64, p *particle.Particle) (float64, error) {
	if s.Depth == Sigma {
		return 0, nil
	}
	return s.GetSeaSurElev(t, p)
}

// GetVelocity implements Source.
func (s *Sampler) GetVelocity(t float64, p *particle.Particle) (u, v, omega float64, err error) {
	u, err = s.elemLayerValue(VarU, t, p)
	if err != nil {
		return 0, 0, 0, err
	}
	v, err = s.elemLayerValue(VarV, t, p)
	if err != nil {
		return 0, 0, 0, err
	}
	omegaSigma, err := s.nodeLevelValue(VarOm, t, p)
	if err != nil {
		return 0, 0, 0, err
	}
	h, err := s.GetBathymetry(p)
	if err != nil {
		return 0, 0, 0, err
	}
	zeta, err := s.GetSeaSurElev(t, p)
	if err != nil {
		return 0, 0, 0, err
	}
	omega, err = checkFinite("omega", omegaSigma*(h+zeta))
	return u, v, omega, err
}

// GetVerticalEddyDiffusivity implements Source.
func (s *Sampler) GetVerticalEddyDiffusivity(t float64, p *particle.Particle) (float64, error) {
	khSigma, err := s.nodeLevelValue(VarKh, t, p)
	if err != nil {
		return 0, err
	}
	h, err := s.GetBathymetry(p)
	if err != nil {
		return 0, err
	}
	zeta, err := s.GetSeaSurElev(t, p)
	if err != nil {
		return 0, err
	}
	depth := h + zeta
	if depth == 0 {
		return 0, &NumericalError{Field: "vertical eddy diffusivity (zero water column)"}
	}
	return checkFinite("kh", khSigma/(depth*depth))
}

// withZ returns a copy of p relocated to native vertical coordinate z
// (sigma, or metres under depth_coordinates=cartesian), recomputing only
// the sigma brackets (host and phi are unaffected by a small vertical
// probe).
func (s *Sampler) withZ(t float64, p *particle.Particle, z float64) (particle.Particle, error) {
	q := *p
	q.Z = z
	if err := s.setSigmaBrackets(t, &q); err != nil {
		return q, err
	}
	return q, nil
}

// GetVerticalEddyDiffusivityDerivative implements Source: a central
// difference in the sampler's native vertical coordinate with increment
// dZ=1e-3, switching to a one-sided probe when the centred stencil would
// leave [zmin, zmax] (spec §4.C).
func (s *Sampler) GetVerticalEddyDiffusivityDerivative(t float64, p *particle.Particle) (float64, error) {
	const dZ = 1e-3
	zMax, err := s.GetZMax(t, p)
	if err != nil {
		return 0, err
	}
	zMin, err := s.GetZMin(t, p)
	if err != nil {
		return 0, err
	}
	zHi, zLo := p.Z+dZ, p.Z-dZ
	switch {
	case zHi > zMax:
		zHi, zLo = p.Z, p.Z-2*dZ
	case zLo < zMin:
		zHi, zLo = p.Z+2*dZ, p.Z
	}
	qHi, err := s.withZ(t, p, zHi)
	if err != nil {
		return 0, err
	}
	qLo, err := s.withZ(t, p, zLo)
	if err != nil {
		return 0, err
	}
	kHi, err := s.GetVerticalEddyDiffusivity(t, &qHi)
	if err != nil {
		return 0, err
	}
	kLo, err := s.GetVerticalEddyDiffusivity(t, &qLo)
	if err != nil {
		return 0, err
	}
	if zHi == zLo {
		return 0, nil
	}
	return checkFinite("dk/dz", (kHi-kLo)/(zHi-zLo))
}

// GetHorizontalEddyViscosity implements Source.
func (s *Sampler) GetHorizontalEddyViscosity(t float64, p *particle.Particle) (float64, error) {
	return s.nodeLayerValue(VarAh, t, p)
}

// GetHorizontalEddyViscosityGrad implements Source: a closed-form
// gradient from the triangle's three nodal values using its constant P1
// basis, not a finite difference (spec §4.C, §9 "declared-but-unimplemented
// operation in the source").
func (s *Sampler) GetHorizontalEddyViscosityGrad(t float64, p *particle.Particle) (dAdx, dAdy float64, err error) {
	vals, err := s.nodeLayerVertexValues(VarAh, t, p)
	if err != nil {
		return 0, 0, err
	}
	v := s.Mesh.NV[p.Host]
	x1, y1 := s.Mesh.X[v[0]], s.Mesh.Y[v[0]]
	x2, y2 := s.Mesh.X[v[1]], s.Mesh.Y[v[1]]
	x3, y3 := s.Mesh.X[v[2]], s.Mesh.Y[v[2]]
	area2 := (x2-x1)*(y3-y1) - (x3-x1)*(y2-y1)
	if area2 == 0 {
		return 0, 0, &NumericalError{Field: "horizontal eddy viscosity gradient (degenerate element)"}
	}
	f1, f2, f3 := vals[0], vals[1], vals[2]
	dAdx = ((f2-f1)*(y3-y1) - (f3-f1)*(y2-y1)) / area2
	dAdy = ((x2-x1)*(f3-f1) - (x3-x1)*(f2-f1)) / area2
	dAdx, err = checkFinite("dA/dx", dAdx)
	if err != nil {
		return 0, 0, err
	}
	dAdy, err = checkFinite("dA/dy", dAdy)
	return dAdx, dAdy, err
}

// IsWet implements Source: consulted only when AllowBeaching is set. The
// wet mask is carried on the "last" snapshot of the buffer, since
// wetting/drying is not itself simulated here (spec §1 non-goal) and the
// mask is expected to change slowly relative to the snapshot cadence.
func (s *Sampler) IsWet(t float64, host int) (bool, error) {
	last, _ := s.Buf.Snapshots()
	if last == nil {
		return false, &IOError{Op: VarWet, Err: errNoData}
	}
	arr, err := last.Get(VarWet)
	if err != nil {
		return false, err
	}
	return arr.Get(host) > 0.5, nil
}

func checkFinite(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &NumericalError{Field: field}
	}
	return v, nil
}
