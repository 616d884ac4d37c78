package field

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

func buildTestMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	x := []float64{0, 1, 0}
	y := []float64{0, 0, 1}
	nv := [][3]int{{0, 1, 2}}
	nbe := [][3]int{{mesh.Open, mesh.Open, mesh.Open}}
	siglay := [][]float64{{0, 0, 0}, {-1, -1, -1}}
	siglev := [][]float64{{0, 0, 0}, {-0.5, -0.5, -0.5}, {-1, -1, -1}}
	h := []float64{10, 10, 10}
	a1u := [][4]float64{{0, 0, 0, 0}}
	a2u := [][4]float64{{0, 0, 0, 0}}
	m, err := mesh.Build(nv, nbe, x, y, siglev, siglay, h, a1u, a2u)
	if err != nil {
		t.Fatalf("mesh.Build: %v", err)
	}
	return m
}

type fakeLoader struct {
	calls      int
	last, next *Snapshot
}

func (l *fakeLoader) LoadSnapshot(t float64) (*Snapshot, *Snapshot, error) {
	l.calls++
	return l.last, l.next, nil
}

func newTestSampler(t *testing.T) (*Sampler, *fakeLoader) {
	t.Helper()
	m := buildTestMesh(t)

	last := NewSnapshot(0)
	u := sparse.ZerosDense(2, 1)
	u.Set(4.0, 1, 0)
	u.Set(2.0, 0, 0)
	last.AddVariable(VarU, u)
	v := sparse.ZerosDense(2, 1)
	v.Set(1.0, 0, 0)
	v.Set(1.0, 1, 0)
	last.AddVariable(VarV, v)
	last.AddVariable(VarOm, sparse.ZerosDense(3, 3))
	last.AddVariable(VarKh, sparse.ZerosDense(3, 3))
	ah := sparse.ZerosDense(2, 3)
	ah.Set(0, 0, 0)
	ah.Set(1, 0, 1)
	ah.Set(0, 0, 2)
	last.AddVariable(VarAh, ah)
	last.AddVariable(VarZeta, sparse.ZerosDense(3))
	wet := sparse.ZerosDense(1)
	wet.Set(1, 0)
	last.AddVariable(VarWet, wet)

	next := NewSnapshot(10)
	un := sparse.ZerosDense(2, 1)
	un.Set(8.0, 1, 0)
	un.Set(6.0, 0, 0)
	next.AddVariable(VarU, un)
	vn := sparse.ZerosDense(2, 1)
	vn.Set(1.0, 0, 0)
	vn.Set(1.0, 1, 0)
	next.AddVariable(VarV, vn)
	next.AddVariable(VarOm, sparse.ZerosDense(3, 3))
	next.AddVariable(VarKh, sparse.ZerosDense(3, 3))
	next.AddVariable(VarAh, sparse.ZerosDense(2, 3))
	next.AddVariable(VarZeta, sparse.ZerosDense(3))
	next.AddVariable(VarWet, sparse.ZerosDense(1))

	loader := &fakeLoader{last: last, next: next}
	s := NewSampler(m, loader, Sigma, true)
	return s, loader
}

func newParticleAt(t *testing.T, s *Sampler, x, y, z float64) *particle.Particle {
	return newParticleAtTime(t, s, 0, x, y, z)
}

func newParticleAtTime(t *testing.T, s *Sampler, simTime, x, y, z float64) *particle.Particle {
	t.Helper()
	p := &particle.Particle{Host: 0, X: x, Y: y, Z: z}
	if err := s.SetLocalCoordinates(simTime, p); err != nil {
		t.Fatalf("SetLocalCoordinates: %v", err)
	}
	return p
}

func TestReadDataIsIdempotentWithinWindow(t *testing.T) {
	s, loader := newTestSampler(t)
	if err := s.ReadData(5); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if err := s.ReadData(7); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if loader.calls != 1 {
		t.Errorf("loader called %d times, want 1 (read_data must no-op within the window)", loader.calls)
	}
}

func TestGetVelocityBlendsTimeAndSigma(t *testing.T) {
	s, _ := newTestSampler(t)
	if err := s.ReadData(5); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	p := newParticleAt(t, s, 0.2, 0.2, -0.25)
	u, v, omega, err := s.GetVelocity(5, p)
	if err != nil {
		t.Fatalf("GetVelocity: %v", err)
	}
	wantU := 4.5
	if math.Abs(u-wantU) > 1e-9 {
		t.Errorf("u = %v, want %v", u, wantU)
	}
	if math.Abs(v-1.0) > 1e-9 {
		t.Errorf("v = %v, want 1.0", v)
	}
	if omega != 0 {
		t.Errorf("omega = %v, want 0", omega)
	}
}

func TestGetHorizontalEddyViscosityGradLinear(t *testing.T) {
	s, _ := newTestSampler(t)
	if err := s.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	p := newParticleAt(t, s, 0.2, 0.2, 0)
	dAdx, dAdy, err := s.GetHorizontalEddyViscosityGrad(0, p)
	if err != nil {
		t.Fatalf("GetHorizontalEddyViscosityGrad: %v", err)
	}
	if math.Abs(dAdx-1) > 1e-9 || math.Abs(dAdy-0) > 1e-9 {
		t.Errorf("grad = (%v, %v), want (1, 0)", dAdx, dAdy)
	}
}

func TestIsWet(t *testing.T) {
	s, _ := newTestSampler(t)
	if err := s.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	wet, err := s.IsWet(0, 0)
	if err != nil {
		t.Fatalf("IsWet: %v", err)
	}
	if !wet {
		t.Errorf("IsWet = false, want true")
	}
}

func TestGetVerticalEddyDiffusivityDerivativeFinite(t *testing.T) {
	s, _ := newTestSampler(t)
	if err := s.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	p := newParticleAt(t, s, 0.2, 0.2, -0.5)
	dkdz, err := s.GetVerticalEddyDiffusivityDerivative(0, p)
	if err != nil {
		t.Fatalf("GetVerticalEddyDiffusivityDerivative: %v", err)
	}
	if math.IsNaN(dkdz) || math.IsInf(dkdz, 0) {
		t.Errorf("dkdz = %v, want finite", dkdz)
	}
}

func TestSetLocalCoordinatesConvertsCartesianDepthToSigma(t *testing.T) {
	m := buildTestMesh(t)
	last := NewSnapshot(0)
	last.AddVariable(VarZeta, sparse.ZerosDense(3))
	next := NewSnapshot(10)
	next.AddVariable(VarZeta, sparse.ZerosDense(3))
	loader := &fakeLoader{last: last, next: next}

	// h=10 and ζ=0 everywhere, so σ = z/10: z=-5m is equivalent to σ=-0.5.
	cartesian := NewSampler(m, loader, Cartesian, false)
	if err := cartesian.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	pCartesian := newParticleAtTime(t, cartesian, 0, 0.2, 0.2, -5)

	sigma := NewSampler(m, loader, Sigma, false)
	if err := sigma.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	pSigma := newParticleAtTime(t, sigma, 0, 0.2, 0.2, -0.5)

	if pCartesian.KLayerLower != pSigma.KLayerLower || pCartesian.KLayerUpper != pSigma.KLayerUpper {
		t.Errorf("layer brackets = (%d,%d), want (%d,%d) (the σ=-0.5 equivalent)",
			pCartesian.KLayerLower, pCartesian.KLayerUpper, pSigma.KLayerLower, pSigma.KLayerUpper)
	}
	if math.Abs(pCartesian.BetaLayer-pSigma.BetaLayer) > 1e-9 {
		t.Errorf("BetaLayer = %v, want %v", pCartesian.BetaLayer, pSigma.BetaLayer)
	}
	if pCartesian.KLevLower != pSigma.KLevLower || pCartesian.KLevUpper != pSigma.KLevUpper {
		t.Errorf("level brackets = (%d,%d), want (%d,%d)",
			pCartesian.KLevLower, pCartesian.KLevUpper, pSigma.KLevLower, pSigma.KLevUpper)
	}
	if math.Abs(pCartesian.BetaLevel-pSigma.BetaLevel) > 1e-9 {
		t.Errorf("BetaLevel = %v, want %v", pCartesian.BetaLevel, pSigma.BetaLevel)
	}
}

func TestGetBathymetryAndSeaSurElev(t *testing.T) {
	s, _ := newTestSampler(t)
	if err := s.ReadData(0); err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	p := newParticleAt(t, s, 0.2, 0.2, 0)
	h, err := s.GetBathymetry(p)
	if err != nil {
		t.Fatalf("GetBathymetry: %v", err)
	}
	if h != 10 {
		t.Errorf("h = %v, want 10", h)
	}
	zeta, err := s.GetSeaSurElev(0, p)
	if err != nil {
		t.Fatalf("GetSeaSurElev: %v", err)
	}
	if zeta != 0 {
		t.Errorf("zeta = %v, want 0", zeta)
	}
}
