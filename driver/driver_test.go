package driver

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/nummethod"
	"github.com/oceanmodel/lagtrack/particle"
)

// fakeSource is a minimal field.Source: constant velocity, always inside,
// a configurable wet mask, and vertical bounds [-1, 0].
type fakeSource struct {
	u, v, w float64
	wet     bool
}

func (s *fakeSource) ReadData(t float64) error { return nil }
func (s *fakeSource) SetLocalCoordinates(t float64, p *particle.Particle) error {
	p.Phi = [3]float64{1, 0, 0}
	return nil
}
func (s *fakeSource) GetVelocity(t float64, p *particle.Particle) (float64, float64, float64, error) {
	return s.u, s.v, s.w, nil
}
func (s *fakeSource) GetVerticalEddyDiffusivity(t float64, p *particle.Particle) (float64, error) {
	return 0, nil
}
func (s *fakeSource) GetVerticalEddyDiffusivityDerivative(t float64, p *particle.Particle) (float64, error) {
	return 0, nil
}
func (s *fakeSource) GetHorizontalEddyViscosity(t float64, p *particle.Particle) (float64, error) {
	return 0, nil
}
func (s *fakeSource) GetHorizontalEddyViscosityGrad(t float64, p *particle.Particle) (float64, float64, error) {
	return 0, 0, nil
}
func (s *fakeSource) GetZMin(t float64, p *particle.Particle) (float64, error) { return -1, nil }
func (s *fakeSource) GetZMax(t float64, p *particle.Particle) (float64, error) { return 0, nil }
func (s *fakeSource) GetBathymetry(p *particle.Particle) (float64, error)      { return 10, nil }
func (s *fakeSource) GetSeaSurElev(t float64, p *particle.Particle) (float64, error) {
	return 0, nil
}
func (s *fakeSource) IsWet(t float64, host int) (bool, error) { return s.wet, nil }
func (s *fakeSource) FindHost(p *particle.Particle, x, y float64) (mesh.CrossStatus, int, [3]float64) {
	return mesh.Inside, 0, [3]float64{1, 0, 0}
}

var _ field.Source = (*fakeSource)(nil)

func buildOneElementMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	nv := [][3]int{{0, 1, 2}}
	nbe := [][3]int{{mesh.Open, mesh.Open, mesh.Open}}
	x := []float64{0, 1, 0}
	y := []float64{0, 0, 1}
	siglay := [][]float64{{-0.5, -0.5, -0.5}}
	siglev := [][]float64{{0, 0, 0}, {-1, -1, -1}}
	h := []float64{10, 10, 10}
	a1u := [][4]float64{{0, 0, 0, 0}}
	a2u := [][4]float64{{0, 0, 0, 0}}
	m, err := mesh.Build(nv, nbe, x, y, siglev, siglay, h, a1u, a2u)
	if err != nil {
		t.Fatalf("mesh.Build: %v", err)
	}
	return m
}

type trivialNumMethod struct{}

func (trivialNumMethod) Step(src field.Source, m *mesh.Mesh, t float64, p *particle.Particle, dt float64, rng *rand.Rand) (itmethod.Status, error) {
	u, v, w, err := src.GetVelocity(t, p)
	if err != nil {
		return itmethod.DomainError, err
	}
	p.X += u * dt
	p.Y += v * dt
	p.Z += w * dt
	return itmethod.OK, nil
}

// faultyNumMethod always reports the configured status/error, letting
// tests drive stepParticle's fatal-vs-per-particle-fault branch directly.
type faultyNumMethod struct {
	status itmethod.Status
	err    error
}

func (f faultyNumMethod) Step(src field.Source, m *mesh.Mesh, t float64, p *particle.Particle, dt float64, rng *rand.Rand) (itmethod.Status, error) {
	return f.status, f.err
}

func TestStepAbsorbsNumericalFaultWithoutAbortingTheRun(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 1, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{
		{ID: 0, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active},
		{ID: 1, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active},
	}
	nm := faultyNumMethod{status: itmethod.NumericalFault, err: &field.NumericalError{Field: "velocity"}}
	model := NewModel(m, src, nm, particles, 1.0, 42, false)

	if err := model.Step(context.Background(), 0); err != nil {
		t.Fatalf("Step: %v, want the run to continue past a per-particle fault", err)
	}
	for _, p := range particles {
		if p.Status != particle.OutOfDomain {
			t.Errorf("particle %d Status = %v, want OutOfDomain", p.ID, p.Status)
		}
	}
}

func TestStepAbortsRunOnFatalIOError(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 1, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{{ID: 0, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active}}
	nm := faultyNumMethod{status: itmethod.DomainError, err: &field.IOError{Op: "read_data", Err: context.DeadlineExceeded}}
	model := NewModel(m, src, nm, particles, 1.0, 42, false)

	if err := model.Step(context.Background(), 0); err == nil {
		t.Fatal("expected Step to propagate a fatal field I/O error")
	}
}

func TestStepAdvancesAllParticlesAndBumpsStepIndex(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 1, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{
		{ID: 0, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active},
		{ID: 1, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active},
	}
	model := NewModel(m, src, trivialNumMethod{}, particles, 1.0, 42, false)

	if err := model.Step(context.Background(), 0); err != nil {
		t.Fatalf("Step: %v", err)
	}
	for _, p := range particles {
		if p.X != 1 {
			t.Errorf("particle %d X = %v, want 1", p.ID, p.X)
		}
	}
	if model.stepIndex != 1 {
		t.Errorf("stepIndex = %d, want 1", model.stepIndex)
	}
}

func TestStepBeachesAndUnbeachesParticle(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 1, v: 0, w: 0, wet: false}
	particles := []*particle.Particle{{ID: 0, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active}}
	model := NewModel(m, src, trivialNumMethod{}, particles, 1.0, 1, true)

	if err := model.Step(context.Background(), 0); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if particles[0].Status != particle.Beached {
		t.Fatalf("Status = %v, want Beached", particles[0].Status)
	}

	src.wet = true
	if err := model.Step(context.Background(), 1); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if particles[0].Status != particle.Active {
		t.Errorf("Status = %v, want Active after wet mask returns", particles[0].Status)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 1, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{{ID: 0, X: 0, Y: 0, Z: -0.5, Host: 0, Status: particle.Active}}
	model := NewModel(m, src, trivialNumMethod{}, particles, 1.0, 1, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := model.Run(ctx, 0, 10, nil); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}

func TestDiagnosticsReportsPositionAndStatus(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 0, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{{ID: 7, X: 0.2, Y: 0.3, Z: -0.4, Host: 0, Status: particle.Active}}
	model := NewModel(m, src, trivialNumMethod{}, particles, 1.0, 1, false)

	diags, err := model.Diagnostics(0)
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diags) != 1 || diags[0].ID != 7 || diags[0].X != 0.2 || diags[0].Bathymetry != 10 || diags[0].Status != particle.Active {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestLogWritesOneLinePerStep(t *testing.T) {
	m := buildOneElementMesh(t)
	src := &fakeSource{u: 0, v: 0, w: 0, wet: true}
	particles := []*particle.Particle{{ID: 0, Status: particle.Active, Host: 0}}
	model := NewModel(m, src, trivialNumMethod{}, particles, 1.0, 1, false)

	var buf bytes.Buffer
	logFn := Log(&buf)
	if err := model.Run(context.Background(), 0, 3, logFn); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != 3 {
		t.Errorf("log wrote %d lines, want 3 (one per step over t in [0, 3) with dt=1)", got)
	}
}
