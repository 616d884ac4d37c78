// Package driver holds the particle array and drives the per-timestep
// loop: a serial FieldSource.ReadData, a data-parallel fan-out of
// NumMethod.Step over particles, and diagnostics emission (spec §4.G, §5
// "Concurrency & Resource Model").
package driver

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/internal/rngseed"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/nummethod"
	"github.com/oceanmodel/lagtrack/particle"
)

// Diagnostic is the per-particle snapshot the core exposes at the end of
// a timestep (spec §6 "Persisted state"). Layout and on-disk encoding of
// the diagnostics stream are outside the core.
type Diagnostic struct {
	ID             int
	X, Y, Z        float64
	Host           int
	Bathymetry     float64
	SeaSurElev     float64
	Status         particle.Status
}

// Model owns the particle array, the mesh and field source it reads
// against, and the composed NumMethod that advances each particle one
// timestep. During Step, the NumMethod's commit updates each particle's
// position, host and status and the field source's SetLocalCoordinates
// refreshes its cached coordinates; iterative methods only read a
// particle and fill a Delta.
type Model struct {
	Mesh      *mesh.Mesh
	Source    field.Source
	NumMethod nummethod.NumMethod
	Particles []*particle.Particle

	Dt            float64
	Seed          int64
	AllowBeaching bool

	stepIndex int
}

// NewModel returns a Model ready to Step from t0.
func NewModel(m *mesh.Mesh, src field.Source, nm nummethod.NumMethod, particles []*particle.Particle, dt float64, seed int64, allowBeaching bool) *Model {
	return &Model{
		Mesh: m, Source: src, NumMethod: nm, Particles: particles,
		Dt: dt, Seed: seed, AllowBeaching: allowBeaching,
	}
}

// Step advances every active particle by one timestep: a serial
// read_data, then a partitioned concurrent fan-out over the particle
// array mirroring run.go's Calculations — each worker owns a disjoint
// slice of particles (stride nprocs), and each particle's RNG stream is
// derived independently from its own (seed, id, step) tuple, so no lock is
// needed.
func (m *Model) Step(ctx context.Context, t float64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := m.Source.ReadData(t); err != nil {
		return err
	}

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	errs := make([]error, nprocs)

	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(m.Particles); ii += nprocs {
				if err := m.stepParticle(t, m.Particles[ii]); err != nil {
					errs[pp] = err
					return
				}
			}
		}(pp)
	}
	wg.Wait()
	m.stepIndex++

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) stepParticle(t float64, p *particle.Particle) error {
	if p.Status.Terminal() {
		return nil
	}

	if p.Status == particle.Beached {
		wet, err := m.Source.IsWet(t, p.Host)
		if err != nil {
			return err
		}
		if !wet {
			return nil
		}
		p.Status = particle.Active
		p.IsBeached = false
	}

	rng := rand.New(rand.NewSource(rngseed.Derive(m.Seed, p.ID, m.stepIndex, 0)))
	status, err := m.NumMethod.Step(m.Source, m.Mesh, t, p, m.Dt, rng)
	if err != nil {
		// A numerical fault (a non-finite sample, a negative
		// diffusivity, a host search that failed to converge) is a
		// per-particle condition, not a run-fatal one (spec §7
		// Recovery Policy): absorb it and keep the rest of the array
		// moving. Anything else is a fatal field I/O fault.
		if status == itmethod.NumericalFault {
			p.Status = particle.OutOfDomain
			return nil
		}
		return err
	}
	if status == itmethod.OpenHit {
		// An open-boundary crossing is terminal whether commit or an
		// intermediate advection stage reported it.
		p.Status = particle.OutOfDomain
	}

	if p.Status.Terminal() {
		return nil
	}
	if m.AllowBeaching {
		wet, err := m.Source.IsWet(t+m.Dt, p.Host)
		if err != nil {
			return err
		}
		if !wet {
			p.Status = particle.Beached
			p.IsBeached = true
		}
	}
	return nil
}

// Run advances the model from t0 in steps of m.Dt until tEnd, calling log
// after every step and stopping early on ctx cancellation (spec §5
// "cooperative cancellation between timesteps").
func (m *Model) Run(ctx context.Context, t0, tEnd float64, log func(t float64, m *Model) error) error {
	for t := t0; t < tEnd; t += m.Dt {
		if err := m.Step(ctx, t); err != nil {
			return fmt.Errorf("driver: step at t=%g: %w", t, err)
		}
		if log != nil {
			if err := log(t+m.Dt, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Diagnostics returns the get_diagnostics(t) snapshot spec §6 describes:
// one record per particle, position/host/status plus the static and
// dynamic depth fields a writer needs without re-querying the source.
func (m *Model) Diagnostics(t float64) ([]Diagnostic, error) {
	out := make([]Diagnostic, len(m.Particles))
	for i, p := range m.Particles {
		d := Diagnostic{ID: p.ID, X: p.X, Y: p.Y, Z: p.Z, Host: p.Host, Status: p.Status}
		if !p.Status.Terminal() {
			h, err := m.Source.GetBathymetry(p)
			if err != nil {
				return nil, err
			}
			zeta, err := m.Source.GetSeaSurElev(t, p)
			if err != nil {
				return nil, err
			}
			d.Bathymetry, d.SeaSurElev = h, zeta
		}
		out[i] = d
	}
	return out, nil
}

// Log returns a Run-compatible hook that writes one status line per
// timestep, grounded in run.go's Log(w io.Writer) DomainManipulator.
func Log(w io.Writer) func(t float64, m *Model) error {
	start := time.Now()
	last := time.Now()
	iteration := 0
	return func(t float64, m *Model) error {
		iteration++
		active := 0
		for _, p := range m.Particles {
			if !p.Status.Terminal() {
				active++
			}
		}
		fmt.Fprintf(w, "step %-5d  t=%10.1fs  walltime=%6.3gh  Δwalltime=%4.2gs  active=%d/%d\n",
			iteration, t, time.Since(start).Hours(), time.Since(last).Seconds(), active, len(m.Particles))
		last = time.Now()
		return nil
	}
}
