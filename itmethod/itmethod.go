// Package itmethod holds the per-substep iterative methods that produce a
// single displacement contribution each: deterministic advection (RK4,
// Euler) and stochastic mixing (Visser vertical random walk, naive
// vertical random walk, 2D horizontal random walk). A NumMethod composes
// one or more of these into the displacement for a full timestep (spec
// §4.D).
package itmethod

import (
	"errors"
	"math/rand"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

var errSearchFail = errors.New("itmethod: host search failed to converge")

// Status is the outcome of a single ItMethod step.
type Status int

const (
	// OK means outDelta was filled in normally.
	OK Status = iota
	// LandHit means an intermediate re-location crossed a land edge;
	// outDelta is zeroed. Std and OperatorSplit return it without
	// committing, and the driver leaves the particle where it was for
	// that step; no horizontal BC is applied for it.
	LandHit
	// OpenHit means an intermediate re-location crossed an open
	// boundary; outDelta is zeroed and the caller should mark the
	// particle out_of_domain.
	OpenHit
	// DomainError means the field source returned a fatal I/O fault
	// (FieldIOError/FieldIOTimeout); the caller must abort the run.
	DomainError
	// NumericalFault means a per-particle condition (a non-finite
	// sample, a negative diffusivity, a host search that failed to
	// converge) made this step's result unusable. Per the recovery
	// policy (spec §7) this is not fatal: the caller marks the particle
	// out_of_domain and continues the run for the rest of the array.
	NumericalFault
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case LandHit:
		return "land_hit"
	case OpenHit:
		return "open_hit"
	case DomainError:
		return "domain_error"
	case NumericalFault:
		return "numerical_fault"
	default:
		return "unknown"
	}
}

// Classify turns an error returned by a field.Source call into the Status
// a NumMethod/Method caller should report: FieldIOError and FieldIOTimeout
// are the only fatal conditions (spec §7 Recovery Policy); everything else
// — a non-finite sample, a negative diffusivity, a boundary escape, a
// failed host search — is a per-particle fault the caller absorbs instead
// of aborting the run.
func Classify(err error) Status {
	var ioErr *field.IOError
	var ioTimeout *field.IOTimeout
	if errors.As(err, &ioErr) || errors.As(err, &ioTimeout) {
		return DomainError
	}
	return NumericalFault
}

// Method is a single per-substep displacement contribution. rng is the
// RNG stream for this particle/step/substep tuple (spec §4.D.2 "RNG
// contract"); deterministic methods such as RK4 and Euler ignore it.
type Method interface {
	Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, rng *rand.Rand) (Status, error)
}

// relocate re-runs host location on a temporary copy q after an
// intermediate position update, reporting LandHit/OpenHit instead of
// erroring the way field.Source.SetLocalCoordinates does, so RK4's
// intermediate-stage check (spec §4.D.1) can distinguish them. A search
// that fails to converge is a per-particle fault, not a fatal one: the
// caller marks the particle out_of_domain and moves on (spec §7).
func relocate(src field.Source, t float64, q *particle.Particle) (Status, error) {
	status, host, phi := src.FindHost(q, q.X, q.Y)
	switch status {
	case mesh.Inside:
		q.Host, q.Phi = host, phi
		if err := src.SetLocalCoordinates(t, q); err != nil {
			return Classify(err), err
		}
		return OK, nil
	case mesh.LandCross:
		return LandHit, nil
	case mesh.OpenCross:
		return OpenHit, nil
	default:
		return NumericalFault, errSearchFail
	}
}
