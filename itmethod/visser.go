package itmethod

import (
	"math"
	"math/rand"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/particle"
)

// rWell is the well-mixed-condition random-walk scale: R is drawn
// Uniform(-1,1) (Var(R)=1/3), so dividing by r=1/3 normalises Var(R)*r=1
// (spec §4.D.2/3).
const rWell = 1.0 / 3.0

// VisserRW is the well-mixed-consistent vertical random walk (spec
// §4.D.2): an advective correction from the diffusivity gradient at a
// probed midpoint, reflected back into [zmin, zmax] if the probe would
// otherwise leave the water column.
type VisserRW struct{}

// Step implements Method.
func (VisserRW) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, rng *rand.Rand) (Status, error) {
	out.Reset()

	kPrime, err := src.GetVerticalEddyDiffusivityDerivative(t, p)
	if err != nil {
		return Classify(err), err
	}
	zMin, err := src.GetZMin(t, p)
	if err != nil {
		return Classify(err), err
	}
	zMax, err := src.GetZMax(t, p)
	if err != nil {
		return Classify(err), err
	}

	zStar := p.Z + 0.5*kPrime*dt
	if zStar > zMax {
		zStar = 2*zMax - zStar
	}
	if zStar < zMin {
		zStar = 2*zMin - zStar
	}

	probe := *p
	probe.Z = zStar
	if err := src.SetLocalCoordinates(t, &probe); err != nil {
		return Classify(err), err
	}
	kMid, err := src.GetVerticalEddyDiffusivity(t, &probe)
	if err != nil {
		return Classify(err), err
	}
	if kMid < 0 {
		return NumericalFault, errNegativeDiffusivity
	}

	r := rng.Float64()*2 - 1 // Uniform(-1, 1)
	out.DZ = kPrime*dt + r*math.Sqrt(2*kMid*dt/rWell)
	return OK, nil
}

// NaiveRW is the vertical random walk without the Visser advective
// correction (NUMERICS.diff_iterative_method = "naive"): it is not
// well-mixed-consistent in a non-uniform diffusivity field, but is kept
// as the cheaper configuration option the spec names.
type NaiveRW struct{}

// Step implements Method.
func (NaiveRW) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, rng *rand.Rand) (Status, error) {
	out.Reset()
	k, err := src.GetVerticalEddyDiffusivity(t, p)
	if err != nil {
		return Classify(err), err
	}
	if k < 0 {
		return NumericalFault, errNegativeDiffusivity
	}
	r := rng.Float64()*2 - 1
	out.DZ = r * math.Sqrt(2*k*dt/rWell)
	return OK, nil
}
