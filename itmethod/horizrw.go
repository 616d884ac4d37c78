package itmethod

import (
	"errors"
	"math"
	"math/rand"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/particle"
)

var errNegativeDiffusivity = errors.New("itmethod: negative eddy diffusivity/viscosity")

// HorizRW is the 2D horizontal random walk (spec §4.D.3), symmetric in x
// and y and using the same Uniform(-1,1) RNG convention as VisserRW.
type HorizRW struct{}

// Step implements Method.
func (HorizRW) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, rng *rand.Rand) (Status, error) {
	out.Reset()
	ah, err := src.GetHorizontalEddyViscosity(t, p)
	if err != nil {
		return Classify(err), err
	}
	if ah < 0 {
		return NumericalFault, errNegativeDiffusivity
	}
	dAdx, dAdy, err := src.GetHorizontalEddyViscosityGrad(t, p)
	if err != nil {
		return Classify(err), err
	}
	rx := rng.Float64()*2 - 1
	ry := rng.Float64()*2 - 1
	scale := math.Sqrt(2 * ah * dt / rWell)
	out.DX = dAdx*dt + rx*scale
	out.DY = dAdy*dt + ry*scale
	return OK, nil
}

// NoOp is the "none" configuration for either the advective or diffusive
// iterative method: a zero contribution, used when a caller wants to
// disable a term without restructuring the NumMethod composition.
type NoOp struct{}

// Step implements Method.
func (NoOp) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, _ *rand.Rand) (Status, error) {
	out.Reset()
	return OK, nil
}
