// Package nummethod composes the itmethod per-substep displacement
// contributions into the full per-timestep update, and drives the
// boundary-condition / host-recompute sequence that follows each
// tentative position advance (spec §4.E).
package nummethod

import (
	"math/rand"

	"github.com/oceanmodel/lagtrack/boundary"
	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// DefaultMaxBCIters is the land-crossing retry budget spec §4.E names
// (NUMERICS has no key for this; it is a fixed constant in the source).
const DefaultMaxBCIters = 10

// NumMethod composes a timestep's worth of ItMethod substeps and applies
// the post-composition boundary sequence.
type NumMethod interface {
	Step(src field.Source, m *mesh.Mesh, t float64, p *particle.Particle, dt float64, rng *rand.Rand) (itmethod.Status, error)
}

// commit runs the post-composition sequence common to both Std and
// OperatorSplit (spec §4.E, numbered steps 1-5): tentatively advance,
// retry the horizontal BC on a land crossing up to maxBCIters times, mark
// out_of_domain on an open crossing or exhausted retries, apply the
// vertical BC, and recompute the sigma brackets on the committed
// position.
func commit(src field.Source, m *mesh.Mesh, horiz boundary.Horizontal, vert boundary.Vertical, maxBCIters int, tNew float64, p *particle.Particle, delta particle.Delta) (itmethod.Status, error) {
	oldX, oldY, oldHost := p.X, p.Y, p.Host
	newX, newY := p.X+delta.DX, p.Y+delta.DY
	newZ := p.Z + delta.DZ

	status, host, phi := src.FindHost(p, newX, newY)
	for iters := 0; status == mesh.LandCross && iters < maxBCIters; iters++ {
		cx, cy, err := horiz.Apply(m, oldX, oldY, oldHost, newX, newY, host)
		if err != nil {
			return itmethod.Classify(err), err
		}
		newX, newY = cx, cy
		status, host, phi = src.FindHost(p, newX, newY)
	}

	switch status {
	case mesh.Inside:
		// fall through
	case mesh.LandCross, mesh.SearchFail:
		p.Status = particle.OutOfDomain
		return itmethod.LandHit, nil
	case mesh.OpenCross:
		p.Status = particle.OutOfDomain
		return itmethod.OpenHit, nil
	}

	p.X, p.Y, p.Host, p.Phi = newX, newY, host, phi

	zMin, err := src.GetZMin(tNew, p)
	if err != nil {
		return itmethod.Classify(err), err
	}
	zMax, err := src.GetZMax(tNew, p)
	if err != nil {
		return itmethod.Classify(err), err
	}
	if newZ < zMin || newZ > zMax {
		z, vstatus := vert.Apply(newZ, zMin, zMax)
		newZ = z
		if vstatus == boundary.VertAbsorbed {
			p.Z = newZ
			p.Status = particle.Absorbed
			return itmethod.OK, nil
		}
	}
	p.Z = newZ

	if err := src.SetLocalCoordinates(tNew, p); err != nil {
		return itmethod.Classify(err), err
	}
	return itmethod.OK, nil
}
