package nummethod

import (
	"math/rand"

	"github.com/oceanmodel/lagtrack/boundary"
	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// Std is NUMERICS.num_method = "standard": a single evaluation of the
// advective method plus the two stochastic methods, summed into one
// delta and committed through one boundary-condition pass (spec §4.E:
// "Δ ← RK4(); Δ += VertRW(); Δ += HorizRW(); then BC loop").
type Std struct {
	Adv     itmethod.Method
	VertRW  itmethod.Method
	HorizRW itmethod.Method

	Horiz      boundary.Horizontal
	Vert       boundary.Vertical
	MaxBCIters int
}

// Step implements NumMethod.
func (s Std) Step(src field.Source, m *mesh.Mesh, t float64, p *particle.Particle, dt float64, rng *rand.Rand) (itmethod.Status, error) {
	var total, contrib particle.Delta

	if status, err := s.Adv.Step(src, t, p, dt, &contrib, rng); status != itmethod.OK {
		return status, err
	}
	total.Add(contrib)

	if status, err := s.VertRW.Step(src, t, p, dt, &contrib, rng); status != itmethod.OK {
		return status, err
	}
	total.Add(contrib)

	if status, err := s.HorizRW.Step(src, t, p, dt, &contrib, rng); status != itmethod.OK {
		return status, err
	}
	total.Add(contrib)

	maxIters := s.MaxBCIters
	if maxIters == 0 {
		maxIters = DefaultMaxBCIters
	}
	return commit(src, m, s.Horiz, s.Vert, maxIters, t+dt, p, total)
}
