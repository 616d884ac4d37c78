package nummethod

import (
	"math/rand"

	"github.com/oceanmodel/lagtrack/boundary"
	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// OperatorSplit is NUMERICS.num_method = "operator_split_0": NInner
// advective sub-steps of size dt/NInner, each committed (with a
// boundary-condition check) before the next runs, followed by one outer
// diffusive sub-step of the full dt (spec §4.E "OS0").
type OperatorSplit struct {
	Adv     itmethod.Method
	VertRW  itmethod.Method
	HorizRW itmethod.Method
	NInner  int

	Horiz      boundary.Horizontal
	Vert       boundary.Vertical
	MaxBCIters int
}

// Step implements NumMethod.
func (s OperatorSplit) Step(src field.Source, m *mesh.Mesh, t float64, p *particle.Particle, dt float64, rng *rand.Rand) (itmethod.Status, error) {
	nInner := s.NInner
	if nInner < 1 {
		nInner = 1
	}
	maxIters := s.MaxBCIters
	if maxIters == 0 {
		maxIters = DefaultMaxBCIters
	}
	hInner := dt / float64(nInner)

	tInner := t
	for i := 0; i < nInner; i++ {
		var contrib particle.Delta
		status, err := s.Adv.Step(src, tInner, p, hInner, &contrib, rng)
		if status != itmethod.OK {
			return status, err
		}
		status, err = commit(src, m, s.Horiz, s.Vert, maxIters, tInner+hInner, p, contrib)
		if status != itmethod.OK || p.Status.Terminal() {
			return status, err
		}
		tInner += hInner
	}

	var diffusive, contrib particle.Delta
	status, err := s.VertRW.Step(src, t, p, dt, &contrib, rng)
	if status != itmethod.OK {
		return status, err
	}
	diffusive.Add(contrib)

	status, err = s.HorizRW.Step(src, t, p, dt, &contrib, rng)
	if status != itmethod.OK {
		return status, err
	}
	diffusive.Add(contrib)

	return commit(src, m, s.Horiz, s.Vert, maxIters, t+dt, p, diffusive)
}
