package itmethod

import (
	"math/rand"

	"github.com/oceanmodel/lagtrack/field"
	"github.com/oceanmodel/lagtrack/particle"
)

// RK4 is the deterministic 4-stage Runge-Kutta advection method (spec
// §4.D.1). Stages are evaluated at (t, t+h/2, t+h/2, t+h); between stages
// a temporary copy of p is relocated, and a land/open crossing aborts the
// step early with a zeroed delta.
type RK4 struct{}

func derivative(src field.Source, t float64, q *particle.Particle) (dx, dy, dz float64, status Status, err error) {
	u, v, omega, err := src.GetVelocity(t, q)
	if err != nil {
		return 0, 0, 0, Classify(err), err
	}
	return u, v, omega, OK, nil
}

// Step implements Method.
func (RK4) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, _ *rand.Rand) (Status, error) {
	out.Reset()

	k1x, k1y, k1z, status, err := derivative(src, t, p)
	if status != OK {
		return status, err
	}

	q2 := *p
	q2.X, q2.Y, q2.Z = p.X+0.5*dt*k1x, p.Y+0.5*dt*k1y, p.Z+0.5*dt*k1z
	if status, err = relocate(src, t+0.5*dt, &q2); status != OK {
		return status, err
	}
	k2x, k2y, k2z, status, err := derivative(src, t+0.5*dt, &q2)
	if status != OK {
		return status, err
	}

	q3 := *p
	q3.X, q3.Y, q3.Z = p.X+0.5*dt*k2x, p.Y+0.5*dt*k2y, p.Z+0.5*dt*k2z
	if status, err = relocate(src, t+0.5*dt, &q3); status != OK {
		return status, err
	}
	k3x, k3y, k3z, status, err := derivative(src, t+0.5*dt, &q3)
	if status != OK {
		return status, err
	}

	q4 := *p
	q4.X, q4.Y, q4.Z = p.X+dt*k3x, p.Y+dt*k3y, p.Z+dt*k3z
	if status, err = relocate(src, t+dt, &q4); status != OK {
		return status, err
	}
	k4x, k4y, k4z, status, err := derivative(src, t+dt, &q4)
	if status != OK {
		return status, err
	}

	out.DX = dt * (k1x + 2*k2x + 2*k3x + k4x) / 6
	out.DY = dt * (k1y + 2*k2y + 2*k3y + k4y) / 6
	out.DZ = dt * (k1z + 2*k2z + 2*k3z + k4z) / 6
	return OK, nil
}

// Euler is the first-order deterministic advection alternative
// (NUMERICS.adv_iterative_method = "euler"): a single derivative
// evaluation at t, no intermediate relocation check.
type Euler struct{}

// Step implements Method.
func (Euler) Step(src field.Source, t float64, p *particle.Particle, dt float64, out *particle.Delta, _ *rand.Rand) (Status, error) {
	out.Reset()
	dx, dy, dz, status, err := derivative(src, t, p)
	if status != OK {
		return status, err
	}
	out.DX, out.DY, out.DZ = dt*dx, dt*dy, dt*dz
	return OK, nil
}
