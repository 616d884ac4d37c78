// Package field binds mesh topology to time-indexed field snapshots and
// answers the per-particle sampling queries the iterative methods need:
// velocity, vertical eddy diffusivity and its derivative, horizontal eddy
// viscosity and its gradient, the vertical domain bounds, bathymetry, sea
// surface elevation and the wet mask (spec §4.C "Field Sampler").
package field

import (
	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// Loader reads whatever snapshot pair brackets time t from an underlying
// data source. Implementations (fvcom.go, roms.go, gotm.go) wrap the
// format-specific netCDF stagger conventions; FieldSource callers never
// see them directly.
type Loader interface {
	// LoadSnapshot returns the field snapshot valid at or immediately
	// before t, and the snapshot following it. Sampler uses the pair to
	// populate its Buffer.
	LoadSnapshot(t float64) (last, next *Snapshot, err error)
}

// Source is the sole interface between the core and the I/O layer (spec
// §6 "FieldSource trait"). All particle-taking methods assume
// SetLocalCoordinates has already been run on p for the current (t, p.X,
// p.Y, p.Z); none of them perform host location themselves except
// FindHost and SetLocalCoordinates.
type Source interface {
	// ReadData advances the reading frame if t is outside the current
	// buffer's validity window; a no-op otherwise.
	ReadData(t float64) error

	// SetLocalCoordinates fills p.Phi, p.Host (if stale) and the sigma
	// layer/level brackets. t is needed to convert p.Z to sigma under
	// depth_coordinates=cartesian, where GetSeaSurElev is time-varying.
	SetLocalCoordinates(t float64, p *particle.Particle) error

	GetVelocity(t float64, p *particle.Particle) (u, v, omega float64, err error)
	GetVerticalEddyDiffusivity(t float64, p *particle.Particle) (kh float64, err error)
	GetVerticalEddyDiffusivityDerivative(t float64, p *particle.Particle) (dkdz float64, err error)
	GetHorizontalEddyViscosity(t float64, p *particle.Particle) (ah float64, err error)
	GetHorizontalEddyViscosityGrad(t float64, p *particle.Particle) (dAdx, dAdy float64, err error)

	GetZMin(t float64, p *particle.Particle) (float64, error)
	GetZMax(t float64, p *particle.Particle) (float64, error)

	GetBathymetry(p *particle.Particle) (float64, error)
	GetSeaSurElev(t float64, p *particle.Particle) (float64, error)

	IsWet(t float64, host int) (bool, error)

	FindHost(p *particle.Particle, xNew, yNew float64) (status mesh.CrossStatus, host int, phi [3]float64)
}
