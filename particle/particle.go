// Package particle defines the per-particle state record the driver owns,
// and the Delta accumulator that iterative methods write their
// displacement into. Iterative methods never modify the Particle they are
// given; position, host and status change in the NumMethod commit step the
// driver runs, and the field source's SetLocalCoordinates refreshes the
// cached host, barycentric weights and sigma brackets.
package particle

// Status is the lifecycle state of a particle (state machine, §4.D.4).
type Status int

const (
	// Active particles are advanced every step.
	Active Status = iota
	// OutOfDomain particles crossed an open boundary, or hit a numerical
	// fault during a step. Terminal.
	OutOfDomain
	// Beached particles sit over a dry (wet-mask false) element with
	// beaching allowed. Non-terminal: returns to Active once the host
	// element is wet again.
	Beached
	// Absorbed particles crossed an absorbing bottom boundary. Terminal.
	Absorbed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case OutOfDomain:
		return "out_of_domain"
	case Beached:
		return "beached"
	case Absorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

// Terminal reports whether a particle in this status is done being
// advanced (OutOfDomain, Absorbed); Beached is not terminal.
func (s Status) Terminal() bool {
	return s == OutOfDomain || s == Absorbed
}

// Particle is the per-particle state record (spec §3 "Particle"). Position
// x3 is in terrain-following sigma by convention; a driver configured for
// cartesian depth coordinates stores metres there instead, and the field
// sampler is responsible for treating it consistently.
//
// Particles hold no back-reference to the driver or the field source.
// Iterative methods read a Particle without modifying it and write
// displacement into a separate Delta; of the field source's methods, only
// SetLocalCoordinates writes into it.
type Particle struct {
	ID, GroupID int
	Status      Status

	X, Y, Z float64

	// Host is the index of the triangle currently containing the particle
	// in the mesh the driver's FieldSource consults.
	Host int

	// KLayerLower, KLayerUpper bracket the particle's position between
	// sigma layers for cell-centred, layer-defined fields (u, v, A_h);
	// BetaLayer is the interpolation weight between them.
	KLayerLower, KLayerUpper int
	BetaLayer                float64

	// KLevLower, KLevUpper bracket the particle's position between sigma
	// levels for node/level-defined fields (ω, k_h); BetaLevel is the
	// interpolation weight between them (spec §4.B "Sigma").
	KLevLower, KLevUpper int
	BetaLevel            float64

	// Phi is the cached barycentric coordinates of (X, Y) within Host.
	Phi [3]float64

	// InVerticalBoundaryLayer is set when the particle's z fell outside
	// the outermost sigma layer/level and was clamped there.
	InVerticalBoundaryLayer bool

	// IsBeached mirrors Status == Beached for callers that only care
	// about the boolean flag (spec §3 lists it alongside Status).
	IsBeached bool
}

// Delta is the per-step displacement accumulator a NumMethod fills in by
// summing the contributions of each ItMethod it composes (spec §3
// "Delta"). It must be reset before each NumMethod.step.
type Delta struct {
	DX, DY, DZ float64
}

// Reset zeroes the accumulator.
func (d *Delta) Reset() {
	d.DX, d.DY, d.DZ = 0, 0, 0
}

// Add accumulates another delta's contribution.
func (d *Delta) Add(o Delta) {
	d.DX += o.DX
	d.DY += o.DY
	d.DZ += o.DZ
}
