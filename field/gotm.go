package field

import "fmt"

// GOTM is a 1-D water-column turbulence model: no horizontal mesh, just a
// vertical profile per time step. A GOTM-driven run uses a degenerate
// single-triangle mesh (one element, three coincident-in-practice nodes)
// so the rest of the sampler's triangle machinery is a no-op. This loader
// reads GOTM's column variables and returns them exactly as stored on
// disk; it does not reshape or broadcast them onto the package's
// [layer][node-or-elem] convention.
type gotmLoader struct {
	inner *cdfLoader
}

var gotmDefaultVars = map[string]string{
	VarKh:   "num", // eddy viscosity/diffusivity profile
	VarAh:   "nuh",
	VarZeta: "zeta",
}

// NewGOTMLoader opens a GOTM output file and returns a Loader producing
// single-column snapshots.
func NewGOTMLoader(path string, vars map[string]string) (Loader, error) {
	if vars == nil {
		vars = gotmDefaultVars
	}
	inner, err := openCDFLoader(path, "time", vars)
	if err != nil {
		return nil, err
	}
	return &gotmLoader{inner: inner}, nil
}

func (l *gotmLoader) LoadSnapshot(t float64) (last, next *Snapshot, err error) {
	last, next, err = l.inner.LoadSnapshot(t)
	if err != nil {
		return nil, nil, fmt.Errorf("field: gotm: %v", err)
	}
	return last, next, nil
}
