// Package meshio reads unstructured-mesh topology off disk into a
// mesh.Mesh. Grid-file I/O sits outside the core per spec §1 ("input-file
// I/O and format adapters... are out of scope, treated as external
// collaborators whose interfaces the core consumes"); this package is
// that collaborator's CLI-facing implementation, reading the same FVCOM
// netCDF convention field/fvcom.go's variable reads assume, via the same
// ctessum/cdf reader field/cdfloader.go uses for time-varying snapshots.
package meshio

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"

	"github.com/oceanmodel/lagtrack/mesh"
)

// NetCDFVars names the on-disk variables LoadNetCDF reads. The defaults
// match FVCOM's own grid-file output. NBE is expected to already carry
// mesh.Land/mesh.Open sentinel values at domain edges, the way a
// preprocessing step would leave it for the rest of the out-of-core I/O
// layer per spec §1.
type NetCDFVars struct {
	NV, NBE        string
	X, Y, H        string
	SigLay, SigLev string
	A1U, A2U       string
}

// DefaultNetCDFVars is FVCOM's grid-file variable naming convention.
var DefaultNetCDFVars = NetCDFVars{
	NV: "nv", NBE: "nbe",
	X: "x", Y: "y", H: "h",
	SigLay: "siglay", SigLev: "siglev",
	A1U: "a1u", A2U: "a2u",
}

// LoadNetCDF reads the mesh topology and precomputed LLS coefficients
// named by vars (pass a zero NetCDFVars to use DefaultNetCDFVars) and
// returns a built mesh.Mesh.
func LoadNetCDF(path string, vars NetCDFVars) (*mesh.Mesh, error) {
	if vars == (NetCDFVars{}) {
		vars = DefaultNetCDFVars
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: opening %s: %v", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: reading netcdf header of %s: %v", path, err)
	}

	nElems := cf.Header.Lengths(vars.NV)[0]
	nNodes := cf.Header.Lengths(vars.X)[0]

	nvFlat := make([]float64, nElems*3)
	if _, err := cf.Reader(vars.NV, nil, nil).Read(nvFlat); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.NV, err)
	}
	nbeFlat := make([]float64, nElems*3)
	if _, err := cf.Reader(vars.NBE, nil, nil).Read(nbeFlat); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.NBE, err)
	}
	a1uFlat := make([]float64, nElems*4)
	if _, err := cf.Reader(vars.A1U, nil, nil).Read(a1uFlat); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.A1U, err)
	}
	a2uFlat := make([]float64, nElems*4)
	if _, err := cf.Reader(vars.A2U, nil, nil).Read(a2uFlat); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.A2U, err)
	}

	nv := make([][3]int, nElems)
	nbe := make([][3]int, nElems)
	a1u := make([][4]float64, nElems)
	a2u := make([][4]float64, nElems)
	for e := 0; e < nElems; e++ {
		for i := 0; i < 3; i++ {
			nv[e][i] = int(nvFlat[e*3+i])
			nbe[e][i] = int(nbeFlat[e*3+i])
		}
		for i := 0; i < 4; i++ {
			a1u[e][i] = a1uFlat[e*4+i]
			a2u[e][i] = a2uFlat[e*4+i]
		}
	}

	x := make([]float64, nNodes)
	if _, err := cf.Reader(vars.X, nil, nil).Read(x); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.X, err)
	}
	y := make([]float64, nNodes)
	if _, err := cf.Reader(vars.Y, nil, nil).Read(y); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.Y, err)
	}
	h := make([]float64, nNodes)
	if _, err := cf.Reader(vars.H, nil, nil).Read(h); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", vars.H, err)
	}

	siglay, err := read2D(cf, vars.SigLay, nNodes)
	if err != nil {
		return nil, err
	}
	siglev, err := read2D(cf, vars.SigLev, nNodes)
	if err != nil {
		return nil, err
	}

	return mesh.Build(nv, nbe, x, y, siglev, siglay, h, a1u, a2u)
}

// read2D reads a [layer][node] variable stored as a flat (layer, node)
// array into a [][]float64 with one row per layer.
func read2D(cf *cdf.File, name string, nNodes int) ([][]float64, error) {
	lengths := cf.Header.Lengths(name)
	if len(lengths) != 2 {
		return nil, fmt.Errorf("meshio: %q is not a 2D (layer, node) variable", name)
	}
	nLayers := lengths[0]
	flat := make([]float64, nLayers*nNodes)
	if _, err := cf.Reader(name, nil, nil).Read(flat); err != nil {
		return nil, fmt.Errorf("meshio: reading %q: %v", name, err)
	}
	out := make([][]float64, nLayers)
	for l := 0; l < nLayers; l++ {
		out[l] = flat[l*nNodes : (l+1)*nNodes]
	}
	return out, nil
}
