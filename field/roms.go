package field

// ROMS is a structured Arakawa-C model: u and v live on separate
// staggered xi/eta grids, not at triangle centroids. This adapter assumes
// a preprocessing step (out of core, per spec §1 "Out of scope": "input-
// file I/O and format adapters") has already regridded ROMS output onto
// the tracking mesh's element/node layout and written it with the
// variable names below, so the reader here is the same time-slicing
// cdfLoader the FVCOM adapter uses.
var romsDefaultVars = map[string]string{
	VarU:    "u_eastward",
	VarV:    "v_northward",
	VarOm:   "w",
	VarKh:   "AKs",
	VarAh:   "visc3d_r",
	VarZeta: "zeta",
	VarWet:  "mask_rho",
}

// NewROMSLoader opens a regridded ROMS output file and returns a Loader
// over it. vars overrides the default variable name mapping.
func NewROMSLoader(path string, vars map[string]string) (Loader, error) {
	if vars == nil {
		vars = romsDefaultVars
	}
	return openCDFLoader(path, "ocean_time", vars)
}
