package field

// FVCOM output already carries the exact stagger the core expects: u, v
// at element centres on siglay, omega and kh at nodes on siglev, ah at
// nodes on siglay, zeta at nodes with no vertical dimension (spec §3, §6
// "FVCOM" implementation). The default variable names below match FVCOM's
// own netCDF output convention; callers with renamed variables can supply
// their own map.
var fvcomDefaultVars = map[string]string{
	VarU:    "u",
	VarV:    "v",
	VarOm:   "omega",
	VarKh:   "km",
	VarAh:   "mfm1",
	VarZeta: "zeta",
	VarWet:  "wet_cells",
}

// NewFVCOMLoader opens an FVCOM output file and returns a Loader over it.
// vars overrides the default canonical-to-netCDF variable name mapping;
// pass nil to use fvcomDefaultVars.
func NewFVCOMLoader(path string, vars map[string]string) (Loader, error) {
	if vars == nil {
		vars = fvcomDefaultVars
	}
	return openCDFLoader(path, "time", vars)
}
