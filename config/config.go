// Package config resolves the on-disk configuration file into the
// resolved record the core driver consumes (spec §6 "Configuration
// record"). Parsing and validation happen once, at startup; the core
// itself never touches viper or the filesystem.
package config

import (
	"fmt"

	"github.com/lnashier/viper"
)

// DepthCoordinates selects whether particle z is tracked in sigma or in
// cartesian metres.
type DepthCoordinates string

const (
	DepthSigma     DepthCoordinates = "sigma"
	DepthCartesian DepthCoordinates = "cartesian"
)

// CoordinateSystem selects whether x,y are cartesian or geographic
// (lon/lat, requiring the tangent-plane projection in reflection).
type CoordinateSystem string

const (
	CoordCartesian  CoordinateSystem = "cartesian"
	CoordGeographic CoordinateSystem = "geographic"
)

// NumMethodKind selects the NUMERICS.num_method composition.
type NumMethodKind string

const (
	NumStandard        NumMethodKind = "standard"
	NumOperatorSplit0   NumMethodKind = "operator_split_0"
)

// AdvMethodKind selects NUMERICS.adv_iterative_method.
type AdvMethodKind string

const (
	AdvRK4   AdvMethodKind = "rk4"
	AdvEuler AdvMethodKind = "euler"
	AdvNone  AdvMethodKind = "none"
)

// DiffMethodKind selects NUMERICS.diff_iterative_method.
type DiffMethodKind string

const (
	DiffVisser DiffMethodKind = "visser"
	DiffNaive  DiffMethodKind = "naive"
	DiffNone   DiffMethodKind = "none"
)

// HorizBoundKind selects BOUNDARY_CONDITIONS.horiz_bound_cond.
type HorizBoundKind string

const (
	HorizReflecting HorizBoundKind = "reflecting"
	HorizRestoring  HorizBoundKind = "restoring"
	HorizNone       HorizBoundKind = "none"
)

// VertBoundKind selects BOUNDARY_CONDITIONS.vert_bound_cond.
type VertBoundKind string

const (
	VertReflecting     VertBoundKind = "reflecting"
	VertAbsorbingBottom VertBoundKind = "absorbing_bottom"
	VertNone           VertBoundKind = "none"
)

// Config is the resolved configuration record the driver consumes (spec
// §6). It is passed by value once assembled; the core never re-reads it
// from viper.
type Config struct {
	Simulation struct {
		TimeStep                       float64
		StartDatetime, EndDatetime      string
		DepthCoordinates               DepthCoordinates
		CoordinateSystem               CoordinateSystem
		SurfaceOnly                    bool
		DepthRestoring                 bool
		FixedDepth                     float64
		HeightRestoring                bool
		FixedHeight                    float64
		AllowBeaching                  bool
	}
	Numerics struct {
		NumMethod         NumMethodKind
		NInnerSteps       int
		AdvIterativeMethod  AdvMethodKind
		DiffIterativeMethod DiffMethodKind
	}
	BoundaryConditions struct {
		HorizBoundCond HorizBoundKind
		VertBoundCond  VertBoundKind
	}
	General struct {
		LogLevel    string
		FullLogging bool
	}
}

// ConfigError is returned for invalid key combinations (spec §7:
// "ConfigError: fatal at startup").
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// Load reads a TOML configuration file via viper and resolves it into a
// validated Config, grounded in inmaputil/cmd.go's setConfig +
// VarGridConfig pattern of reading a typed record off a *viper.Viper
// instance rather than handing the raw map to callers.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("LAGTRACK")
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return resolve(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NUMERICS.num_method", string(NumStandard))
	v.SetDefault("NUMERICS.n_inner_steps", 1)
	v.SetDefault("NUMERICS.adv_iterative_method", string(AdvRK4))
	v.SetDefault("NUMERICS.diff_iterative_method", string(DiffVisser))
	v.SetDefault("BOUNDARY_CONDITIONS.horiz_bound_cond", string(HorizReflecting))
	v.SetDefault("BOUNDARY_CONDITIONS.vert_bound_cond", string(VertReflecting))
	v.SetDefault("SIMULATION.depth_coordinates", string(DepthSigma))
	v.SetDefault("SIMULATION.coordinate_system", string(CoordCartesian))
	v.SetDefault("GENERAL.log_level", "info")
}

func resolve(v *viper.Viper) (*Config, error) {
	var c Config

	c.Simulation.TimeStep = v.GetFloat64("SIMULATION.time_step")
	if c.Simulation.TimeStep <= 0 {
		return nil, &ConfigError{Msg: "SIMULATION.time_step must be > 0"}
	}
	c.Simulation.StartDatetime = v.GetString("SIMULATION.start_datetime")
	c.Simulation.EndDatetime = v.GetString("SIMULATION.end_datetime")
	c.Simulation.DepthCoordinates = DepthCoordinates(v.GetString("SIMULATION.depth_coordinates"))
	c.Simulation.CoordinateSystem = CoordinateSystem(v.GetString("SIMULATION.coordinate_system"))
	c.Simulation.SurfaceOnly = v.GetBool("SIMULATION.surface_only")
	c.Simulation.DepthRestoring = v.GetBool("SIMULATION.depth_restoring")
	c.Simulation.FixedDepth = v.GetFloat64("SIMULATION.fixed_depth")
	c.Simulation.HeightRestoring = v.GetBool("SIMULATION.height_restoring")
	c.Simulation.FixedHeight = v.GetFloat64("SIMULATION.fixed_height")
	c.Simulation.AllowBeaching = v.GetBool("SIMULATION.allow_beaching")

	if c.Simulation.DepthRestoring && c.Simulation.HeightRestoring {
		return nil, &ConfigError{Msg: "SIMULATION.depth_restoring and SIMULATION.height_restoring are mutually exclusive"}
	}
	if c.Simulation.DepthRestoring && c.Simulation.FixedDepth > 0 {
		return nil, &ConfigError{Msg: "SIMULATION.fixed_depth must be <= 0"}
	}
	if c.Simulation.HeightRestoring && c.Simulation.FixedHeight < 0 {
		return nil, &ConfigError{Msg: "SIMULATION.fixed_height must be >= 0"}
	}
	if c.Simulation.DepthCoordinates != DepthSigma && c.Simulation.DepthCoordinates != DepthCartesian {
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised SIMULATION.depth_coordinates %q", c.Simulation.DepthCoordinates)}
	}
	if c.Simulation.CoordinateSystem != CoordCartesian && c.Simulation.CoordinateSystem != CoordGeographic {
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised SIMULATION.coordinate_system %q", c.Simulation.CoordinateSystem)}
	}

	c.Numerics.NumMethod = NumMethodKind(v.GetString("NUMERICS.num_method"))
	c.Numerics.NInnerSteps = v.GetInt("NUMERICS.n_inner_steps")
	c.Numerics.AdvIterativeMethod = AdvMethodKind(v.GetString("NUMERICS.adv_iterative_method"))
	c.Numerics.DiffIterativeMethod = DiffMethodKind(v.GetString("NUMERICS.diff_iterative_method"))
	switch c.Numerics.NumMethod {
	case NumStandard, NumOperatorSplit0:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised NUMERICS.num_method %q", c.Numerics.NumMethod)}
	}
	if c.Numerics.NumMethod == NumOperatorSplit0 && c.Numerics.NInnerSteps < 1 {
		return nil, &ConfigError{Msg: "NUMERICS.n_inner_steps must be >= 1 for operator_split_0"}
	}
	switch c.Numerics.AdvIterativeMethod {
	case AdvRK4, AdvEuler, AdvNone:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised NUMERICS.adv_iterative_method %q", c.Numerics.AdvIterativeMethod)}
	}
	switch c.Numerics.DiffIterativeMethod {
	case DiffVisser, DiffNaive, DiffNone:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised NUMERICS.diff_iterative_method %q", c.Numerics.DiffIterativeMethod)}
	}

	c.BoundaryConditions.HorizBoundCond = HorizBoundKind(v.GetString("BOUNDARY_CONDITIONS.horiz_bound_cond"))
	c.BoundaryConditions.VertBoundCond = VertBoundKind(v.GetString("BOUNDARY_CONDITIONS.vert_bound_cond"))
	switch c.BoundaryConditions.HorizBoundCond {
	case HorizReflecting, HorizRestoring, HorizNone:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised BOUNDARY_CONDITIONS.horiz_bound_cond %q", c.BoundaryConditions.HorizBoundCond)}
	}
	switch c.BoundaryConditions.VertBoundCond {
	case VertReflecting, VertAbsorbingBottom, VertNone:
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unrecognised BOUNDARY_CONDITIONS.vert_bound_cond %q", c.BoundaryConditions.VertBoundCond)}
	}

	c.General.LogLevel = v.GetString("GENERAL.log_level")
	c.General.FullLogging = v.GetBool("GENERAL.full_logging")

	return &c, nil
}
