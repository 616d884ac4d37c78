// Package factory translates a resolved config.Config into the concrete
// itmethod.Method, nummethod.NumMethod and boundary.Horizontal/Vertical
// instances the driver runs (spec §9: "Factories translate configuration
// strings into the concrete variant"), the same role inmaputil/cmd.go's
// option table plays in mapping flag/config values onto a VarGridConfig.
package factory

import (
	"fmt"

	"github.com/oceanmodel/lagtrack/boundary"
	"github.com/oceanmodel/lagtrack/config"
	"github.com/oceanmodel/lagtrack/itmethod"
	"github.com/oceanmodel/lagtrack/nummethod"
)

// AdvMethod returns the itmethod.Method NUMERICS.adv_iterative_method
// selects.
func AdvMethod(kind config.AdvMethodKind) (itmethod.Method, error) {
	switch kind {
	case config.AdvRK4:
		return itmethod.RK4{}, nil
	case config.AdvEuler:
		return itmethod.Euler{}, nil
	case config.AdvNone:
		return itmethod.NoOp{}, nil
	default:
		return nil, fmt.Errorf("factory: unrecognised adv_iterative_method %q", kind)
	}
}

// DiffMethod returns the itmethod.Method NUMERICS.diff_iterative_method
// selects for the vertical stochastic term. The horizontal random walk
// is always itmethod.HorizRW when diffusion is enabled at all, and NoOp
// when it is not (spec §4.D.3: "the horizontal random walk runs whenever
// any diffusive term is active").
func DiffMethod(kind config.DiffMethodKind) (vert, horiz itmethod.Method, err error) {
	switch kind {
	case config.DiffVisser:
		return itmethod.VisserRW{}, itmethod.HorizRW{}, nil
	case config.DiffNaive:
		return itmethod.NaiveRW{}, itmethod.HorizRW{}, nil
	case config.DiffNone:
		return itmethod.NoOp{}, itmethod.NoOp{}, nil
	default:
		return nil, nil, fmt.Errorf("factory: unrecognised diff_iterative_method %q", kind)
	}
}

// HorizBoundary returns the boundary.Horizontal BOUNDARY_CONDITIONS.horiz_bound_cond
// selects.
func HorizBoundary(kind config.HorizBoundKind) (boundary.Horizontal, error) {
	switch kind {
	case config.HorizReflecting:
		return boundary.Reflecting{}, nil
	case config.HorizRestoring:
		return boundary.Restoring{}, nil
	case config.HorizNone:
		return boundary.NoneHorizontal{}, nil
	default:
		return nil, fmt.Errorf("factory: unrecognised horiz_bound_cond %q", kind)
	}
}

// VertBoundary returns the boundary.Vertical BOUNDARY_CONDITIONS.vert_bound_cond
// selects.
func VertBoundary(kind config.VertBoundKind) (boundary.Vertical, error) {
	switch kind {
	case config.VertReflecting:
		return boundary.VReflecting{}, nil
	case config.VertAbsorbingBottom:
		return boundary.AbsorbingBottom{}, nil
	case config.VertNone:
		return boundary.NoneVertical{}, nil
	default:
		return nil, fmt.Errorf("factory: unrecognised vert_bound_cond %q", kind)
	}
}

// NumMethod assembles the composed nummethod.NumMethod (spec §4.E
// "standard" or "operator_split_0") from c's NUMERICS and
// BOUNDARY_CONDITIONS sections.
func NumMethod(c *config.Config) (nummethod.NumMethod, error) {
	adv, err := AdvMethod(c.Numerics.AdvIterativeMethod)
	if err != nil {
		return nil, err
	}
	vertRW, horizRW, err := DiffMethod(c.Numerics.DiffIterativeMethod)
	if err != nil {
		return nil, err
	}
	horiz, err := HorizBoundary(c.BoundaryConditions.HorizBoundCond)
	if err != nil {
		return nil, err
	}
	vert, err := VertBoundary(c.BoundaryConditions.VertBoundCond)
	if err != nil {
		return nil, err
	}

	switch c.Numerics.NumMethod {
	case config.NumStandard:
		return nummethod.Std{
			Adv: adv, VertRW: vertRW, HorizRW: horizRW,
			Horiz: horiz, Vert: vert, MaxBCIters: nummethod.DefaultMaxBCIters,
		}, nil
	case config.NumOperatorSplit0:
		return nummethod.OperatorSplit{
			Adv: adv, VertRW: vertRW, HorizRW: horizRW, NInner: c.Numerics.NInnerSteps,
			Horiz: horiz, Vert: vert, MaxBCIters: nummethod.DefaultMaxBCIters,
		}, nil
	default:
		return nil, fmt.Errorf("factory: unrecognised num_method %q", c.Numerics.NumMethod)
	}
}
