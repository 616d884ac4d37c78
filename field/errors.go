package field

import (
	"errors"
	"fmt"
)

// errNoData reports that a buffer was queried before any read_data call
// populated it.
var errNoData = errors.New("no snapshot loaded")

// IOError wraps a failure to read or advance field data from the
// underlying source (spec §7 "FieldIOError"). It is fatal: it surfaces to
// the driver rather than being absorbed per-particle.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("field: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// IOTimeout is IOError's timeout-specific variant (spec §7
// "FieldIOTimeout"), surfaced the same way.
type IOTimeout struct {
	Op string
}

func (e *IOTimeout) Error() string { return fmt.Sprintf("field: %s: timed out", e.Op) }

// BoundaryError reports that set_local_coordinates' host lookup escaped
// the domain (spec §4.C).
type BoundaryError struct {
	X, Y float64
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("field: host lookup escaped the domain at (%g, %g)", e.X, e.Y)
}

// NumericalError reports a NaN or infinite value surfacing from velocity
// or diffusivity sampling (spec §7 "NumericalError"). Callers mark the
// particle out_of_domain and continue the run rather than aborting it.
type NumericalError struct {
	Field string
}

func (e *NumericalError) Error() string { return fmt.Sprintf("field: non-finite %s", e.Field) }

// OutOfRangeError reports an interpolation fraction (time or sigma)
// outside [0,1] (spec §7 "OutOfRange"). Whether this is fatal or
// logged-and-clamped is a driver-level policy decision driven by
// full_logging; the field package always returns it and lets the caller
// decide.
type OutOfRangeError struct {
	Kind  string // "time" or "sigma"
	Value float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("field: %s interpolation fraction %g outside [0,1]", e.Kind, e.Value)
}
