// Package diagio writes driver.Diagnostic snapshots to a trajectory
// stream. Trajectory serialization sits outside the core per spec §1; this
// package is the CLI's minimal collaborator, one CSV row per particle per
// timestep.
package diagio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/oceanmodel/lagtrack/driver"
)

// CSVWriter appends one row per Diagnostic to an underlying io.Writer,
// writing a header on the first call.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write emits one row per diagnostic at model time t, flushing after
// each call so a tailing reader sees progress incrementally.
func (c *CSVWriter) Write(t float64, diags []driver.Diagnostic) error {
	if !c.wroteHeader {
		if err := c.w.Write([]string{"t", "id", "x", "y", "z", "host", "status", "bathymetry", "sea_sur_elev"}); err != nil {
			return fmt.Errorf("diagio: writing header: %v", err)
		}
		c.wroteHeader = true
	}
	for _, d := range diags {
		row := []string{
			strconv.FormatFloat(t, 'g', -1, 64),
			strconv.Itoa(d.ID),
			strconv.FormatFloat(d.X, 'g', -1, 64),
			strconv.FormatFloat(d.Y, 'g', -1, 64),
			strconv.FormatFloat(d.Z, 'g', -1, 64),
			strconv.Itoa(d.Host),
			d.Status.String(),
			strconv.FormatFloat(d.Bathymetry, 'g', -1, 64),
			strconv.FormatFloat(d.SeaSurElev, 'g', -1, 64),
		}
		if err := c.w.Write(row); err != nil {
			return fmt.Errorf("diagio: writing row: %v", err)
		}
	}
	c.w.Flush()
	return c.w.Error()
}
