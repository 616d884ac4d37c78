// Package seedio parses the initial particle positions a run starts
// from. Seed-file parsing sits outside the core per spec §1 ("a distinct
// seed vector is retained so that re-seeding (ensembles) is supported",
// with the file format itself left to an external collaborator); this
// package is that collaborator's CLI-facing implementation, a flat CSV of
// id,group_id,x,y,z.
package seedio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/oceanmodel/lagtrack/mesh"
	"github.com/oceanmodel/lagtrack/particle"
)

// ReadCSV parses path (columns: id,group_id,x,y,z, no header) into a
// particle slice and locates each one's host element and barycentric
// coordinates against m. The sigma brackets are left unset; they are
// filled by the field source's SetLocalCoordinates.
func ReadCSV(path string, m *mesh.Mesh) ([]*particle.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seedio: opening %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	r.TrimLeadingSpace = true

	var particles []*particle.Particle
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("seedio: %s: %v", path, err)
		}
		p, err := parseRecord(rec, m)
		if err != nil {
			return nil, fmt.Errorf("seedio: %s: %v", path, err)
		}
		particles = append(particles, p)
	}
	return particles, nil
}

func parseRecord(rec []string, m *mesh.Mesh) (*particle.Particle, error) {
	id, err := strconv.Atoi(rec[0])
	if err != nil {
		return nil, fmt.Errorf("id %q: %v", rec[0], err)
	}
	groupID, err := strconv.Atoi(rec[1])
	if err != nil {
		return nil, fmt.Errorf("group_id %q: %v", rec[1], err)
	}
	x, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return nil, fmt.Errorf("x %q: %v", rec[2], err)
	}
	y, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return nil, fmt.Errorf("y %q: %v", rec[3], err)
	}
	z, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return nil, fmt.Errorf("z %q: %v", rec[4], err)
	}

	status, host, phi := m.FindHostGlobal(x, y)
	if status != mesh.Inside {
		return nil, fmt.Errorf("particle %d at (%g, %g) is outside the mesh", id, x, y)
	}

	return &particle.Particle{
		ID: id, GroupID: groupID,
		X: x, Y: y, Z: z,
		Host: host, Phi: phi,
		Status: particle.Active,
	}, nil
}
