package field

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// cdfLoader is the shared netCDF time-series reader backing the FVCOM,
// ROMS and GOTM adapters: it reads the full time axis once at open (the
// way geoschem.go/wrfchem.go read their fixed record cadence up front)
// and slices out a single time record per variable on demand, casting the
// on-disk float32 storage the way LoadCTMData does in vargrid.go.
type cdfLoader struct {
	file    *os.File
	f       *cdf.File
	times   []float64
	varName map[string]string // canonical name (VarU, ...) -> on-disk variable name
}

// openCDFLoader opens path, reads its time coordinate variable (named
// timeVar) in full, and returns a loader that maps the canonical field
// names in vars to their on-disk variable names.
func openCDFLoader(path, timeVar string, vars map[string]string) (*cdfLoader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("field: opening %s: %v", path, err)
	}
	f, err := cdf.Open(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("field: reading netcdf header of %s: %v", path, err)
	}
	lengths := f.Header.Lengths(timeVar)
	if len(lengths) == 0 {
		file.Close()
		return nil, fmt.Errorf("field: %s: no such time variable %q", path, timeVar)
	}
	nt := lengths[0]
	tmp := make([]float64, nt)
	if _, err := f.Reader(timeVar, nil, nil).Read(tmp); err != nil {
		file.Close()
		return nil, fmt.Errorf("field: %s: reading %q: %v", path, timeVar, err)
	}
	return &cdfLoader{file: file, f: f, times: tmp, varName: vars}, nil
}

// Close releases the underlying file handle.
func (l *cdfLoader) Close() error { return l.file.Close() }

// bracket returns the time-axis indices i, i+1 such that times[i] <= t <
// times[i+1].
func (l *cdfLoader) bracket(t float64) (int, int, error) {
	i := sort.SearchFloat64s(l.times, t)
	if i == len(l.times) || l.times[i] != t {
		i--
	}
	if i < 0 || i+1 >= len(l.times) {
		return 0, 0, fmt.Errorf("field: time %g outside the data source's time axis", t)
	}
	return i, i + 1, nil
}

// readIndex reads every mapped variable's data at time-axis index idx
// into a Snapshot.
func (l *cdfLoader) readIndex(idx int) (*Snapshot, error) {
	snap := NewSnapshot(l.times[idx])
	for canon, name := range l.varName {
		lengths := l.f.Header.Lengths(name)
		if len(lengths) == 0 {
			return nil, fmt.Errorf("field: no such variable %q", name)
		}
		begin := make([]int, len(lengths))
		end := make([]int, len(lengths))
		copy(end, lengths)
		begin[0] = idx
		end[0] = idx + 1
		n := 1
		for _, d := range lengths[1:] {
			n *= d
		}
		tmp := make([]float32, n)
		if _, err := l.f.Reader(name, begin, end).Read(tmp); err != nil {
			return nil, fmt.Errorf("field: reading %q at time index %d: %v", name, idx, err)
		}
		arr := sparse.ZerosDense(lengths[1:]...)
		for i, v := range tmp {
			arr.Elements[i] = float64(v)
		}
		snap.AddVariable(canon, arr)
	}
	return snap, nil
}

// LoadSnapshot implements Loader.
func (l *cdfLoader) LoadSnapshot(t float64) (last, next *Snapshot, err error) {
	i, j, err := l.bracket(t)
	if err != nil {
		return nil, nil, err
	}
	last, err = l.readIndex(i)
	if err != nil {
		return nil, nil, err
	}
	next, err = l.readIndex(j)
	if err != nil {
		return nil, nil, err
	}
	return last, next, nil
}
