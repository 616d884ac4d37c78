package field

import (
	"fmt"
	"sync"

	"github.com/ctessum/sparse"
)

// Known variable names held in a Snapshot. Element-layer fields are
// defined at element centres on siglay; node-level fields at nodes on
// siglev; node-layer fields at nodes on siglay; node-2D fields at nodes
// with no vertical dimension.
const (
	VarU    = "u"         // element-layer: [N_siglay][N_elems]
	VarV    = "v"         // element-layer
	VarOm   = "omega"     // node-level: [N_siglev][N_nodes], sigma-velocity
	VarKh   = "kh"        // node-level: vertical eddy diffusivity
	VarAh   = "ah"        // node-layer: [N_siglay][N_nodes], horizontal eddy viscosity
	VarZeta = "zeta"      // node-2D: [N_nodes], sea surface elevation
	VarWet  = "wet_mask"  // element-2D: [N_elems], 1.0 wet / 0.0 dry
)

// Snapshot holds every time-dependent field valid at a single instant
// (spec §3 "Time-dependent field snapshots"), following the teacher's
// CTMData pattern of a name-keyed map of (dims, data) pairs rather than a
// fixed struct per variable, so FVCOM/ROMS/GOTM loaders can each populate
// the subset of variables their source carries.
type Snapshot struct {
	Time float64
	Vars map[string]*sparse.DenseArray
}

// NewSnapshot returns an empty snapshot valid at t.
func NewSnapshot(t float64) *Snapshot {
	return &Snapshot{Time: t, Vars: make(map[string]*sparse.DenseArray)}
}

// AddVariable stores data under name, mirroring CTMData.AddVariable.
func (s *Snapshot) AddVariable(name string, data *sparse.DenseArray) {
	s.Vars[name] = data
}

// Get returns the array stored under name, or an error if it is absent.
func (s *Snapshot) Get(name string) (*sparse.DenseArray, error) {
	a, ok := s.Vars[name]
	if !ok {
		return nil, fmt.Errorf("field: snapshot has no variable %q", name)
	}
	return a, nil
}

// Buffer holds the f_last/f_next pair of snapshots bounding the current
// simulation time (spec §3: "refresh is atomic with respect to particle
// updates: no particle sees half-updated snapshots"). Swap is the sole
// writer and takes an exclusive lock; all particle-facing reads take the
// shared lock, mirroring the teacher's per-Cell sync.Mutex but scoped to
// the whole buffer since snapshot refresh replaces both halves at once.
type Buffer struct {
	mu         sync.RWMutex
	last, next *Snapshot
}

// InRange reports whether t lies in [last.Time, next.Time), i.e. no
// refresh is needed.
func (b *Buffer) InRange(t float64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil || b.next == nil {
		return false
	}
	return t >= b.last.Time && t < b.next.Time
}

// Swap atomically replaces both halves of the buffer.
func (b *Buffer) Swap(last, next *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last, b.next = last, next
}

// Bounds returns the current validity window.
func (b *Buffer) Bounds() (tLast, tNext float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil || b.next == nil {
		return 0, 0
	}
	return b.last.Time, b.next.Time
}

// Snapshots returns the current last/next pair for read-only use during a
// timestep's particle fan-out.
func (b *Buffer) Snapshots() (last, next *Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.next
}
