// Package rngseed derives deterministic per-particle RNG seeds from a
// (run seed, particle id, step index, substep) tuple, the way
// internal/hash derives cache keys for InMAP's grid cells: fnv128a over a
// gob encoding of the tuple, with a go-spew fallback for inputs gob can't
// encode. The RNG contract (spec §4.D.2/3) requires that the same tuple
// always produce the same draws, regardless of goroutine scheduling.
package rngseed

import (
	"encoding/binary"
	"encoding/gob"
	"hash/fnv"
	"math/rand"

	"github.com/davecgh/go-spew/spew"
)

type key struct {
	Seed       int64
	ParticleID int
	Step       int
	Substep    int
}

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Derive returns a 64-bit seed for the given tuple. Equal tuples always
// derive equal seeds; distinct tuples derive, with overwhelming
// probability, distinct seeds.
func Derive(seed int64, particleID, stepIndex, substep int) int64 {
	h := fnv.New128a()
	k := key{Seed: seed, ParticleID: particleID, Step: stepIndex, Substep: substep}
	e := gob.NewEncoder(h)
	if err := e.Encode(k); err != nil {
		// key is a plain struct of ints: gob can't fail on it in
		// practice, but fail over to spew rather than panic.
		spewConfig.Fprintf(h, "%#v", k)
	}
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Stream returns a new independent RNG stream for the given tuple.
func Stream(seed int64, particleID, stepIndex, substep int) *rand.Rand {
	return rand.New(rand.NewSource(Derive(seed, particleID, stepIndex, substep)))
}
