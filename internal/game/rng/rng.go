// Package rng provides the injectable random source shared by a battle.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source picks a uniform integer in [0, n). n must be positive.
type Source interface {
	IntN(n int) int
}

// New returns a PCG source for seed. A zero seed draws one from crypto/rand.
func New(seed uint64) Source {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// CryptoSeed returns a non-zero seed from the operating system.
func CryptoSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	seed := binary.LittleEndian.Uint64(buf[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}

// Locked wraps a source so it can be shared by concurrent sessions.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src. It returns nil for a nil source.
func NewLocked(src Source) *Locked {
	if src == nil {
		return nil
	}
	return &Locked{src: src}
}

// IntN implements Source.
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Float64 returns a float in [0, 1) with millionth resolution.
func Float64(src Source) float64 {
	return float64(src.IntN(1_000_000)) / 1_000_000
}

// Scripted replays a fixed sequence of choices, wrapping around. Values are
// reduced modulo n. It is meant for tests and replays.
type Scripted struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewScripted creates a scripted source. With no values it always returns 0.
func NewScripted(values ...int) *Scripted {
	return &Scripted{values: values}
}

// IntN implements Source.
func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 || n <= 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
