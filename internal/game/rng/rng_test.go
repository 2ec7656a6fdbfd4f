package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministicForSeed(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestNewZeroSeedUsesEntropy(t *testing.T) {
	src := New(0)
	for i := 0; i < 20; i++ {
		v := src.IntN(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestScripted(t *testing.T) {
	src := NewScripted(1, 7, -3)
	assert.Equal(t, 1, src.IntN(5))
	assert.Equal(t, 2, src.IntN(5))
	assert.Equal(t, 3, src.IntN(5))
	assert.Equal(t, 1, src.IntN(5), "values wrap around")

	assert.Equal(t, 0, NewScripted().IntN(10))
}

func TestLocked(t *testing.T) {
	assert.Nil(t, NewLocked(nil))
	locked := NewLocked(NewScripted(4))
	assert.Equal(t, 4, locked.IntN(10))
	assert.InDelta(t, 0.000004, Float64(NewScripted(4)), 1e-9)
}
