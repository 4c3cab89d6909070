package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCapacityCanAccept(t *testing.T) {
	tests := []struct {
		name string
		c    Capacity
		want bool
	}{
		{"unbounded", Capacity{Occupied: 1000}, true},
		{"free slot", Capacity{Total: intPtr(2), Occupied: 1}, true},
		{"full", Capacity{Total: intPtr(2), Occupied: 2}, false},
		{"zero positions", Capacity{Total: intPtr(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.CanAccept())
		})
	}
}

func TestCapacityCanShrinkTo(t *testing.T) {
	c := Capacity{Total: intPtr(5), Occupied: 3}
	assert.True(t, c.CanShrinkTo(3))
	assert.True(t, c.CanShrinkTo(10))
	assert.False(t, c.CanShrinkTo(2))
}

func TestCapacityOpen(t *testing.T) {
	assert.Equal(t, -1, Capacity{Occupied: 4}.Open())
	assert.Equal(t, 2, Capacity{Total: intPtr(5), Occupied: 3}.Open())
	assert.Equal(t, 0, Capacity{Total: intPtr(1), Occupied: 3}.Open())
}

func TestCapacityErrorsCarryCode(t *testing.T) {
	c := CapacityOf(Job{ID: 9, TotalPositions: intPtr(1)}, 1)
	assert.ErrorIs(t, CapacityExceeded(9, c), ErrCapacityViolation)
	assert.ErrorIs(t, ShrinkBelowOccupancy(9, c, 0), ErrCapacityViolation)
	assert.Equal(t, "1", CapacityExceeded(9, c).Metadata["total"])
}
