package domain

import (
	"fmt"
	"strconv"
)

// Capacity is the accounting view of one job: its optional bound and how many
// participations currently hold the Accepted state. Occupied is always derived
// from stored participations, never kept as a counter.
type Capacity struct {
	Total    *int
	Occupied int
}

// CapacityOf builds the capacity view of a job.
func CapacityOf(job Job, occupied int) Capacity {
	return Capacity{Total: job.TotalPositions, Occupied: occupied}
}

// Unbounded reports whether the job accepts any number of participants.
func (c Capacity) Unbounded() bool {
	return c.Total == nil
}

// CanAccept reports whether one more participation may be accepted.
func (c Capacity) CanAccept() bool {
	return c.Total == nil || c.Occupied < *c.Total
}

// CanShrinkTo reports whether the bound may be lowered to newTotal.
func (c Capacity) CanShrinkTo(newTotal int) bool {
	return newTotal >= c.Occupied
}

// Open returns the number of free slots, or -1 when unbounded.
func (c Capacity) Open() int {
	if c.Total == nil {
		return -1
	}
	if open := *c.Total - c.Occupied; open > 0 {
		return open
	}
	return 0
}

// CapacityExceeded describes an accept that would overflow the job.
func CapacityExceeded(jobID uint, c Capacity) *Error {
	total := "unbounded"
	if c.Total != nil {
		total = strconv.Itoa(*c.Total)
	}
	return WithMetadata(CodeCapacityViolation,
		fmt.Sprintf("job %d is full (%d/%s accepted)", jobID, c.Occupied, total),
		map[string]string{"occupied": strconv.Itoa(c.Occupied), "total": total},
	)
}

// ShrinkBelowOccupancy describes a capacity reduction below current occupancy.
func ShrinkBelowOccupancy(jobID uint, c Capacity, newTotal int) *Error {
	return WithMetadata(CodeCapacityViolation,
		fmt.Sprintf("job %d has %d accepted participants, cannot lower capacity to %d", jobID, c.Occupied, newTotal),
		map[string]string{"occupied": strconv.Itoa(c.Occupied), "requested": strconv.Itoa(newTotal)},
	)
}
