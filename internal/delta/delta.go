// Package delta turns successive CPU tick snapshots into per-core utilization.
package delta

import (
	"sync"

	"github.com/notchkit/island/internal/models"
)

// Calculator keeps the previous snapshot as its baseline.
// It is safe for concurrent use.
type Calculator struct {
	mu   sync.Mutex
	prev models.CPUSnapshot
}

// New creates a Calculator with no baseline.
func New() *Calculator {
	return &Calculator{}
}

// Update computes per-core utilization between the stored baseline and curr,
// then stores curr as the new baseline. The result always has len(curr)
// elements. Without a compatible baseline (first call, core count changed)
// the result is zero-filled.
func (c *Calculator) Update(curr models.CPUSnapshot) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]float64, len(curr))
	if len(c.prev) == len(curr) {
		for i := range curr {
			out[i] = Utilization(c.prev[i], curr[i])
		}
	}

	c.prev = make(models.CPUSnapshot, len(curr))
	copy(c.prev, curr)
	return out
}

// Reset drops the baseline so the next Update is a cold start.
func (c *Calculator) Reset() {
	c.mu.Lock()
	c.prev = nil
	c.mu.Unlock()
}

// Utilization returns busy time over total time between two readings of one
// core, as a percentage in [0,100]. A zero or negative total delta, or any
// counter that went backwards, yields 0.
func Utilization(prev, curr models.CoreTicks) float64 {
	if curr.User < prev.User || curr.System < prev.System ||
		curr.Nice < prev.Nice || curr.Idle < prev.Idle {
		return 0
	}

	busy := (curr.User - prev.User) + (curr.System - prev.System) + (curr.Nice - prev.Nice)
	total := busy + (curr.Idle - prev.Idle)
	if total == 0 {
		return 0
	}
	return models.ClampPercent(float64(busy) / float64(total) * 100)
}
