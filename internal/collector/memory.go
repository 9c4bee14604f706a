// RAM usage collector: gathers used, available and total memory bytes and
// derives the pressure level. Uses gopsutil for cross-platform memory metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/notchkit/island/internal/models"
)

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct {
	read func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{read: mem.VirtualMemoryWithContext}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return NameMemory }

// Collect gathers memory usage data as a models.MemorySample.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewMemorySample(v.Used, v.Available, v.Total), nil
}

// IsAvailable returns true: memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
