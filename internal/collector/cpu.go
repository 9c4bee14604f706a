// CPU usage collector: reads per-core tick counters and turns successive
// readings into per-core utilization. Uses gopsutil for cross-platform counters.
package collector

import (
	"context"
	"math"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"github.com/notchkit/island/internal/delta"
	"github.com/notchkit/island/internal/models"
)

// ticksPerSecond converts gopsutil's float seconds back into integer ticks.
const ticksPerSecond = 100

// CPUResult holds the collected CPU usage data.
type CPUResult struct {
	Overall float64   `json:"overall"`
	Cores   []float64 `json:"cores"`
}

// TickSource reads one CPUSnapshot from the OS.
type TickSource func(ctx context.Context) (models.CPUSnapshot, error)

// CoreCounter reports the number of logical cores.
type CoreCounter func(ctx context.Context) (int, error)

// CPUCollector collects per-core CPU utilization.
type CPUCollector struct {
	source TickSource
	counts CoreCounter
	calc   *delta.Calculator
	logger *zap.Logger

	mu          sync.Mutex
	cores       int
	lastOverall float64
}

// NewCPUCollector creates a CPU collector reading gopsutil per-core times.
func NewCPUCollector(logger *zap.Logger) *CPUCollector {
	return NewCPUCollectorWithSource(ReadCPUTicks, cpuCounts, logger)
}

// NewCPUCollectorWithSource creates a CPU collector with custom counter readers.
func NewCPUCollectorWithSource(source TickSource, counts CoreCounter, logger *zap.Logger) *CPUCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CPUCollector{
		source: source,
		counts: counts,
		calc:   delta.New(),
		logger: logger,
	}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return NameCPU }

// Collect reads the tick counters and returns per-core utilization since the
// previous call. The first call, and any call after the core count changed,
// returns zeros. A failed read also returns zeros and is never an error.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	snapshot, err := c.source(ctx)
	if err != nil || len(snapshot) == 0 {
		c.logger.Debug("CPU tick read failed, zero-filling", zap.Error(err))
		return CPUResult{Cores: make([]float64, c.coreCount(ctx))}, nil
	}

	cores := c.calc.Update(snapshot)
	result := CPUResult{
		Overall: average(cores),
		Cores:   cores,
	}

	c.mu.Lock()
	c.cores = len(snapshot)
	c.lastOverall = result.Overall
	c.mu.Unlock()

	return result, nil
}

// Overall returns the most recent average utilization across all cores.
func (c *CPUCollector) Overall() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOverall
}

// Reset drops the tick baseline so the next Collect is a cold start and
// reports zeros instead of the average over the time since the last read.
func (c *CPUCollector) Reset() {
	c.calc.Reset()
	c.mu.Lock()
	c.lastOverall = 0
	c.mu.Unlock()
}

// IsAvailable returns true: CPU counters are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }

// coreCount returns the last seen core count, asking the OS when no read has
// succeeded yet.
func (c *CPUCollector) coreCount(ctx context.Context) int {
	c.mu.Lock()
	n := c.cores
	c.mu.Unlock()
	if n > 0 || c.counts == nil {
		return n
	}
	n, err := c.counts(ctx)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ReadCPUTicks returns the per-core user/system/nice/idle counters.
func ReadCPUTicks(ctx context.Context) (models.CPUSnapshot, error) {
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	return lo.Map(times, func(t cpu.TimesStat, _ int) models.CoreTicks {
		return models.CoreTicks{
			User:   toTicks(t.User),
			System: toTicks(t.System),
			Nice:   toTicks(t.Nice),
			Idle:   toTicks(t.Idle),
		}
	}), nil
}

func cpuCounts(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func toTicks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * ticksPerSecond))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return models.ClampPercent(lo.Sum(values) / float64(len(values)))
}
