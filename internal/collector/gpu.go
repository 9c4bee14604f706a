// GPU utilization collector: reads GPU load through the platform layer with
// a short-lived cache. When no direct reading exists the value is estimated
// from current CPU load plus bounded jitter.
package collector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notchkit/island/internal/models"
	"github.com/notchkit/island/internal/platform"
)

// DefaultGPURefresh is how long a GPU reading is reused before the next
// direct query.
const DefaultGPURefresh = 2 * time.Second

// Estimate policy used when the platform has no direct reading.
const (
	gpuCPUCorrelation = 0.4
	gpuJitterPercent  = 5.0
)

// GPUCollector collects GPU utilization, querying the platform at most once
// per refresh window.
type GPUCollector struct {
	platform platform.Platform
	cpuLoad  func() float64
	refresh  time.Duration
	logger   *zap.Logger

	now    func() time.Time
	jitter func() float64

	mu       sync.Mutex
	last     models.GPUSample
	lastRead time.Time
	hasRead  bool
}

// NewGPUCollector creates a GPU collector. cpuLoad supplies the recent CPU
// average used by the fallback estimate; nil means 0. A non-positive refresh
// uses DefaultGPURefresh.
func NewGPUCollector(p platform.Platform, cpuLoad func() float64, refresh time.Duration, logger *zap.Logger) *GPUCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cpuLoad == nil {
		cpuLoad = func() float64 { return 0 }
	}
	if refresh <= 0 {
		refresh = DefaultGPURefresh
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &GPUCollector{
		platform: p,
		cpuLoad:  cpuLoad,
		refresh:  refresh,
		logger:   logger,
		now:      time.Now,
		jitter:   func() float64 { return rng.Float64()*2 - 1 },
	}
}

// Name returns the collector identifier.
func (c *GPUCollector) Name() string { return NameGPU }

// Collect returns the cached sample while it is younger than the refresh
// window, otherwise reads again. It never returns an error.
func (c *GPUCollector) Collect(ctx context.Context) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.hasRead && now.Sub(c.lastRead) < c.refresh {
		return c.last, nil
	}

	c.last = c.read(ctx)
	c.lastRead = now
	c.hasRead = true
	return c.last, nil
}

// IsAvailable returns true: an estimate is always possible.
func (c *GPUCollector) IsAvailable() bool { return true }

// read queries the platform and falls back to the estimate.
// Must be called with c.mu held.
func (c *GPUCollector) read(ctx context.Context) models.GPUSample {
	if c.platform != nil {
		v, err := c.platform.GPUUtilization(ctx)
		if err == nil {
			return models.GPUSample{Percent: models.ClampPercent(v)}
		}
		c.logger.Debug("Direct GPU reading unavailable, estimating", zap.Error(err))
	}

	estimate := c.cpuLoad()*gpuCPUCorrelation + c.jitter()*gpuJitterPercent
	return models.GPUSample{
		Percent:   models.ClampPercent(estimate),
		Estimated: true,
	}
}
