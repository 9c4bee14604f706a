package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notchkit/island/internal/models"
	"github.com/notchkit/island/internal/platform"
)

type fakePlatform struct {
	util  float64
	err   error
	temp  *float64
	calls int
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) GPUUtilization(ctx context.Context) (float64, error) {
	f.calls++
	return f.util, f.err
}

func (f *fakePlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return f.temp, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGPUCollector(p platform.Platform, cpuLoad func() float64) (*GPUCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewGPUCollector(p, cpuLoad, 0, nil)
	c.now = clock.Now
	return c, clock
}

func collectGPU(t *testing.T, c *GPUCollector) models.GPUSample {
	t.Helper()
	data, err := c.Collect(context.Background())
	require.NoError(t, err)
	return data.(models.GPUSample)
}

func TestGPUCollector_DirectReading(t *testing.T) {
	p := &fakePlatform{util: 37}
	c, _ := newTestGPUCollector(p, nil)

	s := collectGPU(t, c)
	assert.Equal(t, 37.0, s.Percent)
	assert.False(t, s.Estimated)
}

func TestGPUCollector_CachedWithinWindow(t *testing.T) {
	p := &fakePlatform{util: 20}
	c, clock := newTestGPUCollector(p, nil)

	first := collectGPU(t, c)
	p.util = 90
	clock.Advance(1999 * time.Millisecond)
	second := collectGPU(t, c)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls)
}

func TestGPUCollector_FreshReadAfterWindow(t *testing.T) {
	p := &fakePlatform{util: 20}
	c, clock := newTestGPUCollector(p, nil)

	collectGPU(t, c)
	p.util = 90
	clock.Advance(DefaultGPURefresh)
	s := collectGPU(t, c)

	assert.Equal(t, 90.0, s.Percent)
	assert.Equal(t, 2, p.calls)
}

func TestGPUCollector_EstimateFallback(t *testing.T) {
	p := &fakePlatform{err: platform.ErrUnavailable}
	c, _ := newTestGPUCollector(p, func() float64 { return 50 })
	c.jitter = func() float64 { return 0.5 }

	s := collectGPU(t, c)
	assert.True(t, s.Estimated)
	assert.InDelta(t, 50*0.4+2.5, s.Percent, 1e-9)
}

func TestGPUCollector_EstimateClamped(t *testing.T) {
	c, _ := newTestGPUCollector(nil, func() float64 { return 0 })
	c.jitter = func() float64 { return -1 }

	s := collectGPU(t, c)
	assert.True(t, s.Estimated)
	assert.Equal(t, 0.0, s.Percent)
}

func TestGPUCollector_EstimateWithinJitterBounds(t *testing.T) {
	p := &fakePlatform{err: errors.New("registry lookup failed")}
	c, clock := newTestGPUCollector(p, func() float64 { return 80 })

	for i := 0; i < 200; i++ {
		s := collectGPU(t, c)
		require.GreaterOrEqual(t, s.Percent, 80*0.4-5)
		require.LessOrEqual(t, s.Percent, 80*0.4+5)
		clock.Advance(DefaultGPURefresh)
	}
}

func TestGPUCollector_DirectReadingClamped(t *testing.T) {
	c, _ := newTestGPUCollector(&fakePlatform{util: 140}, nil)
	assert.Equal(t, 100.0, collectGPU(t, c).Percent)
}
