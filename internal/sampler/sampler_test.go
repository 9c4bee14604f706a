package sampler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notchkit/island/internal/collector"
	"github.com/notchkit/island/internal/models"
	"github.com/notchkit/island/internal/platform"
)

// fakeTicker is driven manually by the test.
type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()              { f.stopped.Store(true) }

type tickerRecorder struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (r *tickerRecorder) factory(d time.Duration) Ticker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	r.tickers = append(r.tickers, t)
	return t
}

func (r *tickerRecorder) active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

func (r *tickerRecorder) last() *fakeTicker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickers[len(r.tickers)-1]
}

// countingCollector reports how many times it was collected.
type countingCollector struct {
	calls atomic.Int64
}

func (c *countingCollector) Name() string { return collector.NameUptime }
func (c *countingCollector) Collect(ctx context.Context) (interface{}, error) {
	return time.Duration(c.calls.Add(1)) * time.Second, nil
}
func (c *countingCollector) IsAvailable() bool { return true }

type staticCollector struct {
	name string
	data interface{}
}

func (c staticCollector) Name() string { return c.name }
func (c staticCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.data, nil
}
func (c staticCollector) IsAvailable() bool { return true }

func newTestSampler(cols ...collector.Collector) (*Sampler, *tickerRecorder) {
	reg := collector.NewRegistry(nil)
	for _, c := range cols {
		reg.Register(c)
	}
	s := New(reg, time.Second, nil)
	rec := &tickerRecorder{}
	s.newTicker = rec.factory
	return s, rec
}

func TestSampler_StartStopStates(t *testing.T) {
	s, rec := newTestSampler(&countingCollector{})
	assert.Equal(t, Idle, s.State())

	s.Start(context.Background())
	assert.Equal(t, Running, s.State())
	assert.Equal(t, 1, rec.active())

	s.Stop()
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, rec.active())

	s.Stop()
	assert.Equal(t, Idle, s.State())
}

func TestSampler_StartTwiceKeepsOneTicker(t *testing.T) {
	counter := &countingCollector{}
	s, rec := newTestSampler(counter)

	s.Start(context.Background())
	first := rec.last()
	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, 1, rec.active())
	assert.True(t, first.stopped.Load())

	// One immediate sample per start.
	require.Eventually(t, func() bool { return counter.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	// A tick on the stopped ticker is never consumed.
	first.ch <- time.Now()
	rec.last().ch <- time.Now()

	require.Eventually(t, func() bool { return counter.calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(3), counter.calls.Load())
}

func TestSampler_PublishesToSubscribers(t *testing.T) {
	temp := 55.0
	s, rec := newTestSampler(
		staticCollector{collector.NameCPU, collector.CPUResult{Overall: 25, Cores: []float64{20, 30}}},
		staticCollector{collector.NameMemory, models.NewMemorySample(90, 10, 100)},
		staticCollector{collector.NameDisk, models.NewDiskSample(1, 4)},
		staticCollector{collector.NameGPU, models.GPUSample{Percent: 12}},
		staticCollector{collector.NameTemperature, collector.TemperatureResult{CPUTemp: &temp}},
	)

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Start(context.Background())
	defer s.Stop()

	var got models.StatsSample
	select {
	case got = <-ch:
	case <-time.After(time.Second):
		t.Fatal("no sample published")
	}

	assert.Equal(t, []float64{20, 30}, got.CPUCores)
	assert.Equal(t, 25.0, got.CPUOverall)
	assert.Equal(t, models.PressureRed, got.Memory.Pressure)
	assert.Equal(t, 25.0, got.Disk.Percent)
	assert.Equal(t, 12.0, got.GPU.Percent)
	require.NotNil(t, got.CPUTemp)
	assert.Equal(t, 55.0, *got.CPUTemp)
	assert.Nil(t, got.GPUTemp)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, got.CPUCores, latest.CPUCores)

	rec.last().ch <- time.Now()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no sample on tick")
	}
}

func TestSampler_ContextCancelEndsLoop(t *testing.T) {
	s, rec := newTestSampler(&countingCollector{})
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	cancel()

	require.Eventually(t, func() bool { return s.State() == Idle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, rec.active())
	s.Stop()
}

func TestSampler_SlowSubscriberGetsLatest(t *testing.T) {
	s, _ := newTestSampler()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 3; i++ {
		s.publish(models.StatsSample{UptimeSeconds: i})
	}

	got := <-ch
	assert.Equal(t, 3, got.UptimeSeconds)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra sample %+v", extra)
	default:
	}
}

func TestSampler_UnsubscribeClosesChannel(t *testing.T) {
	s, _ := newTestSampler()
	ch, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	s.publish(models.StatsSample{})
}

func TestAssembleSample_ZeroFillsMissing(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0).UTC()
	got := assembleSample(ts, collector.Results{})

	assert.Equal(t, ts, got.Timestamp)
	assert.NotNil(t, got.CPUCores)
	assert.Empty(t, got.CPUCores)
	assert.Equal(t, models.MemorySample{}, got.Memory)
	assert.Equal(t, models.GPUSample{}, got.GPU)
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(collector.NewRegistry(nil), 0, nil)
	assert.Equal(t, DefaultInterval, s.Interval())
}

// busyTicks returns a tick source where core 0 is fully busy between reads.
func busyTicks() collector.TickSource {
	var n atomic.Uint64
	return func(ctx context.Context) (models.CPUSnapshot, error) {
		i := n.Add(1)
		return models.CPUSnapshot{{User: i * 100, Idle: 1000}}, nil
	}
}

func oneCore(ctx context.Context) (int, error) { return 1, nil }

type noGPU struct{}

func (noGPU) GPUUtilization(ctx context.Context) (float64, error) { return 0, platform.ErrUnavailable }
func (noGPU) GPUTemperature(ctx context.Context) (*float64, error) { return nil, nil }
func (noGPU) Name() string                                         { return "test" }

func nextSample(t *testing.T, ch <-chan models.StatsSample) models.StatsSample {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("no sample published")
		return models.StatsSample{}
	}
}

func TestSampler_RestartIsColdStart(t *testing.T) {
	cpu := collector.NewCPUCollectorWithSource(busyTicks(), oneCore, nil)
	s, rec := newTestSampler(cpu)
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.Start(context.Background())
	assert.Equal(t, []float64{0}, nextSample(t, ch).CPUCores)

	rec.last().ch <- time.Now()
	assert.Equal(t, []float64{100}, nextSample(t, ch).CPUCores)
	s.Stop()

	// Without a reset this would be the load since the last read.
	s.Start(context.Background())
	defer s.Stop()
	got := nextSample(t, ch)
	assert.Equal(t, []float64{0}, got.CPUCores)
	assert.Equal(t, 0.0, got.CPUOverall)
}

func TestSampler_CollectSettledUsesKnownCPULoad(t *testing.T) {
	cpu := collector.NewCPUCollectorWithSource(busyTicks(), oneCore, nil)
	gpu := collector.NewGPUCollector(noGPU{}, cpu.Overall, 10*time.Millisecond, nil)

	reg := collector.NewRegistry(nil)
	reg.Register(cpu)
	reg.Register(gpu)
	s := New(reg, 5*time.Millisecond, nil)

	got, ok := s.CollectSettled(context.Background(), 10*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, []float64{100}, got.CPUCores)
	assert.True(t, got.GPU.Estimated)
	// 0.4 * 100 with at most 5 points of jitter; an estimate taken before
	// the CPU baseline existed would sit in [0, 5].
	assert.InDelta(t, 40.0, got.GPU.Percent, 5.0)
}

func TestSampler_CollectSettledCancelled(t *testing.T) {
	s, _ := newTestSampler(&countingCollector{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := s.CollectSettled(ctx, time.Second)
	assert.False(t, ok)
}
