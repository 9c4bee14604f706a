// Package sampler implements the periodic stats loop behind the island.
// While running it collects one sample per tick from the collector registry
// and publishes it to subscribers. The sampler does NOT render anything;
// display layers subscribe to it.
package sampler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notchkit/island/internal/collector"
	"github.com/notchkit/island/internal/models"
)

// DefaultInterval is the display refresh cadence.
const DefaultInterval = time.Second

// collectTimeout bounds a single tick's collection.
const collectTimeout = 5 * time.Second

// State is the lifecycle state of a Sampler.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Sampler manages periodic collection and fan-out of StatsSamples.
type Sampler struct {
	registry  *collector.Registry
	interval  time.Duration
	logger    *zap.Logger
	newTicker TickerFactory
	now       func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	subMu  sync.Mutex
	subs   map[int]chan models.StatsSample
	nextID int
	latest *models.StatsSample
}

// New creates a Sampler over the given registry. A non-positive interval
// uses DefaultInterval.
func New(registry *collector.Registry, interval time.Duration, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		registry:  registry,
		interval:  interval,
		logger:    logger,
		newTicker: newRealTicker,
		now:       time.Now,
		subs:      make(map[int]chan models.StatsSample),
	}
}

// Interval returns the sampling cadence.
func (s *Sampler) Interval() time.Duration { return s.interval }

// Start begins sampling: one sample immediately, then one per interval.
// If the sampler is already running the previous loop is stopped first, so
// there is never more than one active ticker. Collector state carried from
// an earlier run is reset, so the first sample is a cold start. The loop
// also ends when ctx is cancelled.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		s.logger.Debug("Sampler restarting")
		s.stopLocked()
	}
	s.registry.ResetAll()

	loopCtx, cancel := context.WithCancel(ctx)
	ticker := s.newTicker(s.interval)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.state = Running

	go s.run(loopCtx, ticker, done)
	s.logger.Info("Sampler started", zap.Duration("interval", s.interval))
}

// Stop halts sampling and waits for the loop to exit. Stopping an idle
// sampler is a no-op.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.stopLocked()
	s.logger.Info("Sampler stopped")
}

// stopLocked must be called with s.mu held. The loop never takes s.mu, so
// waiting on done cannot deadlock.
func (s *Sampler) stopLocked() {
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.state = Idle
}

// State reports whether the loop is running. A loop whose parent context
// was cancelled reports Idle.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		select {
		case <-s.done:
			return Idle
		default:
		}
	}
	return s.state
}

func (s *Sampler) run(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.tick(ctx)
		}
	}
}

// tick collects and publishes one sample unless the loop was stopped while
// collecting.
func (s *Sampler) tick(ctx context.Context) {
	sample := s.Collect(ctx)
	if ctx.Err() != nil {
		return
	}
	s.publish(sample)
}

// Collect runs every collector once and assembles a StatsSample without
// publishing it. Missing parts are zero-filled.
func (s *Sampler) Collect(ctx context.Context) models.StatsSample {
	collectCtx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()

	results := s.registry.CollectAll(collectCtx)
	return assembleSample(s.now().UTC(), results)
}

// CollectSettled returns one sample for one-shot callers. A single Collect
// has no CPU baseline, so it takes a baseline reading, waits one interval,
// reads again so CPU load is known, waits settle (the longest collector
// refresh window), and returns the third reading. ok is false if ctx ends
// first.
func (s *Sampler) CollectSettled(ctx context.Context, settle time.Duration) (sample models.StatsSample, ok bool) {
	s.Collect(ctx)
	if !sleep(ctx, s.interval) {
		return models.StatsSample{}, false
	}
	s.Collect(ctx)
	if !sleep(ctx, settle) {
		return models.StatsSample{}, false
	}
	return s.Collect(ctx), true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Subscribe returns a channel receiving every published sample and a func
// that unsubscribes and closes it. A slow reader only ever misses older
// samples; it never blocks the loop.
func (s *Sampler) Subscribe() (<-chan models.StatsSample, func()) {
	ch := make(chan models.StatsSample, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Latest returns the most recently published sample.
func (s *Sampler) Latest() (models.StatsSample, bool) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.latest == nil {
		return models.StatsSample{}, false
	}
	return *s.latest, true
}

func (s *Sampler) publish(sample models.StatsSample) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.latest = &sample
	for _, ch := range s.subs {
		select {
		case ch <- sample:
			continue
		default:
		}
		// Drop the stale sample and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- sample:
		default:
		}
	}
	s.logger.Debug("Published sample",
		zap.Float64("cpu", sample.CPUOverall),
		zap.Int("subscribers", len(s.subs)))
}

// assembleSample maps collector results into a unified StatsSample.
func assembleSample(ts time.Time, results collector.Results) models.StatsSample {
	sample := models.StatsSample{
		Timestamp: ts,
		CPUCores:  []float64{},
	}

	if cpu, ok := collector.Lookup[collector.CPUResult](results, collector.NameCPU); ok && cpu.Cores != nil {
		sample.CPUCores = cpu.Cores
		sample.CPUOverall = cpu.Overall
	}
	if mem, ok := collector.Lookup[models.MemorySample](results, collector.NameMemory); ok {
		sample.Memory = mem
	}
	if disk, ok := collector.Lookup[models.DiskSample](results, collector.NameDisk); ok {
		sample.Disk = disk
	}
	if gpu, ok := collector.Lookup[models.GPUSample](results, collector.NameGPU); ok {
		sample.GPU = gpu
	}
	if temp, ok := collector.Lookup[collector.TemperatureResult](results, collector.NameTemperature); ok {
		sample.CPUTemp = temp.CPUTemp
		sample.GPUTemp = temp.GPUTemp
	}
	if uptime, ok := collector.Lookup[time.Duration](results, collector.NameUptime); ok {
		sample.UptimeSeconds = int(uptime / time.Second)
	}

	return sample
}
