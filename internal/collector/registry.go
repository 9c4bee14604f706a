package collector

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Results holds one round of collector output keyed by collector name.
// A collector that failed this round has no entry; the sampler zero-fills
// the matching part of the sample.
type Results map[string]interface{}

// Lookup returns the entry for name as a T. ok is false when the collector
// has no entry this round or produced a different type.
func Lookup[T any](r Results, name string) (T, bool) {
	v, ok := r[name].(T)
	return v, ok
}

// Resetter is implemented by collectors that carry state from one round to
// the next, like a tick baseline.
type Resetter interface {
	Reset()
}

// Registry runs the available collectors for each sampling round.
type Registry struct {
	logger *zap.Logger
	byName map[string]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger: logger,
		byName: make(map[string]Collector),
	}
}

// Register adds c unless it is unavailable on this platform or another
// collector already uses its name.
func (r *Registry) Register(c Collector) {
	name := c.Name()
	switch {
	case !c.IsAvailable():
		r.logger.Warn("Collector not available, skipping", zap.String("name", name))
	case r.byName[name] != nil:
		r.logger.Warn("Duplicate collector name, skipping", zap.String("name", name))
	default:
		r.byName[name] = c
		r.logger.Info("Registered collector", zap.String("name", name))
	}
}

// CollectAll runs one round over every registered collector concurrently.
// It never fails as a whole: errors stay per collector, are logged, and leave
// that name out of the Results.
func (r *Registry) CollectAll(ctx context.Context) Results {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(Results, len(r.byName))
		failed  []string
	)

	for name, c := range r.byName {
		wg.Add(1)
		go func(name string, c Collector) {
			defer wg.Done()
			data, err := c.Collect(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, name)
				r.logger.Debug("Collection failed", zap.String("collector", name), zap.Error(err))
				return
			}
			results[name] = data
		}(name, c)
	}
	wg.Wait()

	if len(failed) > 0 {
		sort.Strings(failed)
		r.logger.Debug("Round incomplete", zap.Strings("zero_filled", failed))
	}
	return results
}

// ResetAll drops the carried state of every collector implementing Resetter,
// so the next round behaves like the first.
func (r *Registry) ResetAll() {
	for _, c := range r.byName {
		if rs, ok := c.(Resetter); ok {
			rs.Reset()
		}
	}
}
