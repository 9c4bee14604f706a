// Package collector defines the Collector interface and provides
// implementations for the counter readers feeding the island sampler.
package collector

import "context"

// Collector names, used as keys in Registry.CollectAll results.
const (
	NameCPU         = "cpu"
	NameMemory      = "memory"
	NameDisk        = "disk"
	NameGPU         = "gpu"
	NameTemperature = "temperature"
	NameUptime      = "uptime"
)

// Collector is the interface that all metric collectors must implement.
// Each collector reads a specific kind of OS counter.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect reads the counters and returns the result.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}
