//go:build darwin

// macOS Platform implementation.
// GPU utilization comes from the IOAccelerator performance statistics in the
// IORegistry, read through the ioreg tool.
package platform

import "context"

// DarwinPlatform implements Platform for macOS.
type DarwinPlatform struct{}

// New creates a new macOS platform instance.
func New() Platform {
	return &DarwinPlatform{}
}

// Name returns the platform identifier.
func (p *DarwinPlatform) Name() string { return "darwin" }

// GPUUtilization reads "Device Utilization %" from the IOAccelerator class.
func (p *DarwinPlatform) GPUUtilization(ctx context.Context) (float64, error) {
	out, err := runCommand(ctx, "ioreg", "-r", "-d", "1", "-w", "0", "-c", "IOAccelerator")
	if err != nil {
		return 0, ErrUnavailable
	}
	v, ok := parseIORegUtilization(out)
	if !ok {
		return 0, ErrUnavailable
	}
	return v, nil
}

// GPUTemperature returns nil; Apple GPUs expose no temperature via ioreg and
// SMC sensors are picked up by gopsutil when present.
func (p *DarwinPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return nil, nil
}
