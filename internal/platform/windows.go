//go:build windows

// Windows-specific Platform implementation.
// Uses nvidia-smi for NVIDIA GPUs; other vendors report no direct reading.
package platform

import "context"

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct{}

// New creates a new Windows platform instance.
func New() Platform {
	return &WindowsPlatform{}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

// GPUUtilization attempts to read GPU load via nvidia-smi.
func (p *WindowsPlatform) GPUUtilization(ctx context.Context) (float64, error) {
	v, ok := queryNvidiaSMI(ctx, "utilization.gpu")
	if !ok {
		return 0, ErrUnavailable
	}
	return v, nil
}

// GPUTemperature attempts to read GPU temperature via nvidia-smi.
// Returns nil if NVIDIA GPU or nvidia-smi is not available.
func (p *WindowsPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	v, ok := queryNvidiaSMI(ctx, "temperature.gpu")
	if !ok {
		return nil, nil
	}
	return &v, nil
}
