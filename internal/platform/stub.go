//go:build !darwin && !linux && !windows

package platform

import "context"

// StubPlatform is a no-op Platform for operating systems without a GPU probe.
type StubPlatform struct{}

// New creates a stub platform instance.
func New() Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

// GPUUtilization always reports ErrUnavailable.
func (p *StubPlatform) GPUUtilization(ctx context.Context) (float64, error) {
	return 0, ErrUnavailable
}

// GPUTemperature returns nil.
func (p *StubPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return nil, nil
}
