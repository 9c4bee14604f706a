//go:build linux

// Linux Platform implementation.
// AMD and Intel drivers expose gpu_busy_percent in sysfs; NVIDIA cards are
// queried through nvidia-smi.
package platform

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// drmBusyGlob matches the busy counters of every DRM card.
const drmBusyGlob = "/sys/class/drm/card*/device/gpu_busy_percent"

// LinuxPlatform implements Platform for Linux systems.
type LinuxPlatform struct {
	busyGlob string
}

// New creates a new Linux platform instance.
func New() Platform {
	return &LinuxPlatform{busyGlob: drmBusyGlob}
}

// Name returns the platform identifier.
func (p *LinuxPlatform) Name() string { return "linux" }

// GPUUtilization reads sysfs first and falls back to nvidia-smi.
func (p *LinuxPlatform) GPUUtilization(ctx context.Context) (float64, error) {
	if v, ok := readBusyPercent(p.busyGlob); ok {
		return v, nil
	}
	if v, ok := queryNvidiaSMI(ctx, "utilization.gpu"); ok {
		return v, nil
	}
	return 0, ErrUnavailable
}

// GPUTemperature attempts to read GPU temperature via nvidia-smi.
// Returns nil if NVIDIA GPU or nvidia-smi is not available.
func (p *LinuxPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	v, ok := queryNvidiaSMI(ctx, "temperature.gpu")
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// readBusyPercent returns the busiest card among the files matching pattern.
func readBusyPercent(pattern string) (float64, bool) {
	paths, err := filepath.Glob(pattern)
	if err != nil || len(paths) == 0 {
		return 0, false
	}
	best, found := 0.0, false
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}
