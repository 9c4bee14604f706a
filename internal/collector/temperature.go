// CPU/GPU temperature collector: reads thermal sensors for the island's
// heat indicator. Takes the hottest matching sensor per category and falls
// back to the platform layer for GPU temperature.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/notchkit/island/internal/platform"
)

// Sensor key substrings identifying CPU sensors.
// Linux: coretemp, k10temp, zenpower, acpitz. macOS SMC: TC0P, TC0D, TCXC,
// and on Apple silicon the "pACC"/"eACC" MTR die sensors.
var cpuSensorKeys = []string{
	"cpu", "core", "package",
	"tctl", "tdie", "k10temp", "coretemp",
	"tc0p", "tc0d", "tcxc", "pacc", "eacc",
	"acpitz", "zenpower",
}

// Sensor key substrings identifying GPU sensors.
// Linux: amdgpu, nouveau. macOS SMC: TG0P, TG0D, "GPU MTR".
var gpuSensorKeys = []string{
	"gpu", "nvidia", "radeon",
	"tg0p", "tg0d",
	"amdgpu", "nouveau",
}

// Readings outside (minValidTemp, maxValidTemp] are treated as sensor noise.
const (
	minValidTemp = 0.0
	maxValidTemp = 150.0
)

// TemperatureResult holds the collected temperature data.
// Nil pointers indicate the sensor was not found.
type TemperatureResult struct {
	CPUTemp *float64 `json:"cpu_temp"`
	GPUTemp *float64 `json:"gpu_temp"`
}

// TemperatureCollector collects CPU and GPU temperature readings.
type TemperatureCollector struct {
	platform platform.Platform
	sensors  func(ctx context.Context) ([]host.TemperatureStat, error)
	logger   *zap.Logger
}

// NewTemperatureCollector creates a new temperature collector.
// Pass a nil platform to disable the GPU fallback.
func NewTemperatureCollector(p platform.Platform, logger *zap.Logger) *TemperatureCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemperatureCollector{
		platform: p,
		sensors:  host.SensorsTemperaturesWithContext,
		logger:   logger,
	}
}

// Name returns the collector identifier.
func (c *TemperatureCollector) Name() string { return NameTemperature }

// Collect returns the hottest CPU and GPU readings. Missing sensors leave
// the corresponding field nil; it never returns an error.
func (c *TemperatureCollector) Collect(ctx context.Context) (interface{}, error) {
	temps, err := c.sensors(ctx)
	if err != nil {
		// gopsutil returns partial readings alongside warnings
		c.logger.Debug("Temperature sensors reported an error", zap.Error(err))
	}

	result := TemperatureResult{
		CPUTemp: hottest(temps, cpuSensorKeys),
		GPUTemp: hottest(temps, gpuSensorKeys),
	}
	if result.GPUTemp == nil {
		result.GPUTemp = c.platformGPUFallback(ctx)
	}
	return result, nil
}

// IsAvailable returns true: always registered; returns nil temps if sensors unavailable.
func (c *TemperatureCollector) IsAvailable() bool { return true }

// platformGPUFallback asks the platform for the GPU temperature.
func (c *TemperatureCollector) platformGPUFallback(ctx context.Context) *float64 {
	if c.platform == nil {
		return nil
	}
	temp, err := c.platform.GPUTemperature(ctx)
	if err != nil {
		c.logger.Debug("Platform GPU temperature failed", zap.Error(err))
		return nil
	}
	if temp == nil || !isValidTemperature(*temp) {
		return nil
	}
	return temp
}

// hottest returns the maximum valid reading among sensors whose key
// contains one of keys, or nil when none match.
func hottest(temps []host.TemperatureStat, keys []string) *float64 {
	var best *float64
	for _, t := range temps {
		if !isValidTemperature(t.Temperature) {
			continue
		}
		if !matchesSensor(strings.ToLower(t.SensorKey), keys) {
			continue
		}
		if best == nil || t.Temperature > *best {
			v := t.Temperature
			best = &v
		}
	}
	return best
}

// matchesSensor checks if the sensor name contains any of the given key substrings.
func matchesSensor(name string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

func isValidTemperature(temp float64) bool {
	return temp > minValidTemp && temp <= maxValidTemp
}
