// Package models defines the sample data structures used throughout the island.
// These structures are serialized to JSON for the display feed.
package models

import (
	"fmt"
	"time"
)

// CoreTicks holds the cumulative tick counters of a single logical core.
// Counters only grow between reboots.
type CoreTicks struct {
	User   uint64 `json:"user"`
	System uint64 `json:"system"`
	Nice   uint64 `json:"nice"`
	Idle   uint64 `json:"idle"`
}

// Total returns the sum of all four counters.
func (t CoreTicks) Total() uint64 {
	return t.User + t.System + t.Nice + t.Idle
}

// CPUSnapshot is one reading of every core's tick counters, in core order.
type CPUSnapshot []CoreTicks

// PressureLevel is a discretized indicator of memory exhaustion.
type PressureLevel int

const (
	PressureNormal PressureLevel = iota
	PressureYellow
	PressureRed
)

// Memory pressure thresholds as used/total ratios. Both are inclusive.
const (
	YellowPressureRatio = 0.70
	RedPressureRatio    = 0.85
)

// PressureFor maps a used/total ratio to a pressure level.
func PressureFor(ratio float64) PressureLevel {
	switch {
	case ratio >= RedPressureRatio:
		return PressureRed
	case ratio >= YellowPressureRatio:
		return PressureYellow
	default:
		return PressureNormal
	}
}

// String returns the lowercase level name.
func (p PressureLevel) String() string {
	switch p {
	case PressureYellow:
		return "yellow"
	case PressureRed:
		return "red"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize by name.
func (p PressureLevel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PressureLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*p = PressureNormal
	case "yellow":
		*p = PressureYellow
	case "red":
		*p = PressureRed
	default:
		return fmt.Errorf("unknown pressure level %q", string(text))
	}
	return nil
}

// MemorySample is RAM usage plus its pressure level.
type MemorySample struct {
	UsedBytes      uint64        `json:"used_bytes"`
	AvailableBytes uint64        `json:"available_bytes"`
	TotalBytes     uint64        `json:"total_bytes"`
	Pressure       PressureLevel `json:"pressure"`
}

// NewMemorySample builds a MemorySample and derives the pressure level.
func NewMemorySample(used, available, total uint64) MemorySample {
	s := MemorySample{
		UsedBytes:      used,
		AvailableBytes: available,
		TotalBytes:     total,
	}
	if total > 0 {
		s.Pressure = PressureFor(float64(used) / float64(total))
	}
	return s
}

// DiskSample is capacity usage of a single volume.
type DiskSample struct {
	UsedBytes  uint64  `json:"used_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	Percent    float64 `json:"percent"`
}

// NewDiskSample builds a DiskSample with a clamped percentage.
func NewDiskSample(used, total uint64) DiskSample {
	s := DiskSample{UsedBytes: used, TotalBytes: total}
	if total > 0 {
		s.Percent = ClampPercent(float64(used) / float64(total) * 100)
	}
	return s
}

// GPUSample is GPU utilization. Estimated is set when no direct reading was
// available and the value was derived from CPU load.
type GPUSample struct {
	Percent   float64 `json:"percent"`
	Estimated bool    `json:"estimated"`
}

// StatsSample is the payload published to the display layer once per tick.
type StatsSample struct {
	Timestamp     time.Time    `json:"timestamp"`
	CPUCores      []float64    `json:"cpu_cores"`
	CPUOverall    float64      `json:"cpu_overall"`
	Memory        MemorySample `json:"memory"`
	Disk          DiskSample   `json:"disk"`
	GPU           GPUSample    `json:"gpu"`
	CPUTemp       *float64     `json:"cpu_temp,omitempty"`
	GPUTemp       *float64     `json:"gpu_temp,omitempty"`
	UptimeSeconds int          `json:"uptime_seconds"`
}

// ClampPercent limits v to [0,100]. NaN becomes 0.
func ClampPercent(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
