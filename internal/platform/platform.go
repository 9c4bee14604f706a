// Package platform provides an OS abstraction layer for GPU readings that
// gopsutil does not offer. Each supported OS implements the Platform interface.
package platform

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when the OS exposes no direct GPU reading.
var ErrUnavailable = errors.New("gpu reading unavailable")

// Platform provides OS-specific GPU functionality.
type Platform interface {
	// GPUUtilization returns the current GPU busy percentage.
	// Returns ErrUnavailable if no direct reading exists on this machine.
	GPUUtilization(ctx context.Context) (float64, error)

	// GPUTemperature returns GPU temperature if available.
	// Returns nil if GPU temperature cannot be determined.
	GPUTemperature(ctx context.Context) (*float64, error)

	// Name returns the platform name (darwin, linux, windows, stub).
	Name() string
}

// runCommand executes name with args and returns stdout.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ioregUtilization matches the accelerator performance statistics key, e.g.
// "Device Utilization %"=37
var ioregUtilization = regexp.MustCompile(`"Device Utilization %"\s*=\s*(\d+)`)

// parseIORegUtilization extracts the highest device utilization reported by
// `ioreg -c IOAccelerator`. Machines with several GPUs report one entry each.
func parseIORegUtilization(out []byte) (float64, bool) {
	matches := ioregUtilization.FindAllSubmatch(out, -1)
	if len(matches) == 0 {
		return 0, false
	}
	best, found := 0.0, false
	for _, m := range matches {
		v, err := strconv.ParseFloat(string(m[1]), 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

// parseNvidiaSMI parses `nvidia-smi --format=csv,noheader,nounits` output of
// a single numeric query. Multi-GPU output has one line per device; the
// highest value wins.
func parseNvidiaSMI(out []byte) (float64, bool) {
	best, found := 0.0, false
	for _, line := range bytes.Split(out, []byte("\n")) {
		field := strings.TrimSpace(string(line))
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

// queryNvidiaSMI runs nvidia-smi for one query field.
func queryNvidiaSMI(ctx context.Context, field string) (float64, bool) {
	out, err := runCommand(ctx, "nvidia-smi",
		"--query-gpu="+field, "--format=csv,noheader,nounits")
	if err != nil {
		return 0, false
	}
	return parseNvidiaSMI(out)
}
