package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// UptimeCollector reports time since boot as a time.Duration.
type UptimeCollector struct {
	read func(ctx context.Context) (uint64, error)
}

func NewUptimeCollector() *UptimeCollector {
	return &UptimeCollector{read: host.UptimeWithContext}
}

func (c *UptimeCollector) Name() string { return NameUptime }

// Collect returns whole seconds since boot.
func (c *UptimeCollector) Collect(ctx context.Context) (interface{}, error) {
	secs, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	return time.Duration(secs) * time.Second, nil
}

func (c *UptimeCollector) IsAvailable() bool { return true }
