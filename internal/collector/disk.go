// Disk usage collector: gathers capacity usage of the startup volume.
// Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/notchkit/island/internal/models"
)

// DiskCollector collects capacity usage for a single mount point.
type DiskCollector struct {
	path   string
	usage  func(ctx context.Context, path string) (*disk.UsageStat, error)
	logger *zap.Logger
}

// NewDiskCollector creates a disk collector for the volume holding path.
func NewDiskCollector(path string, logger *zap.Logger) *DiskCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiskCollector{
		path:   path,
		usage:  disk.UsageWithContext,
		logger: logger,
	}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return NameDisk }

// Collect reads filesystem capacity and returns a models.DiskSample.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	u, err := c.usage(ctx, c.path)
	if err != nil {
		return nil, err
	}
	if u.Total == 0 {
		c.logger.Debug("Volume reports zero capacity", zap.String("path", c.path))
	}
	return models.NewDiskSample(u.Used, u.Total), nil
}

// IsAvailable reports whether a volume path was configured.
func (c *DiskCollector) IsAvailable() bool { return c.path != "" }
