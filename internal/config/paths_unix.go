//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".island", "config.yaml"),
		"/etc/island/config.yaml",
	}
}

func defaultDiskPath() string { return "/" }
