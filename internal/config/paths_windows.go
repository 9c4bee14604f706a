//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	return []string{
		filepath.Join(os.Getenv("APPDATA"), "island", "config.yaml"),
		filepath.Join(os.Getenv("ProgramData"), "island", "config.yaml"),
	}
}

func defaultDiskPath() string {
	if drive := os.Getenv("SystemDrive"); drive != "" {
		return drive + `\`
	}
	return `C:\`
}
