//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// desktopTemplate is the XDG autostart entry written during installation.
const desktopTemplate = `[Desktop Entry]
Type=Application
Name=Island
Comment=System stats island
Exec="{execPath}"
Terminal=false
X-GNOME-Autostart-enabled=true
`

// linuxManager implements Manager with an XDG autostart desktop entry.
type linuxManager struct {
	entryPath string
}

// New returns a Manager writing to $XDG_CONFIG_HOME/autostart.
func New() Manager {
	return &linuxManager{entryPath: filepath.Join(configHome(), "autostart", "island.desktop")}
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// ServiceName returns the desktop entry file name.
func (l *linuxManager) ServiceName() string { return filepath.Base(l.entryPath) }

// IsInstalled checks whether the desktop entry exists.
func (l *linuxManager) IsInstalled() (bool, error) {
	_, err := os.Stat(l.entryPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking autostart entry: %w", err)
	}
	return true, nil
}

// Install writes the desktop entry with the binary path substituted.
func (l *linuxManager) Install(execPath string) error {
	if err := os.MkdirAll(filepath.Dir(l.entryPath), 0755); err != nil {
		return fmt.Errorf("creating autostart directory: %w", err)
	}
	entry := strings.ReplaceAll(desktopTemplate, "{execPath}", execPath)
	if err := os.WriteFile(l.entryPath, []byte(entry), 0644); err != nil {
		return fmt.Errorf("writing autostart entry: %w", err)
	}
	return nil
}

// Uninstall removes the desktop entry.
func (l *linuxManager) Uninstall() error {
	if err := os.Remove(l.entryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing autostart entry: %w", err)
	}
	return nil
}
