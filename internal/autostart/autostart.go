// Package autostart registers the island as a per-user login item so it is
// running whenever the user's desktop session is.
package autostart

import "os/exec"

// Label identifies the login item on every platform.
const Label = "com.notchkit.island"

// Manager provides platform-specific login item installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	ServiceName() string
}

// runCommand runs an external tool, ignoring its output.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}
