//go:build !darwin && !linux && !windows

package autostart

import "errors"

var errUnsupported = errors.New("login items are not supported on this platform")

type unsupportedManager struct{}

// New returns a Manager that always fails.
func New() Manager { return unsupportedManager{} }

func (unsupportedManager) ServiceName() string          { return Label }
func (unsupportedManager) IsInstalled() (bool, error)   { return false, nil }
func (unsupportedManager) Install(execPath string) error { return errUnsupported }
func (unsupportedManager) Uninstall() error             { return nil }
