package bmc

import "errors"

var (
	// ErrDeviceCommandFailed indicates a sub-command exhausted its retry
	// budget; the channel's state is left unchanged for this iteration.
	ErrDeviceCommandFailed = errors.New("device command failed")

	// ErrLockTimeout indicates the cross-process command lock could not be
	// acquired within its bounded wait. Treated like a failed command.
	ErrLockTimeout = errors.New("timed out waiting for command lock")
)
