// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fleet error taxonomy. Every per-device failure
// produced by the dispatcher unwraps to exactly one of these.
var (
	ErrUnknownDevice        = errors.New("device not in registry")
	ErrUnsupportedOperation = errors.New("operation not supported for vendor")
	ErrConnectionFailure    = errors.New("connection failure")
	ErrExecutionTimeout     = errors.New("execution timeout")
	ErrRemoteExecution      = errors.New("remote execution error")
	ErrInvalidInventory     = errors.New("invalid inventory")
)

// UnknownDeviceError identifies a target name with no registry entry.
type UnknownDeviceError struct {
	Device string
}

func (e *UnknownDeviceError) Error() string {
	return fmt.Sprintf("device '%s' not found in registry", e.Device)
}

func (e *UnknownDeviceError) Unwrap() error {
	return ErrUnknownDevice
}

// UnsupportedOperationError reports a missing (operation, vendor) command
// mapping. A missing mapping is a declared error, never a silent no-op.
type UnsupportedOperationError struct {
	Operation string
	Vendor    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation '%s' has no command mapping for vendor '%s'", e.Operation, e.Vendor)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

// ConnectionError wraps a transport-level failure while establishing a
// session to a device.
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to '%s': %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnectionFailure
}

// NewConnectionError creates a connection error for a device.
func NewConnectionError(device string, err error) *ConnectionError {
	return &ConnectionError{Device: device, Err: err}
}

// CommandError reports a command that the device accepted a session for
// but rejected or failed. Output holds whatever the device returned.
type CommandError struct {
	Device  string
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command '%s' failed on '%s': %v", e.Command, e.Device, e.Err)
}

func (e *CommandError) Unwrap() error {
	return ErrRemoteExecution
}

// NewCommandError creates a remote execution error.
func NewCommandError(device, command, output string, err error) *CommandError {
	return &CommandError{Device: device, Command: command, Output: output, Err: err}
}

// InventoryError collects one or more inventory validation failures.
// Inventory errors are fatal at startup.
type InventoryError struct {
	Problems []string
}

func (e *InventoryError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid inventory: " + e.Problems[0]
	}
	msg := "invalid inventory:"
	for _, p := range e.Problems {
		msg += "\n  - " + p
	}
	return msg
}

func (e *InventoryError) Unwrap() error {
	return ErrInvalidInventory
}
