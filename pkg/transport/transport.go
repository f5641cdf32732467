// Package transport implements the per-device command execution boundary:
// an authenticated session to one device that runs literal commands and
// returns raw output. Sessions are owned by the connection pool; this
// package only knows how to establish and drive a single one.
package transport

import (
	"context"
	"fmt"

	"github.com/netfleet/netfleet/pkg/inventory"
)

// Conn is a live session bound to exactly one device.
//
// Execute runs one literal command (as produced by the command translator)
// and returns the raw output. Implementations must honor ctx cancellation
// and deadlines. Execute is not required to be safe for concurrent use;
// the dispatcher issues one command at a time per device.
type Conn interface {
	Execute(ctx context.Context, command string) (string, error)
	Close() error
}

// Dial establishes a session to the device using its configured transport.
func Dial(ctx context.Context, dev *inventory.Device) (Conn, error) {
	switch dev.Transport {
	case inventory.TransportSSH:
		return dialSSH(ctx, dev)
	case inventory.TransportTelnet:
		return dialTelnet(ctx, dev)
	case inventory.TransportSNMP:
		return dialSNMP(ctx, dev)
	case inventory.TransportSonicDB:
		return dialSonicDB(ctx, dev)
	}
	return nil, fmt.Errorf("unknown transport '%s' for device '%s'", dev.Transport, dev.Name)
}
