// Package testutil provides fakes for exercising the fleet orchestration
// layer without real devices.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/transport"
)

// DeviceScript configures the simulated behavior of one device.
type DeviceScript struct {
	DialErr     error         // establishment fails with this error
	DialLatency time.Duration // time to establish a session
	ExecLatency time.Duration // time per command round-trip
	ExecErr     error         // command execution fails with this error
	Output      string        // raw output on success
}

// Fabric is a scripted stand-in for the transport layer. Its Dial method is
// a fleet.DialFunc; per-device behavior comes from the Scripts map (devices
// without a script succeed immediately with a default output).
type Fabric struct {
	mu       sync.Mutex
	Scripts  map[string]DeviceScript
	dials    map[string]int
	conns    []*FakeConn
	executed map[string][]string
}

// NewFabric creates an empty fabric.
func NewFabric() *Fabric {
	return &Fabric{
		Scripts:  make(map[string]DeviceScript),
		dials:    make(map[string]int),
		executed: make(map[string][]string),
	}
}

// Script sets the behavior for one device.
func (f *Fabric) Script(device string, s DeviceScript) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scripts[device] = s
}

// Dial implements fleet.DialFunc.
func (f *Fabric) Dial(ctx context.Context, dev *inventory.Device) (transport.Conn, error) {
	f.mu.Lock()
	f.dials[dev.Name]++
	script := f.Scripts[dev.Name]
	f.mu.Unlock()

	if script.DialLatency > 0 {
		select {
		case <-time.After(script.DialLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if script.DialErr != nil {
		return nil, script.DialErr
	}

	conn := &FakeConn{fabric: f, device: dev.Name}
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()
	return conn, nil
}

// Dials returns how many establishment attempts a device has seen.
func (f *Fabric) Dials(device string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials[device]
}

// Executed returns the commands a device has run, in order.
func (f *Fabric) Executed(device string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.executed[device]...)
}

// OpenConns returns how many dialed connections have not been closed.
func (f *Fabric) OpenConns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	open := 0
	for _, c := range f.conns {
		if !c.closed {
			open++
		}
	}
	return open
}

// FakeConn is a scripted device session.
type FakeConn struct {
	fabric *Fabric
	device string
	closed bool
}

func (c *FakeConn) Execute(ctx context.Context, command string) (string, error) {
	c.fabric.mu.Lock()
	script := c.fabric.Scripts[c.device]
	c.fabric.executed[c.device] = append(c.fabric.executed[c.device], command)
	c.fabric.mu.Unlock()

	if script.ExecLatency > 0 {
		select {
		case <-time.After(script.ExecLatency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if script.ExecErr != nil {
		return "", script.ExecErr
	}
	if script.Output != "" {
		return script.Output, nil
	}
	return fmt.Sprintf("output from %s: %s", c.device, command), nil
}

func (c *FakeConn) Close() error {
	c.fabric.mu.Lock()
	c.closed = true
	c.fabric.mu.Unlock()
	return nil
}

// Inventory builds a minimal inventory with the given devices. Vendors
// rotate over the given list when fewer vendors than names are supplied.
func Inventory(names []string, vendors []string) (*inventory.Inventory, error) {
	devices := make([]*inventory.Device, len(names))
	for i, name := range names {
		vendor := vendors[i%len(vendors)]
		devices[i] = &inventory.Device{
			Name:      name,
			Vendor:    parseVendor(vendor),
			Address:   fmt.Sprintf("10.0.0.%d", i+1),
			Transport: inventory.TransportSSH,
			Username:  "admin",
		}
	}
	return inventory.New(devices)
}

func parseVendor(tag string) command.Vendor {
	v, ok := command.ParseVendor(tag)
	if !ok {
		return command.VendorArista
	}
	return v
}
