// Package inventory loads and validates the declarative device inventory.
// The inventory is read once at process start and is read-only afterwards;
// malformed entries are a fatal configuration error.
package inventory

import (
	"net"
	"strconv"

	"github.com/netfleet/netfleet/pkg/command"
)

// Transport selects how a device session is established.
type Transport string

const (
	TransportSSH     Transport = "ssh"
	TransportTelnet  Transport = "telnet"
	TransportSNMP    Transport = "snmp"
	TransportSonicDB Transport = "sonic-db"
)

// defaultPorts maps each transport to its conventional port.
var defaultPorts = map[Transport]int{
	TransportSSH:     22,
	TransportTelnet:  23,
	TransportSNMP:    161,
	TransportSonicDB: 22, // redis reached through an SSH tunnel
}

// Device describes one inventory entry. Immutable after load.
//
// Password is resolved from the environment variable named by PasswordEnv
// during load and never appears in the inventory file itself. For SNMP
// devices it carries the community string.
type Device struct {
	Name        string         `yaml:"name"`
	Vendor      command.Vendor `yaml:"vendor"`
	Address     string         `yaml:"address"`
	Port        int            `yaml:"port,omitempty"`
	Transport   Transport      `yaml:"transport"`
	Username    string         `yaml:"username,omitempty"`
	PasswordEnv string         `yaml:"password_env,omitempty"`

	Password string `yaml:"-"`
}

// Addr returns the dialable "host:port" address for the device.
func (d *Device) Addr() string {
	port := d.Port
	if port == 0 {
		port = defaultPorts[d.Transport]
	}
	return net.JoinHostPort(d.Address, strconv.Itoa(port))
}

// Inventory is the loaded device list, preserving file order.
type Inventory struct {
	devices []*Device
	byName  map[string]*Device
}

// Get returns the device with the given name, or nil.
func (inv *Inventory) Get(name string) *Device {
	return inv.byName[name]
}

// Names returns all device names in inventory order.
func (inv *Inventory) Names() []string {
	names := make([]string, len(inv.devices))
	for i, d := range inv.devices {
		names[i] = d.Name
	}
	return names
}

// All returns all devices in inventory order.
func (inv *Inventory) All() []*Device {
	return inv.devices
}

// Len returns the number of devices.
func (inv *Inventory) Len() int {
	return len(inv.devices)
}
