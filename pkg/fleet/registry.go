package fleet

import (
	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// Registry resolves device names to their immutable descriptors. It is a
// read-only view over the loaded inventory and holds no orchestration logic.
type Registry struct {
	inv *inventory.Inventory
}

// NewRegistry wraps a loaded inventory.
func NewRegistry(inv *inventory.Inventory) *Registry {
	return &Registry{inv: inv}
}

// Get returns the descriptor for a device name.
func (r *Registry) Get(name string) (*inventory.Device, error) {
	dev := r.inv.Get(name)
	if dev == nil {
		return nil, &util.UnknownDeviceError{Device: name}
	}
	return dev, nil
}

// Names returns all registered device names in inventory order. This is the
// resolved target set when a fleet call names no explicit targets.
func (r *Registry) Names() []string {
	return r.inv.Names()
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return r.inv.Len()
}
