package inventory

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/util"
)

// inventoryFile mirrors the on-disk devices.yaml structure.
type inventoryFile struct {
	Devices []*Device `yaml:"devices"`
}

// Load reads and validates a devices.yaml inventory. A .env file next to the
// process, if present, is loaded first so password_env references resolve.
//
// Validation failures (duplicate names, unknown vendor or transport, missing
// fields) are accumulated and returned together as a single fatal error.
func Load(path string) (*Inventory, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates inventory YAML.
func Parse(data []byte) (*Inventory, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &util.InventoryError{Problems: []string{fmt.Sprintf("parsing YAML: %v", err)}}
	}
	return New(file.Devices)
}

// New validates a device list and builds the inventory, resolving credential
// references from the environment.
func New(devices []*Device) (*Inventory, error) {
	inv := &Inventory{byName: make(map[string]*Device, len(devices))}
	var problems []string

	for i, d := range devices {
		if d == nil {
			problems = append(problems, fmt.Sprintf("entry %d is empty", i+1))
			continue
		}
		if d.Name == "" {
			problems = append(problems, fmt.Sprintf("entry %d has no name", i+1))
			continue
		}
		if _, dup := inv.byName[d.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate device name '%s'", d.Name))
			continue
		}
		if _, ok := command.ParseVendor(string(d.Vendor)); !ok {
			problems = append(problems, fmt.Sprintf("device '%s': unknown vendor '%s'", d.Name, d.Vendor))
		}
		if !validTransport(d.Transport) {
			problems = append(problems, fmt.Sprintf("device '%s': unknown transport '%s'", d.Name, d.Transport))
		}
		if d.Address == "" {
			problems = append(problems, fmt.Sprintf("device '%s': no address", d.Name))
		}
		if d.PasswordEnv != "" {
			d.Password = os.Getenv(d.PasswordEnv)
			if d.Password == "" {
				util.WithDevice(d.Name).Warnf("credential env var %s is not set", d.PasswordEnv)
			}
		}

		inv.devices = append(inv.devices, d)
		inv.byName[d.Name] = d
	}

	if len(problems) > 0 {
		return nil, &util.InventoryError{Problems: problems}
	}
	if len(inv.devices) == 0 {
		return nil, &util.InventoryError{Problems: []string{"no devices defined"}}
	}
	return inv, nil
}

func validTransport(t Transport) bool {
	switch t {
	case TransportSSH, TransportTelnet, TransportSNMP, TransportSonicDB:
		return true
	}
	return false
}
