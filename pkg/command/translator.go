package command

import (
	"sort"
	"strings"

	"github.com/netfleet/netfleet/pkg/util"
)

// commandTable is the full (operation, vendor) → command template mapping.
//
// CLI vendors get literal show commands. SONiC entries are redis table
// selectors ("<DB>/<TABLE>" or "<DB>/<TABLE>|<KEY>") interpreted by the
// sonic-db transport. Templates may contain the "{interface}" placeholder,
// which is substituted from Params or stripped when no parameter is given.
//
// Some combinations are intentionally absent (e.g. interface counters on
// Junos); translating those fails with an UnsupportedOperationError.
var commandTable = map[Operation]map[Vendor]string{
	GetVersion: {
		VendorArista:  "show version",
		VendorCisco:   "show version",
		VendorJuniper: "show version",
		VendorSONiC:   "CONFIG_DB/DEVICE_METADATA|localhost",
	},
	GetInterfaces: {
		VendorArista:  "show interfaces {interface}",
		VendorCisco:   "show interfaces {interface}",
		VendorJuniper: "show interfaces terse {interface}",
		VendorSONiC:   "CONFIG_DB/PORT",
	},
	GetInterfaceCounters: {
		VendorArista: "show interfaces counters errors",
		VendorCisco:  "show interfaces counters errors",
		VendorSONiC:  "STATE_DB/PORT_TABLE",
	},
	GetRoutes: {
		VendorArista:  "show ip route summary",
		VendorCisco:   "show ip route summary",
		VendorJuniper: "show route summary",
		VendorSONiC:   "APPL_DB/ROUTE_TABLE",
	},
	GetLldpNeighbors: {
		VendorArista:  "show lldp neighbors",
		VendorCisco:   "show lldp neighbors",
		VendorJuniper: "show lldp neighbors",
		VendorSONiC:   "APPL_DB/LLDP_ENTRY_TABLE",
	},
	GetArpTable: {
		VendorArista:  "show arp",
		VendorCisco:   "show ip arp",
		VendorJuniper: "show arp no-resolve",
	},
	GetRunningConfig: {
		VendorArista:  "show running-config",
		VendorCisco:   "show running-config",
		VendorJuniper: "show configuration | display set",
		VendorSONiC:   "CONFIG_DB/*",
	},
}

// Translate resolves the literal command for an operation on a vendor.
// It is a pure lookup plus parameter substitution: no I/O, deterministic,
// safe for unsynchronized concurrent use.
func Translate(op Operation, vendor Vendor, params Params) (string, error) {
	byVendor, ok := commandTable[op]
	if !ok {
		return "", &util.UnsupportedOperationError{Operation: string(op), Vendor: string(vendor)}
	}
	template, ok := byVendor[vendor]
	if !ok {
		return "", &util.UnsupportedOperationError{Operation: string(op), Vendor: string(vendor)}
	}
	return expand(template, params), nil
}

// expand substitutes the "{interface}" placeholder from params, or strips it
// (collapsing the surrounding whitespace) when no value is given, so
// "show interfaces {interface}" with no parameter becomes "show interfaces".
func expand(template string, params Params) string {
	const placeholder = "{" + ParamInterface + "}"
	if !strings.Contains(template, placeholder) {
		return template
	}
	if v := params[ParamInterface]; v != "" {
		return strings.ReplaceAll(template, placeholder, v)
	}
	cmd := strings.ReplaceAll(template, placeholder, "")
	return strings.Join(strings.Fields(cmd), " ")
}

// Mapping is one (operation, vendor) → template entry, exposed for the
// introspection surface (netfleet operations).
type Mapping struct {
	Operation Operation
	Vendor    Vendor
	Template  string
}

// Mappings returns every registered mapping sorted by operation then vendor.
func Mappings() []Mapping {
	var all []Mapping
	for op, byVendor := range commandTable {
		for vendor, template := range byVendor {
			all = append(all, Mapping{Operation: op, Vendor: vendor, Template: template})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Operation != all[j].Operation {
			return all[i].Operation < all[j].Operation
		}
		return all[i].Vendor < all[j].Vendor
	})
	return all
}

// Vendors returns the vendors that have a mapping for op, sorted.
func Vendors(op Operation) []Vendor {
	byVendor, ok := commandTable[op]
	if !ok {
		return nil
	}
	vendors := make([]Vendor, 0, len(byVendor))
	for v := range byVendor {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i] < vendors[j] })
	return vendors
}
