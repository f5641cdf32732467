// Package command maps canonical, vendor-neutral operations to the literal
// command syntax each vendor understands. The mapping table is data, not
// code: adding vendor support for an operation means adding one table entry,
// never touching dispatch logic.
package command

import (
	"sort"
	"strings"
)

// Operation is a canonical, vendor-neutral query identifier.
type Operation string

const (
	GetVersion           Operation = "GetVersion"
	GetInterfaces        Operation = "GetInterfaces"
	GetInterfaceCounters Operation = "GetInterfaceCounters"
	GetRoutes            Operation = "GetRoutes"
	GetLldpNeighbors     Operation = "GetLldpNeighbors"
	GetArpTable          Operation = "GetArpTable"
	GetRunningConfig     Operation = "GetRunningConfig"
)

// Vendor identifies a device make. The value matches the vendor tag used in
// inventory files.
type Vendor string

const (
	VendorArista  Vendor = "arista_eos"
	VendorCisco   Vendor = "cisco_ios"
	VendorJuniper Vendor = "juniper_junos"
	VendorSONiC   Vendor = "sonic"
)

// Params carries optional operation-specific parameters, e.g. a single
// interface name for GetInterfaces.
type Params map[string]string

// ParamInterface is the parameter key for a single interface name.
const ParamInterface = "interface"

// Operations returns all canonical operations in stable order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(commandTable))
	for op := range commandTable {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// ParseOperation resolves a user-supplied operation name. Both the canonical
// form ("GetVersion") and a kebab-case form ("get-version") are accepted.
func ParseOperation(name string) (Operation, bool) {
	want := normalizeOpName(name)
	for op := range commandTable {
		if normalizeOpName(string(op)) == want {
			return op, true
		}
	}
	return "", false
}

func normalizeOpName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// ParseVendor resolves an inventory vendor tag.
func ParseVendor(tag string) (Vendor, bool) {
	switch Vendor(strings.ToLower(tag)) {
	case VendorArista:
		return VendorArista, true
	case VendorCisco:
		return VendorCisco, true
	case VendorJuniper:
		return VendorJuniper, true
	case VendorSONiC:
		return VendorSONiC, true
	}
	return "", false
}
