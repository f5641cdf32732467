package command

import (
	"github.com/netfleet/netfleet/pkg/util"
)

// snmpTable maps operations to standard MIB-2 object lists. SNMP is
// vendor-neutral, so unlike commandTable the mapping is keyed by operation
// alone. The comma-separated list is the command format the snmp transport
// executes.
//
// Only operations answerable with scalar GETs are mapped; table walks
// (interfaces, routes) are out of reach for monitor-only SNMP devices.
var snmpTable = map[Operation]string{
	// sysDescr.0, sysUpTime.0, sysName.0
	GetVersion: "1.3.6.1.2.1.1.1.0, 1.3.6.1.2.1.1.3.0, 1.3.6.1.2.1.1.5.0",
}

// TranslateSNMP resolves the OID list for an operation on an SNMP-managed
// device. The vendor is only used for error reporting; the OIDs themselves
// are standard.
func TranslateSNMP(op Operation, vendor Vendor) (string, error) {
	oids, ok := snmpTable[op]
	if !ok {
		return "", &util.UnsupportedOperationError{Operation: string(op), Vendor: string(vendor)}
	}
	return oids, nil
}
