package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// snmpConn queries a device over SNMP v2c. The "command" at this boundary is
// a comma-separated OID list; output is one "oid = value" line per variable.
// The device's resolved credential is used as the community string.
type snmpConn struct {
	device string
	client *gosnmp.GoSNMP
}

func dialSNMP(ctx context.Context, dev *inventory.Device) (Conn, error) {
	community := dev.Password
	if community == "" {
		community = "public"
	}
	port := uint16(161)
	if dev.Port != 0 {
		port = uint16(dev.Port)
	}
	client := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    dev.Address,
		Port:      port,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   5 * time.Second,
		Retries:   1,
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("SNMP connect %s: %w", dev.Addr(), err)
	}
	return &snmpConn{device: dev.Name, client: client}, nil
}

func (c *snmpConn) Execute(ctx context.Context, command string) (string, error) {
	var oids []string
	for _, oid := range strings.Split(command, ",") {
		if oid = strings.TrimSpace(oid); oid != "" {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return "", util.NewCommandError(c.device, command, "", fmt.Errorf("no OIDs in command"))
	}

	c.client.Context = ctx
	packet, err := c.client.Get(oids)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", util.NewCommandError(c.device, command, "", err)
	}

	var b strings.Builder
	for _, v := range packet.Variables {
		fmt.Fprintf(&b, "%s = %s\n", v.Name, renderSNMPValue(v))
	}
	return b.String(), nil
}

func (c *snmpConn) Close() error {
	if c.client.Conn != nil {
		return c.client.Conn.Close()
	}
	return nil
}

func renderSNMPValue(v gosnmp.SnmpPDU) string {
	switch v.Type {
	case gosnmp.OctetString:
		if b, ok := v.Value.([]byte); ok {
			return string(b)
		}
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance:
		return "<no such object>"
	}
	return fmt.Sprintf("%v", v.Value)
}
