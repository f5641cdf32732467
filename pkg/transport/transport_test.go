package transport

import (
	"testing"

	"github.com/gosnmp/gosnmp"
)

func TestStripEcho(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		command string
		want    string
	}{
		{
			name:    "echo and prompt removed",
			raw:     "show version\r\nCisco IOS Software, Version 15.2\r\nswitch-1#",
			command: "show version",
			want:    "Cisco IOS Software, Version 15.2",
		},
		{
			name:    "no echo",
			raw:     "line one\nline two\nswitch-1>",
			command: "show arp",
			want:    "line one\nline two",
		},
		{
			name:    "prompt only",
			raw:     "show clock\nswitch-1#",
			command: "show clock",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripEcho(tt.raw, tt.command); got != tt.want {
				t.Errorf("stripEcho = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSonicKeySep(t *testing.T) {
	tests := []struct {
		db   string
		want string
	}{
		{"CONFIG_DB", "|"},
		{"STATE_DB", "|"},
		{"APPL_DB", ":"},
		{"COUNTERS_DB", ":"},
		{"ASIC_DB", ":"},
	}
	for _, tt := range tests {
		if got := sonicKeySep(tt.db); got != tt.want {
			t.Errorf("sonicKeySep(%s) = %q, want %q", tt.db, got, tt.want)
		}
	}
}

func TestSonicDBIndexes(t *testing.T) {
	want := map[string]int{
		"APPL_DB":   0,
		"CONFIG_DB": 4,
		"STATE_DB":  6,
	}
	for db, idx := range want {
		if sonicDBs[db] != idx {
			t.Errorf("sonicDBs[%s] = %d, want %d", db, sonicDBs[db], idx)
		}
	}
}

func TestRenderSNMPValue(t *testing.T) {
	tests := []struct {
		name string
		pdu  gosnmp.SnmpPDU
		want string
	}{
		{
			name: "octet string",
			pdu:  gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("SONiC Software Version")},
			want: "SONiC Software Version",
		},
		{
			name: "integer",
			pdu:  gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: 42},
			want: "42",
		},
		{
			name: "missing object",
			pdu:  gosnmp.SnmpPDU{Type: gosnmp.NoSuchObject},
			want: "<no such object>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderSNMPValue(tt.pdu); got != tt.want {
				t.Errorf("renderSNMPValue = %q, want %q", got, tt.want)
			}
		})
	}
}
