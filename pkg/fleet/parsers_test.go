package fleet

import (
	"testing"
)

const aristaVersionOutput = ` Arista DCS-7050QX-32S-F
Hardware version: 01.31
Serial number: JPE17233041
Hardware MAC address: 444c.a8b4.2f5a
System MAC address: 444c.a8b4.2f5a

Software image version: 4.28.3M
Architecture: i686
Internal build version: 4.28.3M-28837868.4283M

Uptime: 6 weeks, 3 days, 1 hour
Total memory: 3993744 kB
Free memory: 2323148 kB
`

func TestParseAristaVersion(t *testing.T) {
	payload, err := parseAristaVersion(aristaVersionOutput)
	if err != nil {
		t.Fatalf("parseAristaVersion failed: %v", err)
	}
	info := payload.(VersionInfo)

	if info.Model != "Arista DCS-7050QX-32S-F" {
		t.Errorf("Model = %q", info.Model)
	}
	if info.Version != "4.28.3M" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.Serial != "JPE17233041" {
		t.Errorf("Serial = %q", info.Serial)
	}
	if info.Uptime != "6 weeks, 3 days, 1 hour" {
		t.Errorf("Uptime = %q", info.Uptime)
	}
}

func TestParseAristaVersion_Garbage(t *testing.T) {
	if _, err := parseAristaVersion("not version output"); err == nil {
		t.Error("expected an error for unrecognized output")
	}
}

const ciscoVersionOutput = `Cisco IOS Software, C3750E Software (C3750E-UNIVERSALK9-M), Version 15.2(4)E10, RELEASE SOFTWARE (fc2)
Technical Support: http://www.cisco.com/techsupport

switch-access-1 uptime is 2 years, 14 weeks, 5 days
System returned to ROM by power-on

Model number                    : WS-C3750X-48P-S
System serial number            : FDO1628V2KX
`

func TestParseCiscoVersion(t *testing.T) {
	payload, err := parseCiscoVersion(ciscoVersionOutput)
	if err != nil {
		t.Fatalf("parseCiscoVersion failed: %v", err)
	}
	info := payload.(VersionInfo)

	if info.Version != "15.2(4)E10" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.Model != "WS-C3750X-48P-S" {
		t.Errorf("Model = %q", info.Model)
	}
	if info.Serial != "FDO1628V2KX" {
		t.Errorf("Serial = %q", info.Serial)
	}
	if info.Uptime != "2 years, 14 weeks, 5 days" {
		t.Errorf("Uptime = %q", info.Uptime)
	}
}

func TestParseSonicVersion(t *testing.T) {
	raw := `{"hwsku": "Accton-AS7726-32X", "sonic_version": "SONiC.202211", "platform": "x86_64-accton_as7726_32x-r0"}`

	payload, err := parseSonicVersion(raw)
	if err != nil {
		t.Fatalf("parseSonicVersion failed: %v", err)
	}
	info := payload.(VersionInfo)

	if info.Model != "Accton-AS7726-32X" {
		t.Errorf("Model = %q", info.Model)
	}
	if info.Version != "SONiC.202211" {
		t.Errorf("Version = %q", info.Version)
	}
}

func TestParseSonicVersion_PlatformFallback(t *testing.T) {
	payload, err := parseSonicVersion(`{"platform": "x86_64-kvm_x86_64-r0"}`)
	if err != nil {
		t.Fatalf("parseSonicVersion failed: %v", err)
	}
	if info := payload.(VersionInfo); info.Model != "x86_64-kvm_x86_64-r0" {
		t.Errorf("Model = %q, want platform fallback", info.Model)
	}
}

const counterErrorsOutput = `Port        Align-Err     FCS-Err    Xmit-Err     Rcv-Err   UnderSize  OutDiscards
Et1                 0           0           0           0           0            0
Et2                 0        1523           7           2           0            0
Et3                12           0           0           0           0            0
`

func TestParseCounterErrors(t *testing.T) {
	payload, err := parseCounterErrors(counterErrorsOutput)
	if err != nil {
		t.Fatalf("parseCounterErrors failed: %v", err)
	}
	counters := payload.([]InterfaceCounters)

	if len(counters) != 3 {
		t.Fatalf("parsed %d rows, want 3", len(counters))
	}
	et2 := counters[1]
	if et2.Interface != "Et2" || et2.FCSErrors != 1523 || et2.OutputErrors != 7 || et2.InputErrors != 2 {
		t.Errorf("Et2 = %+v", et2)
	}
	if et2.Total() != 1532 {
		t.Errorf("Et2 Total = %d, want 1532", et2.Total())
	}
}

func TestHighErrorInterfaces(t *testing.T) {
	payload, err := parseCounterErrors(counterErrorsOutput)
	if err != nil {
		t.Fatalf("parseCounterErrors failed: %v", err)
	}

	high := HighErrorInterfaces(payload, 100)
	if len(high) != 1 || high[0].Interface != "Et2" {
		t.Errorf("HighErrorInterfaces = %+v, want only Et2", high)
	}

	if got := HighErrorInterfaces("raw text payload", 0); got != nil {
		t.Errorf("raw payload should yield nil, got %+v", got)
	}
}
