package fleet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/netfleet/netfleet/pkg/command"
)

// VersionInfo is the vendor-neutral record produced from "show version"
// style output.
type VersionInfo struct {
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// InterfaceCounters is one interface's error counters.
type InterfaceCounters struct {
	Interface    string `json:"interface"`
	AlignErrors  int64  `json:"align_errors"`
	FCSErrors    int64  `json:"fcs_errors"`
	OutputErrors int64  `json:"output_errors"`
	InputErrors  int64  `json:"input_errors"`
}

// Total returns the sum of all error counters.
func (c InterfaceCounters) Total() int64 {
	return c.AlignErrors + c.FCSErrors + c.OutputErrors + c.InputErrors
}

// registerDefaultParsers installs the built-in structured parsers. Anything
// not covered here passes through as raw text.
func registerDefaultParsers(a *Aggregator) {
	a.Register(command.GetVersion, command.VendorArista, parseAristaVersion)
	a.Register(command.GetVersion, command.VendorCisco, parseCiscoVersion)
	a.Register(command.GetVersion, command.VendorSONiC, parseSonicVersion)
	a.Register(command.GetInterfaceCounters, command.VendorArista, parseCounterErrors)
	a.Register(command.GetInterfaceCounters, command.VendorCisco, parseCounterErrors)
}

// parseAristaVersion reads EOS "show version" output: the first line is the
// model, the rest is "Key: value" pairs.
func parseAristaVersion(raw string) (interface{}, error) {
	info := VersionInfo{}
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if i == 0 && !strings.Contains(line, ":") {
			info.Model = line
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "software image version":
			info.Version = value
		case "serial number":
			info.Serial = value
		case "uptime":
			info.Uptime = value
		}
	}
	if info.Version == "" {
		return nil, fmt.Errorf("no software image version in output")
	}
	return info, nil
}

// parseCiscoVersion reads IOS "show version" output.
func parseCiscoVersion(raw string) (interface{}, error) {
	info := VersionInfo{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case info.Version == "" && strings.Contains(line, "Version "):
			rest := line[strings.Index(line, "Version ")+len("Version "):]
			if i := strings.IndexAny(rest, ", "); i > 0 {
				rest = rest[:i]
			}
			info.Version = rest
		case strings.Contains(line, " uptime is "):
			info.Uptime = strings.TrimSpace(line[strings.Index(line, " uptime is ")+len(" uptime is "):])
		case strings.HasPrefix(line, "Model number"):
			info.Model = valueAfterColon(line)
		case strings.HasPrefix(line, "System serial number"):
			info.Serial = valueAfterColon(line)
		}
	}
	if info.Version == "" {
		return nil, fmt.Errorf("no version string in output")
	}
	return info, nil
}

// parseSonicVersion reads the JSON rendering of the DEVICE_METADATA entry
// produced by the sonic-db transport.
func parseSonicVersion(raw string) (interface{}, error) {
	var fields map[string]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("parsing DEVICE_METADATA: %w", err)
	}
	info := VersionInfo{
		Model:   fields["hwsku"],
		Version: fields["sonic_version"],
	}
	if info.Model == "" {
		info.Model = fields["platform"]
	}
	if info.Model == "" && info.Version == "" {
		return nil, fmt.Errorf("no hwsku or sonic_version in DEVICE_METADATA")
	}
	return info, nil
}

// parseCounterErrors reads the tabular "show interfaces counters errors"
// output shared by EOS and IOS:
//
//	Port        Align-Err    FCS-Err   Xmit-Err    Rcv-Err ...
//	Gi1/0/1             0          0          0          0 ...
func parseCounterErrors(raw string) (interface{}, error) {
	var counters []InterfaceCounters
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || strings.EqualFold(fields[0], "Port") {
			continue
		}
		nums := make([]int64, 0, 4)
		ok := true
		for _, f := range fields[1:5] {
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				ok = false
				break
			}
			nums = append(nums, n)
		}
		if !ok {
			continue
		}
		counters = append(counters, InterfaceCounters{
			Interface:    fields[0],
			AlignErrors:  nums[0],
			FCSErrors:    nums[1],
			OutputErrors: nums[2],
			InputErrors:  nums[3],
		})
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("no counter rows in output")
	}
	return counters, nil
}

// HighErrorInterfaces filters a GetInterfaceCounters payload down to
// interfaces whose total error count exceeds the threshold. Returns nil for
// payloads that are not structured counters (raw passthrough).
func HighErrorInterfaces(payload interface{}, threshold int64) []InterfaceCounters {
	counters, ok := payload.([]InterfaceCounters)
	if !ok {
		return nil
	}
	var high []InterfaceCounters
	for _, c := range counters {
		if c.Total() > threshold {
			high = append(high, c)
		}
	}
	return high
}

func valueAfterColon(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
