package fleet

import (
	"errors"
	"testing"

	"github.com/netfleet/netfleet/pkg/command"
)

func TestAggregator_RawPassthroughWithoutParser(t *testing.T) {
	a := NewAggregator()

	raw := "inet.0: 25 destinations, 25 routes"
	payload := a.Normalize(command.GetRoutes, command.VendorJuniper, raw)
	if payload != raw {
		t.Errorf("payload = %v, want raw passthrough", payload)
	}
}

func TestAggregator_ParserFailureFallsBackToRaw(t *testing.T) {
	a := NewAggregator()

	raw := "garbage that is not show version output"
	payload := a.Normalize(command.GetVersion, command.VendorArista, raw)
	if payload != raw {
		t.Errorf("payload = %v, want raw passthrough on parse failure", payload)
	}
}

func TestAggregator_RegisterReplaces(t *testing.T) {
	a := NewAggregator()
	a.Register(command.GetVersion, command.VendorArista, func(raw string) (interface{}, error) {
		return map[string]string{"custom": raw}, nil
	})

	payload := a.Normalize(command.GetVersion, command.VendorArista, "x")
	m, ok := payload.(map[string]string)
	if !ok || m["custom"] != "x" {
		t.Errorf("payload = %v, want custom parser output", payload)
	}
}

func TestAggregator_RegisteredParserError(t *testing.T) {
	a := NewAggregator()
	a.Register(command.GetRoutes, command.VendorCisco, func(raw string) (interface{}, error) {
		return nil, errors.New("bad output")
	})

	payload := a.Normalize(command.GetRoutes, command.VendorCisco, "raw text")
	if payload != "raw text" {
		t.Errorf("payload = %v, want raw fallback", payload)
	}
}

func TestSummarize_Classification(t *testing.T) {
	resp := &Response{
		Results: []*DeviceResult{
			success("a", "ok", 0),
			{Device: "b", Error: &ResultError{Kind: KindConnectionFailure}},
			{Device: "c", Error: &ResultError{Kind: KindExecutionTimeout}},
			{Device: "d", Error: &ResultError{Kind: KindUnsupportedOperation}},
			{Device: "e", Error: &ResultError{Kind: KindRemoteExecution}},
		},
	}

	want := Summary{Total: 5, Succeeded: 1, Failed: 4, Healthy: 1, Unhealthy: 2, Unreachable: 2}
	if got := Summarize(resp); got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}
