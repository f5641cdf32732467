package fleet

import (
	"sync"

	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/util"
)

// ParserFunc turns one vendor's raw output for one operation into a
// vendor-neutral structured payload.
type ParserFunc func(raw string) (interface{}, error)

type parserKey struct {
	op     command.Operation
	vendor command.Vendor
}

// Aggregator normalizes per-vendor raw output into structured records.
// Parsers are pluggable and keyed by (operation, vendor); when none is
// registered, or a registered one fails, the raw text passes through
// unchanged. Normalization is an enhancement, never a requirement for a
// result to count as a success.
type Aggregator struct {
	mu      sync.RWMutex
	parsers map[parserKey]ParserFunc
}

// NewAggregator creates an aggregator with the default parser set.
func NewAggregator() *Aggregator {
	a := &Aggregator{parsers: make(map[parserKey]ParserFunc)}
	registerDefaultParsers(a)
	return a
}

// Register installs a parser for an (operation, vendor) pair, replacing any
// existing one.
func (a *Aggregator) Register(op command.Operation, vendor command.Vendor, fn ParserFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parsers[parserKey{op, vendor}] = fn
}

// Normalize converts raw output to a structured payload, or returns the raw
// string when no parser applies.
func (a *Aggregator) Normalize(op command.Operation, vendor command.Vendor, raw string) interface{} {
	a.mu.RLock()
	fn, ok := a.parsers[parserKey{op, vendor}]
	a.mu.RUnlock()
	if !ok {
		return raw
	}
	payload, err := fn(raw)
	if err != nil {
		util.WithOperation(string(op)).Debugf("parser for vendor %s failed, passing raw output through: %v", vendor, err)
		return raw
	}
	return payload
}

// Summarize derives the response counters purely from the result tags.
// Unreachable covers connection failures and timeouts; every other failure
// kind counts as unhealthy.
func Summarize(resp *Response) Summary {
	s := Summary{Total: len(resp.Results)}
	for _, r := range resp.Results {
		if r.OK() {
			s.Succeeded++
			s.Healthy++
			continue
		}
		s.Failed++
		switch r.Error.Kind {
		case KindConnectionFailure, KindExecutionTimeout:
			s.Unreachable++
		default:
			s.Unhealthy++
		}
	}
	return s
}
