package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/netfleet/netfleet/pkg/command"
	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// DefaultTimeout bounds a single device's unit of work when the caller
// specifies none.
const DefaultTimeout = 30 * time.Second

// Options tune a single fleet invocation.
type Options struct {
	// Timeout bounds each device's unit of work (connection establishment
	// plus command round-trip). Zero means DefaultTimeout.
	Timeout time.Duration
	// Params carries operation-specific parameters, e.g. an interface name.
	Params command.Params
}

// Dispatcher fans a canonical operation out across target devices: per
// target it resolves the descriptor, translates the operation for the
// device's vendor, acquires a pooled session, and executes. All targets run
// concurrently, each isolated from the others' failures.
type Dispatcher struct {
	registry   *Registry
	pool       *Pool
	aggregator *Aggregator

	// Limit caps simultaneously in-flight device operations. Zero means
	// unbounded fan-out (all devices at once, total time ≈ slowest device).
	// When set, excess targets are admitted in FIFO target order.
	Limit int
}

// NewDispatcher creates a dispatcher. A nil aggregator gets the default
// parser set.
func NewDispatcher(registry *Registry, pool *Pool, aggregator *Aggregator) *Dispatcher {
	if aggregator == nil {
		aggregator = NewAggregator()
	}
	return &Dispatcher{
		registry:   registry,
		pool:       pool,
		aggregator: aggregator,
	}
}

// Run executes one canonical operation against the target devices and
// returns the aggregated response in target order.
//
// An empty target list resolves to every registered device. Duplicate
// targets are de-duplicated, first occurrence wins. Per-device failures are
// captured as Failure results and never abort the fleet call; Run returns a
// non-nil error only when ctx is canceled (the response is then discarded).
// Per-device timeouts are not fleet cancellation.
func (d *Dispatcher) Run(ctx context.Context, op command.Operation, targets []string, opts Options) (*Response, error) {
	start := time.Now()

	if len(targets) == 0 {
		targets = d.registry.Names()
	}
	targets = dedupe(targets)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	util.WithOperation(string(op)).Debugf("dispatching to %d devices (timeout %s)", len(targets), timeout)

	results, err := d.fanOut(ctx, targets, func(ctx context.Context, name string) *DeviceResult {
		return d.runDevice(ctx, op, name, timeout, opts.Params)
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Operation: string(op),
		Results:   results,
		Elapsed:   time.Since(start),
	}
	resp.Summary = Summarize(resp)
	return resp, nil
}

// fanOut runs one unit of work per target concurrently and collects results
// in target order. When Limit is set, admission is FIFO in target order.
// A canceled ctx aborts the whole call: pending units are released promptly
// and partial results are discarded.
func (d *Dispatcher) fanOut(ctx context.Context, targets []string, unit func(ctx context.Context, name string) *DeviceResult) ([]*DeviceResult, error) {
	results := make([]*DeviceResult, len(targets))

	var sem chan struct{}
	if d.Limit > 0 {
		sem = make(chan struct{}, d.Limit)
	}

	var wg sync.WaitGroup
admission:
	for i, name := range targets {
		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				break admission
			}
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			results[i] = unit(ctx, name)
		}(i, name)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// runDevice is one isolated unit of work. Every failure becomes a typed
// Failure result; nothing escapes to affect sibling devices.
func (d *Dispatcher) runDevice(ctx context.Context, op command.Operation, name string, timeout time.Duration, params command.Params) *DeviceResult {
	start := time.Now()
	log := util.WithDevice(name).WithField("operation", string(op))

	dev, err := d.registry.Get(name)
	if err != nil {
		log.Warnf("lookup failed: %v", err)
		return failure(name, err, time.Since(start))
	}

	cmd, err := translateFor(dev, op, params)
	if err != nil {
		log.Warnf("translation failed: %v", err)
		return failure(name, err, time.Since(start))
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.pool.Acquire(dctx, dev)
	if err != nil {
		err = d.classifyTimeout(ctx, dctx, name, timeout, err)
		log.Warnf("acquire failed: %v", err)
		return failure(name, err, time.Since(start))
	}

	raw, err := conn.Execute(dctx, cmd)
	if err != nil {
		err = d.classifyTimeout(ctx, dctx, name, timeout, err)
		// A session abandoned mid-command is in an unknown state; only a
		// clean remote rejection leaves it reusable.
		if !errors.Is(err, util.ErrRemoteExecution) {
			d.pool.Invalidate(name)
		}
		log.Warnf("execute failed: %v", err)
		return failure(name, err, time.Since(start))
	}

	payload := d.aggregator.Normalize(op, dev.Vendor, raw)
	log.Debugf("completed in %s", time.Since(start))
	return success(name, payload, time.Since(start))
}

// translateFor picks the command form for a device: SNMP-managed devices get
// the vendor-neutral OID list, everything else the vendor CLI/selector table.
func translateFor(dev *inventory.Device, op command.Operation, params command.Params) (string, error) {
	if dev.Transport == inventory.TransportSNMP {
		return command.TranslateSNMP(op, dev.Vendor)
	}
	return command.Translate(op, dev.Vendor, params)
}

// classifyTimeout rewrites an error as an execution timeout when the
// per-device deadline expired (and the fleet-level ctx did not cause it).
func (d *Dispatcher) classifyTimeout(ctx, dctx context.Context, name string, timeout time.Duration, err error) error {
	if errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("device '%s' exceeded %s: %w", name, timeout, util.ErrExecutionTimeout)
	}
	return err
}

// dedupe removes repeated target names, keeping first occurrences in order.
func dedupe(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	out := targets[:0:0]
	for _, name := range targets {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
