package fleet

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/netfleet/netfleet/pkg/util"
)

// PingTimeout bounds one reachability probe when the caller specifies none.
const PingTimeout = 5 * time.Second

// PingStatus is the payload of a successful reachability probe.
type PingStatus struct {
	Address string `json:"address"`
	RTT     string `json:"rtt"`
}

// Ping probes TCP reachability of the targets' management addresses
// concurrently, using the same fan-out, ordering, and isolation rules as
// Run. It does not touch the connection pool: a probe is a throwaway dial,
// not a session.
func (d *Dispatcher) Ping(ctx context.Context, targets []string, timeout time.Duration) (*Response, error) {
	start := time.Now()

	if len(targets) == 0 {
		targets = d.registry.Names()
	}
	targets = dedupe(targets)
	if timeout <= 0 {
		timeout = PingTimeout
	}

	results, err := d.fanOut(ctx, targets, func(ctx context.Context, name string) *DeviceResult {
		return d.pingDevice(ctx, name, timeout)
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Operation: "Ping",
		Results:   results,
		Elapsed:   time.Since(start),
	}
	resp.Summary = Summarize(resp)
	return resp, nil
}

func (d *Dispatcher) pingDevice(ctx context.Context, name string, timeout time.Duration) *DeviceResult {
	start := time.Now()

	dev, err := d.registry.Get(name)
	if err != nil {
		return failure(name, err, time.Since(start))
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dctx, "tcp", dev.Addr())
	if err != nil {
		if dctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = fmt.Errorf("no answer from %s within %s: %w", dev.Addr(), timeout, util.ErrExecutionTimeout)
		} else {
			err = util.NewConnectionError(name, err)
		}
		return failure(name, err, time.Since(start))
	}
	conn.Close()

	rtt := time.Since(start)
	return success(name, PingStatus{Address: dev.Addr(), RTT: rtt.String()}, rtt)
}
