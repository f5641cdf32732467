package fleet

import (
	"context"
	"sync"

	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/transport"
	"github.com/netfleet/netfleet/pkg/util"
)

// DialFunc establishes a session to one device. The default is
// transport.Dial; tests inject fakes.
type DialFunc func(ctx context.Context, dev *inventory.Device) (transport.Conn, error)

// poolEntry tracks one device's connection slot. ready is closed when the
// establishment attempt (successful or not) finishes; waiters block on it
// instead of opening a duplicate session.
type poolEntry struct {
	ready chan struct{}
	conn  transport.Conn
	err   error
}

// Pool lazily creates and caches one live session per device.
//
// Acquire is idempotent and safe under concurrent calls: different device
// names dial fully in parallel, while at most one establishment attempt per
// device name is in flight at a time. Failed attempts are never cached.
type Pool struct {
	dial DialFunc

	mu      sync.Mutex
	entries map[string]*poolEntry
}

// NewPool creates a pool. A nil dial uses the transport package.
func NewPool(dial DialFunc) *Pool {
	if dial == nil {
		dial = transport.Dial
	}
	return &Pool{
		dial:    dial,
		entries: make(map[string]*poolEntry),
	}
}

// Acquire returns the device's live session, dialing on first use. A second
// concurrent caller for the same device waits for the in-flight attempt and
// shares its outcome. On establishment failure nothing is cached and the
// error surfaces to every waiter; the next Acquire re-dials.
func (p *Pool) Acquire(ctx context.Context, dev *inventory.Device) (transport.Conn, error) {
	p.mu.Lock()
	if e, ok := p.entries[dev.Name]; ok {
		p.mu.Unlock()
		select {
		case <-e.ready:
			if e.err != nil {
				return nil, e.err
			}
			return e.conn, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &poolEntry{ready: make(chan struct{})}
	p.entries[dev.Name] = e
	p.mu.Unlock()

	conn, err := p.dial(ctx, dev)
	if err != nil {
		// Purge before waking waiters so the failed slot is never reused.
		p.mu.Lock()
		delete(p.entries, dev.Name)
		p.mu.Unlock()
		e.err = util.NewConnectionError(dev.Name, err)
		close(e.ready)
		return nil, e.err
	}

	e.conn = conn
	close(e.ready)
	util.WithDevice(dev.Name).Debug("session established")
	return conn, nil
}

// Invalidate drops a device's cached session so the next Acquire
// re-establishes instead of reusing a known-bad one. An establishment
// attempt still in flight is left alone; its own failure path purges it.
func (p *Pool) Invalidate(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[name]
	if !ok {
		return
	}
	select {
	case <-e.ready:
	default:
		return // dial in flight
	}
	delete(p.entries, name)
	if e.conn != nil {
		e.conn.Close()
		util.WithDevice(name).Debug("session invalidated")
	}
}

// Close closes every cached session. In-flight dials are not waited for.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, e := range p.entries {
		select {
		case <-e.ready:
			if e.conn != nil {
				e.conn.Close()
			}
		default:
		}
		delete(p.entries, name)
	}
}
