package fleet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/netfleet/netfleet/internal/testutil"
	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

func testDevice(name string) *inventory.Device {
	return &inventory.Device{
		Name:      name,
		Address:   "10.0.0.1",
		Transport: inventory.TransportSSH,
		Username:  "admin",
	}
}

func TestPool_ConcurrentAcquireDialsOnce(t *testing.T) {
	fabric := testutil.NewFabric()
	fabric.Script("leaf1", testutil.DeviceScript{DialLatency: 50 * time.Millisecond})
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	dev := testDevice("leaf1")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Acquire(context.Background(), dev); err != nil {
				t.Errorf("Acquire failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fabric.Dials("leaf1"); got != 1 {
		t.Errorf("10 concurrent Acquires dialed %d times, want 1", got)
	}
}

func TestPool_DifferentDevicesDialInParallel(t *testing.T) {
	fabric := testutil.NewFabric()
	fabric.Script("leaf1", testutil.DeviceScript{DialLatency: 100 * time.Millisecond})
	fabric.Script("leaf2", testutil.DeviceScript{DialLatency: 100 * time.Millisecond})
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	start := time.Now()
	var wg sync.WaitGroup
	for _, name := range []string{"leaf1", "leaf2"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := pool.Acquire(context.Background(), testDevice(name)); err != nil {
				t.Errorf("Acquire %s failed: %v", name, err)
			}
		}(name)
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed > 180*time.Millisecond {
		t.Errorf("two parallel dials took %s, want roughly one dial latency", elapsed)
	}
}

func TestPool_FailedDialNotCached(t *testing.T) {
	fabric := testutil.NewFabric()
	fabric.Script("leaf1", testutil.DeviceScript{DialErr: errors.New("connection refused")})
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	dev := testDevice("leaf1")
	if _, err := pool.Acquire(context.Background(), dev); !errors.Is(err, util.ErrConnectionFailure) {
		t.Fatalf("Acquire err = %v, want connection failure", err)
	}

	// Device recovers; the next Acquire must re-dial rather than replay
	// the cached failure.
	fabric.Script("leaf1", testutil.DeviceScript{})
	if _, err := pool.Acquire(context.Background(), dev); err != nil {
		t.Fatalf("Acquire after recovery failed: %v", err)
	}
	if got := fabric.Dials("leaf1"); got != 2 {
		t.Errorf("dialed %d times, want 2", got)
	}
}

func TestPool_FailureSharedWithWaiters(t *testing.T) {
	fabric := testutil.NewFabric()
	fabric.Script("leaf1", testutil.DeviceScript{
		DialLatency: 50 * time.Millisecond,
		DialErr:     errors.New("connection refused"),
	})
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	dev := testDevice("leaf1")
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Acquire(context.Background(), dev); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if failures != 5 {
		t.Errorf("%d of 5 waiters saw the failure, want all", failures)
	}
	if got := fabric.Dials("leaf1"); got != 1 {
		t.Errorf("dialed %d times during one attempt window, want 1", got)
	}
}

func TestPool_InvalidateForcesRedial(t *testing.T) {
	fabric := testutil.NewFabric()
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	dev := testDevice("leaf1")
	if _, err := pool.Acquire(context.Background(), dev); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	pool.Invalidate("leaf1")
	if got := fabric.OpenConns(); got != 0 {
		t.Errorf("%d connections still open after Invalidate, want 0", got)
	}

	if _, err := pool.Acquire(context.Background(), dev); err != nil {
		t.Fatalf("Acquire after Invalidate failed: %v", err)
	}
	if got := fabric.Dials("leaf1"); got != 2 {
		t.Errorf("dialed %d times, want 2", got)
	}
}

func TestPool_WaiterReleasedOnCancel(t *testing.T) {
	fabric := testutil.NewFabric()
	fabric.Script("leaf1", testutil.DeviceScript{DialLatency: 2 * time.Second})
	pool := NewPool(fabric.Dial)
	defer pool.Close()

	dev := testDevice("leaf1")
	go pool.Acquire(context.Background(), dev) // holds the dial slot

	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := pool.Acquire(ctx, dev)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("waiter err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("waiter blocked %s past its context, want prompt release", elapsed)
	}
}

func TestPool_CloseClosesSessions(t *testing.T) {
	fabric := testutil.NewFabric()
	pool := NewPool(fabric.Dial)

	for _, name := range []string{"leaf1", "leaf2"} {
		if _, err := pool.Acquire(context.Background(), testDevice(name)); err != nil {
			t.Fatalf("Acquire %s failed: %v", name, err)
		}
	}

	pool.Close()
	if got := fabric.OpenConns(); got != 0 {
		t.Errorf("%d connections open after Close, want 0", got)
	}
}
