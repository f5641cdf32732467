package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ziutek/telnet"

	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// telnetPrompts are the characters that terminate a CLI prompt on the
// vendors we talk to over telnet.
var telnetPrompts = []string{"#", ">"}

const telnetLoginTimeout = 15 * time.Second

// telnetConn drives a legacy device over a single interactive telnet
// session. Commands are serialized on the session; output is read until the
// next prompt.
type telnetConn struct {
	device string
	conn   *telnet.Conn
}

func dialTelnet(ctx context.Context, dev *inventory.Device) (Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", dev.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", dev.Addr(), err)
	}
	conn, err := telnet.NewConn(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("telnet setup %s: %w", dev.Addr(), err)
	}
	conn.SetUnixWriteMode(true)

	t := &telnetConn{device: dev.Name, conn: conn}
	if err := t.login(ctx, dev.Username, dev.Password); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

// login walks the username/password prompt sequence and waits for the first
// CLI prompt.
func (t *telnetConn) login(ctx context.Context, user, pass string) error {
	t.applyDeadline(ctx, telnetLoginTimeout)

	if user != "" {
		if _, err := t.conn.ReadUntil("login: ", "Username: ", "username: "); err != nil {
			return fmt.Errorf("telnet login prompt on %s: %w", t.device, err)
		}
		if err := t.sendLine(user); err != nil {
			return err
		}
	}
	if pass != "" {
		if _, err := t.conn.ReadUntil("assword"); err != nil {
			return fmt.Errorf("telnet password prompt on %s: %w", t.device, err)
		}
		// Skip the rest of the prompt line (": ").
		if _, err := t.conn.ReadUntil(": "); err != nil {
			return fmt.Errorf("telnet password prompt on %s: %w", t.device, err)
		}
		if err := t.sendLine(pass); err != nil {
			return err
		}
	}
	if _, err := t.conn.ReadUntil(telnetPrompts...); err != nil {
		return fmt.Errorf("telnet prompt on %s: %w", t.device, err)
	}
	return nil
}

func (t *telnetConn) Execute(ctx context.Context, command string) (string, error) {
	t.applyDeadline(ctx, 0)

	if err := t.sendLine(command); err != nil {
		return "", err
	}
	raw, err := t.conn.ReadUntil(telnetPrompts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", util.NewCommandError(t.device, command, "", err)
	}
	return stripEcho(string(raw), command), nil
}

func (t *telnetConn) Close() error {
	return t.conn.Close()
}

// applyDeadline sets the connection deadline from ctx, falling back to the
// given default when ctx carries none (zero fallback clears the deadline).
func (t *telnetConn) applyDeadline(ctx context.Context, fallback time.Duration) {
	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetDeadline(dl)
		return
	}
	if fallback > 0 {
		t.conn.SetDeadline(time.Now().Add(fallback))
		return
	}
	t.conn.SetDeadline(time.Time{})
}

func (t *telnetConn) sendLine(s string) error {
	if _, err := t.conn.Write([]byte(s + "\n")); err != nil {
		return fmt.Errorf("telnet write on %s: %w", t.device, err)
	}
	return nil
}

// stripEcho removes the echoed command line and the trailing prompt from
// telnet output.
func stripEcho(raw, command string) string {
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && strings.Contains(lines[0], command) {
		lines = lines[1:]
	}
	// Last line is the next prompt.
	if len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		for _, p := range telnetPrompts {
			if strings.HasSuffix(last, p) {
				lines = lines[:len(lines)-1]
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
