package transport

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/crypto/ssh"

	"github.com/netfleet/netfleet/pkg/inventory"
	"github.com/netfleet/netfleet/pkg/util"
)

// sshConn drives a device over SSH. Each Execute opens a fresh session on
// the shared client connection, so a failed command does not poison the
// session state of the next one.
type sshConn struct {
	device string
	client *ssh.Client
}

func dialSSH(ctx context.Context, dev *inventory.Device) (Conn, error) {
	config := &ssh.ClientConfig{
		User: dev.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(dev.Password),
			ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = dev.Password
				}
				return answers, nil
			}),
		},
		// Fleet devices are provisioned out of band; host key pinning is
		// handled at the jump-host layer.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", dev.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", dev.Addr(), err)
	}
	c, chans, reqs, err := ssh.NewClientConn(nc, dev.Addr(), config)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", dev.Addr(), err)
	}

	return &sshConn{device: dev.Name, client: ssh.NewClient(c, chans, reqs)}, nil
}

func (c *sshConn) Execute(ctx context.Context, command string) (string, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session on %s: %w", c.device, err)
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := session.CombinedOutput(command)
		done <- result{output, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return string(r.output), util.NewCommandError(c.device, command, string(r.output), r.err)
		}
		return string(r.output), nil
	case <-ctx.Done():
		// Unblocks the CombinedOutput goroutine.
		session.Close()
		return "", ctx.Err()
	}
}

func (c *sshConn) Close() error {
	return c.client.Close()
}
