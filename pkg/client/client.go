// Package client talks to a hexapod TCP server.
package client

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds how long Send waits for a maneuver to finish.
const DefaultTimeout = 300 * time.Second

// Client is one session with the hexapod server. It is not safe for
// concurrent use.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	Timeout time.Duration
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", addr)
	}
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		Timeout: DefaultTimeout,
	}, nil
}

// Send sends one command line and waits for its response. Maneuvers block
// the server for their whole duration, so the wait can be long.
func (c *Client) Send(line string) (string, error) {
	line = strings.TrimSpace(line)
	if strings.ContainsAny(line, "\r\n") {
		return "", errors.Errorf("command %q spans lines", line)
	}

	deadline := time.Now().Add(c.Timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", errors.Wrap(err, "set deadline")
	}
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", errors.Wrap(err, "send command")
	}
	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}
	return strings.TrimRight(resp, "\r\n"), nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.conn.Close()
}
