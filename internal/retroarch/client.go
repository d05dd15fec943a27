// Package retroarch talks to RetroArch's UDP network command interface.
package retroarch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds Status when the context has no deadline.
const DefaultTimeout = time.Second

// ErrNoReply is returned when RetroArch does not answer a query.
var ErrNoReply = errors.New("no reply from RetroArch")

// Client sends network commands to one RetroArch instance.
type Client struct {
	addr   string
	logger *slog.Logger
}

// NewClient creates a client for host:port.
func NewClient(addr string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{addr: addr, logger: logger}
}

// Addr returns the target address.
func (c *Client) Addr() string { return c.addr }

// Send fires a command without waiting for a reply. Failures are logged
// and reported as false.
func (c *Client) Send(cmd string) bool {
	if err := c.send(cmd); err != nil {
		c.logger.Warn("failed to send RetroArch command", "command", cmd, "addr", c.addr, "error", err)
		return false
	}
	c.logger.Debug("sent RetroArch command", "command", cmd, "addr", c.addr)
	return true
}

func (c *Client) send(cmd string) error {
	conn, err := net.Dial("udp", c.addr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	_, err = conn.Write([]byte(cmd))
	return err
}

// Status is the parsed reply to GET_STATUS.
type Status struct {
	State string
	Core  string
	Game  string
	CRC32 string
}

// Playing reports whether content is running, paused or not.
func (s Status) Playing() bool {
	return s.State == "PLAYING" || s.State == "PAUSED"
}

// Status queries the running core and game.
func (c *Client) Status(ctx context.Context) (Status, error) {
	reply, err := c.query(ctx, "GET_STATUS")
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(reply)
}

// query sends cmd and waits for one datagram in reply.
func (c *Client) query(ctx context.Context, cmd string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.addr)
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", c.addr, err)
	}
	defer func() { _ = conn.Close() }()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set deadline: %w", err)
	}
	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("failed to send %s: %w", cmd, err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", ErrNoReply
		}
		// A closed port answers with ICMP unreachable, surfaced as a read error.
		return "", fmt.Errorf("%w: %v", ErrNoReply, err)
	}
	return string(buf[:n]), nil
}

// ParseStatus parses "GET_STATUS <STATE> <core>,<game>,crc32=<hex>".
// The game name may itself contain commas.
func ParseStatus(reply string) (Status, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(reply), "GET_STATUS ")
	if !ok {
		return Status{}, fmt.Errorf("unexpected status reply %q", reply)
	}
	state, info, _ := strings.Cut(rest, " ")
	s := Status{State: state}
	if info == "" {
		return s, nil
	}

	parts := strings.Split(info, ",")
	s.Core = parts[0]
	parts = parts[1:]
	if n := len(parts); n > 0 {
		if crc, ok := strings.CutPrefix(parts[n-1], "crc32="); ok {
			s.CRC32 = crc
			parts = parts[:n-1]
		}
	}
	s.Game = strings.Join(parts, ",")
	return s, nil
}
