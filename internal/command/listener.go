package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Handler receives decoded commands. It may be called from several
// goroutines at once.
type Handler func(Command)

// Listener accepts newline-delimited commands on a unix socket.
type Listener struct {
	path    string
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	done     chan struct{}
	running  bool
}

// NewListener creates a listener for the socket at path.
func NewListener(path string, handler Handler, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		path:    path,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Path returns the socket path.
func (l *Listener) Path() string { return l.path }

// Start removes a stale socket file, binds and begins accepting
// connections. The listener stops when ctx is cancelled or Stop is called.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", l.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.path, err)
	}

	l.listener = ln
	l.done = make(chan struct{})
	l.running = true

	l.wg.Add(1)
	go l.acceptLoop()

	go func() {
		select {
		case <-ctx.Done():
			l.Stop()
		case <-l.done:
		}
	}()

	l.logger.Info("command socket listening", "path", l.path)
	return nil
}

// Stop closes the socket and any open connections, waits for handlers to
// return and removes the socket file.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.done)
	_ = l.listener.Close()
	for c := range l.conns {
		_ = c.Close()
	}
	l.mu.Unlock()

	l.wg.Wait()
	_ = os.Remove(l.path)
	l.logger.Debug("command socket stopped", "path", l.path)
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.done:
				return
			default:
			}
			l.logger.Warn("socket accept error", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		l.mu.Lock()
		if !l.running {
			l.mu.Unlock()
			_ = conn.Close()
			return
		}
		l.conns[conn] = struct{}{}
		l.wg.Add(1)
		l.mu.Unlock()

		go l.handleConn(conn)
	}
}

// handleConn reads commands until the client closes the connection.
func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer func() {
		l.mu.Lock()
		delete(l.conns, conn)
		l.mu.Unlock()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, ok := Parse(line)
		if !ok {
			l.logger.Debug("ignoring unknown command", "line", line)
			continue
		}
		l.logger.Debug("socket command", "command", cmd.String())
		if l.handler != nil {
			l.handler(cmd)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		l.logger.Warn("socket read error", "error", err)
	}
}

// Send writes commands to the overlay socket at path, one per line.
func Send(ctx context.Context, path string, cmds ...Command) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("%w: %s", ErrNotRunning, path)
		}
		return fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	w := bufio.NewWriter(conn)
	for _, c := range cmds {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return fmt.Errorf("failed to write command: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}
