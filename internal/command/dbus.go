package command

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// BusName is the well-known name claimed on the session bus.
	BusName = "io.github.jmylchreest.Cheevo"
	// BusInterface is the command interface name.
	BusInterface = "io.github.jmylchreest.Cheevo"
	// BusPath is the exported object path.
	BusPath = "/io/github/jmylchreest/Cheevo"
)

// BusService exposes the command protocol on the D-Bus session bus.
type BusService struct {
	conn    *dbus.Conn
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewBusService creates a service that feeds handler.
func NewBusService(handler Handler, logger *slog.Logger) *BusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusService{handler: handler, logger: logger}
}

// Start connects to the session bus, exports the object and claims BusName.
func (s *BusService) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return s.StartOn(conn)
}

// StartOn exports the service on an existing connection.
func (s *BusService) StartOn(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("service already running")
	}

	if err := conn.Export(s, BusPath, BusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: BusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: BusInterface, Methods: busMethods()},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), BusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus command service started", "name", BusName, "path", BusPath)
	return nil
}

// Stop releases the bus name. The shared session connection stays open.
func (s *BusService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(BusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, BusPath, BusInterface)
	s.logger.Info("D-Bus command service stopped")
	return nil
}

func (s *BusService) dispatch(c Command) {
	s.logger.Debug("D-Bus command", "command", c.String())
	if s.handler != nil {
		s.handler(c)
	}
}

// Command accepts one protocol line.
// D-Bus method: Command(s)
func (s *BusService) Command(line string) *dbus.Error {
	c, err := ParseStrict(line)
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	s.dispatch(c)
	return nil
}

// D-Bus methods: Toggle(), Up(), Down(), Select(), Back()
func (s *BusService) Toggle() *dbus.Error { s.dispatch(Command{Kind: Toggle}); return nil }
func (s *BusService) Up() *dbus.Error     { s.dispatch(Command{Kind: Up}); return nil }
func (s *BusService) Down() *dbus.Error   { s.dispatch(Command{Kind: Down}); return nil }
func (s *BusService) Select() *dbus.Error { s.dispatch(Command{Kind: Select}); return nil }
func (s *BusService) Back() *dbus.Error   { s.dispatch(Command{Kind: Back}); return nil }

// Popup queues a toast.
// D-Bus method: Popup(ss)
func (s *BusService) Popup(title, description string) *dbus.Error {
	s.dispatch(NewPopup(title, description))
	return nil
}

func busMethods() []introspect.Method {
	noArgs := func(name string) introspect.Method { return introspect.Method{Name: name} }
	return []introspect.Method{
		{
			Name: "Command",
			Args: []introspect.Arg{{Name: "line", Type: "s", Direction: "in"}},
		},
		noArgs("Toggle"),
		noArgs("Up"),
		noArgs("Down"),
		noArgs("Select"),
		noArgs("Back"),
		{
			Name: "Popup",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "description", Type: "s", Direction: "in"},
			},
		},
	}
}

// BusSend delivers commands to a running overlay over the session bus.
func BusSend(cmds ...Command) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return BusSendOn(conn, cmds...)
}

// BusSendOn is BusSend on an existing connection.
func BusSendOn(conn *dbus.Conn, cmds ...Command) error {
	var owned bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, BusName).Store(&owned); err != nil {
		return fmt.Errorf("failed to query bus name: %w", err)
	}
	if !owned {
		return fmt.Errorf("%w: %s not on the session bus", ErrNotRunning, BusName)
	}

	obj := conn.Object(BusName, BusPath)
	for _, c := range cmds {
		if err := obj.Call(BusInterface+".Command", 0, c.String()).Err; err != nil {
			return fmt.Errorf("failed to send %s: %w", c.Kind, err)
		}
	}
	return nil
}
