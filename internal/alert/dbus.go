package alert

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod    = "org.freedesktop.Notifications.Notify"
	urgencyCritical = byte(2)
)

// DBusNotifier talks to the session notification daemon directly.
type DBusNotifier struct {
	appName   string
	replaceID uint32
	expire    int32

	mu   sync.Mutex
	conn *dbus.Conn
	// connect is replaceable for tests.
	connect func() (*dbus.Conn, error)
}

// NewDBusNotifier returns a notifier that connects to the session bus on first use.
func NewDBusNotifier(appName string, replaceID uint32, expireMillis int32) *DBusNotifier {
	return &DBusNotifier{
		appName:   appName,
		replaceID: replaceID,
		expire:    expireMillis,
		connect:   func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
	}
}

// Notify sends a critical-urgency notification that replaces the previous one.
func (d *DBusNotifier) Notify(ctx context.Context, n Notification) error {
	conn, err := d.session()
	if err != nil {
		return err
	}
	obj := conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		d.appName,
		d.replaceID,
		"",
		n.Summary,
		n.Body,
		[]string{},
		notifyHints(n),
		d.expire,
	)
	if call.Err != nil {
		d.reset()
		return fmt.Errorf("dbus notify: %w", call.Err)
	}
	return nil
}

// Close releases the session bus connection.
func (d *DBusNotifier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

func (d *DBusNotifier) session() (*dbus.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil && d.conn.Connected() {
		return d.conn, nil
	}
	conn, err := d.connect()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	d.conn = conn
	return conn, nil
}

func (d *DBusNotifier) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil && !d.conn.Connected() {
		d.conn = nil
	}
}

func notifyHints(n Notification) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyCritical),
	}
	if n.Progress >= 0 {
		hints["value"] = dbus.MakeVariant(int32(n.Progress))
	}
	return hints
}
