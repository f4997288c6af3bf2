package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

// NotificationLevel maps to the freedesktop urgency hint.
type NotificationLevel int

const (
	NotificationLevelInfo NotificationLevel = iota
	NotificationLevelWarning
	NotificationLevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case NotificationLevelInfo:
		return "info"
	case NotificationLevelWarning:
		return "warning"
	case NotificationLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one desktop notification.
type Notification struct {
	Summary       string
	Body          string
	Icon          string
	Level         NotificationLevel
	ExpireTimeout time.Duration
}

// Sender delivers notifications to the desktop.
type Sender interface {
	Send(n Notification) error
}

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod      = notificationsDest + ".Notify"
)

// DBusSender sends through the session bus notification server.
type DBusSender struct {
	conn    *dbus.Conn
	appName string
}

// NewDBusSender connects to the session bus.
func NewDBusSender(appName string) (*DBusSender, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DBusSender{conn: conn, appName: appName}, nil
}

func (s *DBusSender) Send(n Notification) error {
	urgency := byte(1)
	switch n.Level {
	case NotificationLevelInfo:
		urgency = 0
	case NotificationLevelError:
		urgency = 2
	}

	hints := map[string]dbus.Variant{
		"urgency":   dbus.MakeVariant(urgency),
		"category":  dbus.MakeVariant("device"),
		"transient": dbus.MakeVariant(true),
	}

	obj := s.conn.Object(notificationsDest, notificationsPath)
	call := obj.Call(notifyMethod, 0,
		s.appName,
		uint32(0),
		n.Icon,
		n.Summary,
		n.Body,
		[]string{},
		hints,
		int32(n.ExpireTimeout/time.Millisecond),
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}

func (s *DBusSender) Close() error {
	return s.conn.Close()
}

// Notifier sends notifications about the bar's own events. The same key is
// not sent again within the minimum interval.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	sender Sender

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	enabled        bool

	now func() time.Time
}

// NewNotifier creates a notifier. A nil sender only logs.
func NewNotifier(logger *slog.Logger, sender Sender) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		sender:         sender,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
		now:            time.Now,
	}
}

func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends unless disabled or rate-limited, and reports whether it
// tried.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return false
	}
	if n.sender == nil {
		n.logger.Debug("notification skipped: no sender", "summary", summary)
		return false
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return false
	}
	n.lastNotifyTime[key] = now

	icon := "dialog-information"
	switch level {
	case NotificationLevelWarning:
		icon = "dialog-warning"
	case NotificationLevelError:
		icon = "dialog-error"
	}

	n.logger.Debug("sending notification", "key", key, "summary", summary, "level", level)
	err := n.sender.Send(Notification{
		Summary:       summary,
		Body:          body,
		Icon:          icon,
		Level:         level,
		ExpireTimeout: 5 * time.Second,
	})
	if err != nil {
		n.logger.Warn("failed to send notification", "key", key, "error", err)
	}
	return true
}

func (n *Notifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded", "wlrs-bar configuration has been reloaded.", NotificationLevelInfo)
}

func (n *Notifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error", "Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyBatteryCritical warns that the battery reached the critical level.
func (n *Notifier) NotifyBatteryCritical(charge float64) {
	n.Notify("battery-critical", "Battery Critical",
		fmt.Sprintf("Battery at %.0f%%. Plug in a charger.", charge*100), NotificationLevelError)
}
