// Package logging sets up the bar's structured logger and the per-widget
// log scopes that gate verbose output.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	// LevelTrace sits below slog.LevelDebug for per-frame chatter.
	LevelTrace = slog.Level(-8)

	// LevelOff silences everything.
	LevelOff = slog.Level(64)
)

// EnvVars are consulted in order by LevelFromEnv.
var EnvVars = []string{"BAR_WLRS_LOG", "RUST_LOG"}

// ParseLevel parses a level name. It also accepts env_logger style
// directive lists such as "wlrs_bar=trace,other=warn", in which case the
// first directive wins.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, fmt.Errorf("empty log level")
	}

	directive, _, _ := strings.Cut(s, ",")
	if _, lvl, ok := strings.Cut(directive, "="); ok {
		directive = lvl
	}

	switch strings.ToLower(strings.TrimSpace(directive)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", directive)
	}
}

// LevelFromEnv returns the level named by the first set variable in
// EnvVars. ok is false when none is set or the value does not parse.
func LevelFromEnv(getenv func(string) string) (level slog.Level, ok bool) {
	for _, name := range EnvVars {
		v := getenv(name)
		if v == "" {
			continue
		}
		lvl, err := ParseLevel(v)
		if err != nil {
			return slog.LevelInfo, false
		}
		return lvl, true
	}
	return slog.LevelInfo, false
}

// New builds the text logger used across the bar.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}))
}

// Scope is a named logger for one widget. Debug and Trace output is only
// emitted while the scope is enabled; Info and above always go through.
type Scope struct {
	logger  *slog.Logger
	name    string
	enabled bool
}

// NewScope creates a scope tagged with widget=name.
func NewScope(logger *slog.Logger, name string, enabled bool) Scope {
	if logger == nil {
		logger = slog.Default()
	}
	return Scope{logger: logger.With("widget", name), name: name, enabled: enabled}
}

// Child returns a scope whose name is extended by suffix.
func (s Scope) Child(suffix string) Scope {
	base := s.logger
	if base == nil {
		base = slog.Default()
	}
	name := strings.TrimSpace(s.name + " " + suffix)
	return Scope{logger: base.With("part", suffix), name: name, enabled: s.enabled}
}

// WithLog returns a copy of s with verbose output switched on or off.
func (s Scope) WithLog(enabled bool) Scope {
	s.enabled = enabled
	return s
}

func (s Scope) Name() string  { return s.name }
func (s Scope) Enabled() bool { return s.enabled }

// Logger returns the underlying logger.
func (s Scope) Logger() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s Scope) String() string { return "'" + s.name + "'" }

func (s Scope) Trace(msg string, args ...any) {
	if s.enabled {
		s.Logger().Log(context.Background(), LevelTrace, msg, args...)
	}
}

func (s Scope) Debug(msg string, args ...any) {
	if s.enabled {
		s.Logger().Debug(msg, args...)
	}
}

func (s Scope) Info(msg string, args ...any)  { s.Logger().Info(msg, args...) }
func (s Scope) Warn(msg string, args ...any)  { s.Logger().Warn(msg, args...) }
func (s Scope) Error(msg string, args ...any) { s.Logger().Error(msg, args...) }
