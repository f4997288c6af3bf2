// Package sensor reads the system state shown on the bar: battery charge,
// CPU and memory usage, audio volume and Hyprland workspaces.
//
// Every source is an interface so widgets and tests can swap in fakes.
package sensor

// Error is returned by sensor constructors and reads.
type Error struct {
	Source  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Source + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(source, message string, err error) *Error {
	return &Error{Source: source, Message: message, Err: err}
}
