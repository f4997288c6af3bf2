package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// VolumeState is the default sink's volume.
type VolumeState struct {
	Percent float64 `json:"percent" yaml:"percent"`
	Muted   bool    `json:"muted" yaml:"muted"`
}

// VolumeBackend controls the default audio sink.
type VolumeBackend interface {
	Name() string
	Get(ctx context.Context) (VolumeState, error)
	// Adjust changes the volume by delta percent, negative to lower it.
	Adjust(ctx context.Context, delta float64) error
	ToggleMute(ctx context.Context) error
}

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// LookPath is swapped in tests.
var LookPath = exec.LookPath

// VolumeBackends lists the command line tools in auto-detection order.
var VolumeBackends = []string{"wpctl", "pactl", "amixer"}

// NewVolumeBackend returns the named backend, or the first one whose tool
// is on PATH for "auto". A nil run uses ExecRunner.
func NewVolumeBackend(name string, run Runner) (VolumeBackend, error) {
	if run == nil {
		run = ExecRunner
	}
	if name == "" || name == "auto" {
		for _, candidate := range VolumeBackends {
			if _, err := LookPath(candidate); err == nil {
				return NewVolumeBackend(candidate, run)
			}
		}
		return nil, newError("volume", "none of "+strings.Join(VolumeBackends, ", ")+" found in PATH", nil)
	}

	switch name {
	case "wpctl":
		return &wpctl{run: run}, nil
	case "pactl":
		return &pactl{run: run}, nil
	case "amixer":
		return &amixer{run: run}, nil
	default:
		return nil, newError("volume", "unknown backend "+strconv.Quote(name), nil)
	}
}

func signedPercent(delta float64, suffix bool) string {
	sign := "+"
	if delta < 0 {
		sign = "-"
	}
	n := strconv.FormatFloat(math.Abs(delta), 'f', -1, 64) + "%"
	if suffix {
		return n + sign
	}
	return sign + n
}

type wpctl struct{ run Runner }

const wpctlSink = "@DEFAULT_AUDIO_SINK@"

func (w *wpctl) Name() string { return "wpctl" }

func (w *wpctl) Get(ctx context.Context) (VolumeState, error) {
	out, err := w.run(ctx, "wpctl", "get-volume", wpctlSink)
	if err != nil {
		return VolumeState{}, newError("volume", "failed to get volume", err)
	}
	return ParseWpctl(string(out))
}

func (w *wpctl) Adjust(ctx context.Context, delta float64) error {
	if _, err := w.run(ctx, "wpctl", "set-volume", "-l", "1.0", wpctlSink, signedPercent(delta, true)); err != nil {
		return newError("volume", "failed to set volume", err)
	}
	return nil
}

func (w *wpctl) ToggleMute(ctx context.Context) error {
	if _, err := w.run(ctx, "wpctl", "set-mute", wpctlSink, "toggle"); err != nil {
		return newError("volume", "failed to toggle mute", err)
	}
	return nil
}

// ParseWpctl parses "Volume: 0.45" with an optional " [MUTED]".
func ParseWpctl(out string) (VolumeState, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Volume:" {
		return VolumeState{}, newError("volume", "unexpected wpctl output "+strconv.Quote(out), nil)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return VolumeState{}, newError("volume", "unexpected wpctl volume", err)
	}
	return VolumeState{
		Percent: v * 100,
		Muted:   strings.Contains(out, "[MUTED]"),
	}, nil
}

type pactl struct{ run Runner }

const pactlSink = "@DEFAULT_SINK@"

var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

func (p *pactl) Name() string { return "pactl" }

func (p *pactl) Get(ctx context.Context) (VolumeState, error) {
	vol, err := p.run(ctx, "pactl", "get-sink-volume", pactlSink)
	if err != nil {
		return VolumeState{}, newError("volume", "failed to get volume", err)
	}
	mute, err := p.run(ctx, "pactl", "get-sink-mute", pactlSink)
	if err != nil {
		return VolumeState{}, newError("volume", "failed to get mute", err)
	}
	return ParsePactl(string(vol), string(mute))
}

func (p *pactl) Adjust(ctx context.Context, delta float64) error {
	if _, err := p.run(ctx, "pactl", "set-sink-volume", pactlSink, signedPercent(delta, false)); err != nil {
		return newError("volume", "failed to set volume", err)
	}
	return nil
}

func (p *pactl) ToggleMute(ctx context.Context) error {
	if _, err := p.run(ctx, "pactl", "set-sink-mute", pactlSink, "toggle"); err != nil {
		return newError("volume", "failed to toggle mute", err)
	}
	return nil
}

// ParsePactl takes the first channel's percentage from get-sink-volume and
// "Mute: yes|no" from get-sink-mute.
func ParsePactl(volume, mute string) (VolumeState, error) {
	m := percentRe.FindStringSubmatch(volume)
	if m == nil {
		return VolumeState{}, newError("volume", "unexpected pactl output "+strconv.Quote(volume), nil)
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return VolumeState{}, newError("volume", "unexpected pactl volume", err)
	}
	return VolumeState{
		Percent: pct,
		Muted:   strings.Contains(strings.ToLower(mute), "yes"),
	}, nil
}

type amixer struct{ run Runner }

var amixerRe = regexp.MustCompile(`\[(\d+)%\](?:.*\[(on|off)\])?`)

func (a *amixer) Name() string { return "amixer" }

func (a *amixer) Get(ctx context.Context) (VolumeState, error) {
	out, err := a.run(ctx, "amixer", "get", "Master")
	if err != nil {
		return VolumeState{}, newError("volume", "failed to get volume", err)
	}
	return ParseAmixer(string(out))
}

func (a *amixer) Adjust(ctx context.Context, delta float64) error {
	if _, err := a.run(ctx, "amixer", "-q", "set", "Master", signedPercent(delta, true)); err != nil {
		return newError("volume", "failed to set volume", err)
	}
	return nil
}

func (a *amixer) ToggleMute(ctx context.Context) error {
	if _, err := a.run(ctx, "amixer", "-q", "set", "Master", "toggle"); err != nil {
		return newError("volume", "failed to toggle mute", err)
	}
	return nil
}

// ParseAmixer reads the first "[NN%] ... [on|off]" line of amixer get.
func ParseAmixer(out string) (VolumeState, error) {
	for _, line := range strings.Split(out, "\n") {
		m := amixerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return VolumeState{}, newError("volume", "unexpected amixer volume", err)
		}
		return VolumeState{Percent: pct, Muted: m[2] == "off"}, nil
	}
	return VolumeState{}, newError("volume", "unexpected amixer output", nil)
}
