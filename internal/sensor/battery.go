package sensor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultBatteryPath is used when no battery is configured and none is found.
const DefaultBatteryPath = "/sys/class/power_supply/BAT0"

// PowerSupplyDir is where the kernel lists power supplies.
var PowerSupplyDir = "/sys/class/power_supply"

// BatteryReading is one sample of a battery.
type BatteryReading struct {
	// Charge is in [0, 1].
	Charge float64
	// Status is the raw kernel status string, e.g. "Discharging".
	Status string
}

// BatterySource produces battery readings.
type BatterySource interface {
	Name() string
	Read(ctx context.Context) (BatteryReading, error)
}

// BatteryStatus is the classified state used for colouring.
type BatteryStatus int

const (
	BatteryNormal BatteryStatus = iota
	BatteryFull
	BatteryCharging
	BatteryWarn
	BatteryCritical
)

func (s BatteryStatus) String() string {
	switch s {
	case BatteryFull:
		return "full"
	case BatteryCharging:
		return "charging"
	case BatteryWarn:
		return "warn"
	case BatteryCritical:
		return "critical"
	default:
		return "normal"
	}
}

// BatteryThresholds are the charge fractions Classify switches on.
type BatteryThresholds struct {
	Warn     float64
	Critical float64
	Full     float64
}

// DefaultBatteryThresholds returns warn 0.25, critical 0.10 and full 0.95.
func DefaultBatteryThresholds() BatteryThresholds {
	return BatteryThresholds{Warn: 0.25, Critical: 0.10, Full: 0.95}
}

// Classify maps a reading to a status. The second result is false when the
// raw status string was not recognised; the status is then Normal.
func (t BatteryThresholds) Classify(r BatteryReading) (BatteryStatus, bool) {
	switch strings.TrimSpace(r.Status) {
	case "Discharging":
		switch {
		case r.Charge < t.Critical:
			return BatteryCritical, true
		case r.Charge < t.Warn:
			return BatteryWarn, true
		default:
			return BatteryNormal, true
		}
	case "Critical":
		return BatteryCritical, true
	case "Not charging", "Full":
		return BatteryFull, true
	case "Charging":
		if r.Charge > t.Full {
			return BatteryFull, true
		}
		return BatteryCharging, true
	case "Warn":
		return BatteryWarn, true
	default:
		return BatteryNormal, false
	}
}

// SysfsBattery reads a power_supply directory.
type SysfsBattery struct {
	path string
}

// NewSysfsBattery checks that path looks like a battery. An empty path
// auto-detects the first BAT* entry.
func NewSysfsBattery(path string) (*SysfsBattery, error) {
	if path == "" {
		detected, err := DetectBattery()
		if err != nil {
			return nil, err
		}
		path = detected
	}
	if _, err := os.Stat(filepath.Join(path, "status")); err != nil {
		return nil, newError("battery", "no battery at "+path, err)
	}
	return &SysfsBattery{path: path}, nil
}

// DetectBattery returns the first BAT* directory under PowerSupplyDir.
func DetectBattery() (string, error) {
	matches, err := filepath.Glob(filepath.Join(PowerSupplyDir, "BAT*"))
	if err != nil {
		return "", newError("battery", "failed to list power supplies", err)
	}
	if len(matches) == 0 {
		return "", newError("battery", "no battery found in "+PowerSupplyDir, nil)
	}
	sort.Strings(matches)
	return matches[0], nil
}

func (b *SysfsBattery) Name() string { return "sysfs:" + b.path }
func (b *SysfsBattery) Path() string { return b.path }

func (b *SysfsBattery) Read(context.Context) (BatteryReading, error) {
	charge, err := b.charge()
	if err != nil {
		return BatteryReading{}, err
	}
	status, err := os.ReadFile(filepath.Join(b.path, "status"))
	if err != nil {
		return BatteryReading{}, newError("battery", "failed to read status", err)
	}
	return BatteryReading{Charge: charge, Status: strings.TrimSpace(string(status))}, nil
}

// charge tries energy_*, then charge_*, then the capacity percentage.
func (b *SysfsBattery) charge() (float64, error) {
	var errs []error
	for _, prefix := range []string{"energy", "charge"} {
		now, err := readFloat(filepath.Join(b.path, prefix+"_now"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		full, err := readFloat(filepath.Join(b.path, prefix+"_full"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if full <= 0 {
			errs = append(errs, fmt.Errorf("%s_full is %v", prefix, full))
			continue
		}
		return clamp(now/full, 0, 1), nil
	}

	capacity, err := readFloat(filepath.Join(b.path, "capacity"))
	if err != nil {
		errs = append(errs, err)
		return 0, newError("battery", "failed to read charge", errors.Join(errs...))
	}
	return clamp(capacity/100, 0, 1), nil
}

func readFloat(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// NewBatterySource builds a source by kind: "sysfs", "upower" or "auto"
// (sysfs first, then upower).
func NewBatterySource(kind, path string) (BatterySource, error) {
	switch kind {
	case "sysfs":
		return NewSysfsBattery(path)
	case "upower":
		return NewUPowerBattery()
	case "", "auto":
		sysfs, sysErr := NewSysfsBattery(path)
		if sysErr == nil {
			return sysfs, nil
		}
		up, upErr := NewUPowerBattery()
		if upErr == nil {
			return up, nil
		}
		return nil, newError("battery", "no battery source available", errors.Join(sysErr, upErr))
	default:
		return nil, newError("battery", "unknown source "+strconv.Quote(kind), nil)
	}
}
