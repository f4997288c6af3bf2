package sensor

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	upowerService       = "org.freedesktop.UPower"
	upowerDisplayDevice = dbus.ObjectPath("/org/freedesktop/UPower/devices/DisplayDevice")
	upowerDevice        = "org.freedesktop.UPower.Device"
)

// UPower device states, see the UPower D-Bus documentation.
const (
	upowerCharging         = 1
	upowerDischarging      = 2
	upowerEmpty            = 3
	upowerFullyCharged     = 4
	upowerPendingCharge    = 5
	upowerPendingDischarge = 6
)

// UPowerBattery reads the UPower display device over the system bus.
type UPowerBattery struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func NewUPowerBattery() (*UPowerBattery, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, newError("upower", "failed to connect to system bus", err)
	}
	obj := conn.Object(upowerService, upowerDisplayDevice)
	if _, err := obj.GetProperty(upowerDevice + ".State"); err != nil {
		return nil, newError("upower", "display device unavailable", err)
	}
	return &UPowerBattery{conn: conn, obj: obj}, nil
}

func (b *UPowerBattery) Name() string { return "upower" }

func (b *UPowerBattery) Read(ctx context.Context) (BatteryReading, error) {
	percentage, err := b.property(ctx, "Percentage")
	if err != nil {
		return BatteryReading{}, err
	}
	state, err := b.property(ctx, "State")
	if err != nil {
		return BatteryReading{}, err
	}

	pct, ok := percentage.Value().(float64)
	if !ok {
		return BatteryReading{}, newError("upower", "Percentage is "+percentage.Signature().String(), nil)
	}
	st, ok := state.Value().(uint32)
	if !ok {
		return BatteryReading{}, newError("upower", "State is "+state.Signature().String(), nil)
	}

	return BatteryReading{
		Charge: clamp(pct/100, 0, 1),
		Status: UPowerStateString(st),
	}, nil
}

func (b *UPowerBattery) property(ctx context.Context, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := b.obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, upowerDevice, name)
	if err := call.Store(&v); err != nil {
		return v, newError("upower", "failed to read "+name, err)
	}
	return v, nil
}

// UPowerStateString maps a UPower device state to the sysfs status string.
func UPowerStateString(state uint32) string {
	switch state {
	case upowerCharging, upowerPendingCharge:
		return "Charging"
	case upowerDischarging, upowerPendingDischarge:
		return "Discharging"
	case upowerEmpty:
		return "Critical"
	case upowerFullyCharged:
		return "Full"
	default:
		return "Unknown"
	}
}
