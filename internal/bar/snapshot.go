package bar

import (
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/sensor"
	"github.com/elijahimmer/wlrs-bar/internal/widgets"
)

// Snapshot reports what the widgets currently show. Nothing is read from
// the sensors, so it is cheap enough to call from the frame loop.
func (b *Bar) Snapshot() sensor.Snapshot {
	snap := sensor.Snapshot{Instance: b.id.String(), Time: time.Now()}

	for _, w := range b.Widgets() {
		switch w := w.(type) {
		case *widgets.Battery:
			r := w.Reading()
			snap.Battery = &sensor.BatterySnapshot{
				Charge: r.Charge,
				Status: r.Status,
				Class:  w.Status().String(),
			}
		case *widgets.Meter:
			usage := w.Usage()
			switch w.Name() {
			case "cpu":
				snap.CPU = &usage
			case "ram":
				snap.RAM = &usage
			}
		case *widgets.Volume:
			if state, ok := w.State(); ok {
				snap.Volume = &state
			}
		case *widgets.Workspaces:
			snap.Workspaces = &sensor.WorkspaceSnapshot{IDs: w.IDs(), Active: w.Active()}
		case *widgets.UpdatedLast:
			snap.UpdatedLast = w.Label()
		}
	}
	return snap
}
