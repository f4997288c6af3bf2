package widgets

import (
	"fmt"
	"image"
	"time"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/logging"
	"github.com/elijahimmer/wlrs-bar/internal/widget"
)

// UpdateNow is shown once the last update is too old.
const UpdateNow = "UPDATE NOW!"

// maxLabelLen is the longest label, "59 Minutes Ago".
const maxLabelLen = len("59 Minutes Ago")

// staleDays is the most whole days shown before UpdateNow.
const staleDays = 14

// UpdatedLastLabel describes how long ago d was.
func UpdatedLastLabel(d time.Duration) string {
	switch {
	case d < 0:
		return "The Future?"
	case int(d/(24*time.Hour)) > staleDays:
		return UpdateNow
	}

	units := []struct {
		name string
		size time.Duration
	}{
		{"Day", 24 * time.Hour},
		{"Hour", time.Hour},
		{"Minute", time.Minute},
	}
	for _, u := range units {
		n := int(d / u.size)
		switch {
		case n == 1:
			return "1 " + u.name + " Ago"
		case n > 1:
			return fmt.Sprintf("%d %ss Ago", n, u.name)
		}
	}
	return "Now"
}

type UpdatedLastOptions struct {
	Style
	Time time.Time
	Now  func() time.Time
}

// UpdatedLast shows how long ago the system was last updated.
type UpdatedLast struct {
	widget.NoInput

	log  logging.Scope
	opts UpdatedLastOptions
	text *draw.TextBox
	area image.Rectangle
}

func NewUpdatedLast(log logging.Scope, opts UpdatedLastOptions) *UpdatedLast {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log.Info("initializing", "time", opts.Time, "height", opts.DesiredHeight)

	u := &UpdatedLast{
		log:  log,
		opts: opts,
		text: draw.NewTextBox(log.Child("text"), draw.TextBoxOptions{
			FG:                opts.Palette.Rose,
			BG:                opts.BG(),
			DesiredTextHeight: textHeight(opts.DesiredHeight),
			FitCells:          maxLabelLen,
			HAlign:            draw.Center,
			Outline:           opts.Outline,
		}),
	}
	u.update()
	return u
}

func (u *UpdatedLast) update() {
	label := UpdatedLastLabel(u.opts.Now().Sub(u.opts.Time))
	u.text.SetText(label)
	if label == UpdateNow {
		u.text.SetFG(u.opts.Palette.Love)
	} else {
		u.text.SetFG(u.opts.Palette.Rose)
	}
}

// Label is the text currently shown.
func (u *UpdatedLast) Label() string { return u.text.Text() }

func (u *UpdatedLast) Name() string          { return u.log.Name() }
func (u *UpdatedLast) Area() image.Rectangle { return u.area }
func (u *UpdatedLast) HAlign() draw.Align    { return u.opts.HAlign }
func (u *UpdatedLast) VAlign() draw.Align    { return u.opts.VAlign }
func (u *UpdatedLast) DesiredHeight() int    { return u.opts.DesiredHeight }

func (u *UpdatedLast) DesiredWidth(height int) int {
	return height * maxLabelLen * 2 / 3
}

func (u *UpdatedLast) Resize(area image.Rectangle) {
	u.area = area
	u.text.Resize(area)
}

func (u *UpdatedLast) ShouldRedraw() bool {
	u.update()
	return u.text.ShouldRedraw()
}

func (u *UpdatedLast) Draw(ctx *draw.Context) error {
	return u.text.Draw(ctx)
}
