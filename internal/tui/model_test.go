package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
)

func ptr[T any](v T) *T { return &v }

func testSnapshot() sensor.Snapshot {
	return sensor.Snapshot{
		Time:       time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		CPU:        ptr(42.0),
		RAM:        ptr(50.0),
		Memory:     &sensor.MemoryUsage{Total: 8 << 30, Available: 4 << 30},
		Battery:    &sensor.BatterySnapshot{Source: "fake", Charge: 0.07, Status: "Discharging", Class: "critical"},
		Volume:     &sensor.VolumeState{Percent: 30, Muted: true},
		Workspaces: &sensor.WorkspaceSnapshot{IDs: []int{1, 2, 3}, Active: 2},
		Errors:     map[string]string{"volume": "no backend"},
	}
}

func newModel(snap sensor.Snapshot) Model {
	return New(func(context.Context) sensor.Snapshot { return snap }, draw.RosePine, time.Second)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_CollectsOnInit(t *testing.T) {
	m := newModel(testSnapshot())
	assert.Equal(t, "Reading sensors...", m.View())

	msg := m.Init()()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)

	m, cmd := update(t, m, snap)
	assert.True(t, m.ready)
	assert.NotNil(t, cmd, "the next tick is scheduled")

	_, cmd = update(t, m, tickMsg(time.Now()))
	require.NotNil(t, cmd)
	_, ok = cmd().(snapshotMsg)
	assert.True(t, ok, "a tick collects again")
}

func TestModel_View(t *testing.T) {
	m, _ := update(t, newModel(testSnapshot()), snapshotMsg(testSnapshot()))
	view := m.View()

	for _, want := range []string{"12:30:00", "workspaces", "cpu", "42%", "ram", "4.0 GiB / 8.0 GiB", "battery", "7% critical", "muted", "no backend"} {
		assert.Contains(t, view, want)
	}
	assert.NotContains(t, view, "updated", "no updated-last label was set")
}

func TestModel_Keys(t *testing.T) {
	m, _ := update(t, newModel(testSnapshot()), snapshotMsg(testSnapshot()))

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.ShowAll)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	_, ok := cmd().(snapshotMsg)
	assert.True(t, ok)
}

func TestModel_Copy(t *testing.T) {
	m, _ := update(t, newModel(testSnapshot()), snapshotMsg(testSnapshot()))

	var copied string
	m.clip = func(s string) error { copied = s; return nil }

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	msg := cmd().(statusMsg)
	assert.False(t, msg.isErr)
	assert.Contains(t, copied, "cpu: 42")

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	cmd()
	assert.True(t, strings.HasPrefix(copied, "{"))
	assert.Contains(t, copied, `"active": 2`)

	m.clip = func(string) error { return errors.New("no clipboard") }
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	msg = cmd().(statusMsg)
	assert.True(t, msg.isErr)

	m, _ = update(t, m, msg)
	assert.Contains(t, m.View(), "Copy failed: no clipboard")
	m, _ = update(t, m, clearStatusMsg{})
	assert.Empty(t, m.statusMsg)
}

func TestEncodeSnapshot_UnknownFormat(t *testing.T) {
	_, err := encodeSnapshot(sensor.Snapshot{}, "xml")
	assert.Error(t, err)
}
