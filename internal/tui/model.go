// Package tui provides a terminal preview of the bar built with BubbleTea.
// It shows the same sensor snapshot the bar draws, refreshed on a timer.
package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/elijahimmer/wlrs-bar/internal/draw"
	"github.com/elijahimmer/wlrs-bar/internal/sensor"
)

// DefaultInterval is how often the preview collects a new snapshot.
const DefaultInterval = time.Second

const barWidth = 30

// CollectFunc reads one snapshot.
type CollectFunc func(ctx context.Context) sensor.Snapshot

// Model is the preview model.
type Model struct {
	collect  CollectFunc
	interval time.Duration
	palette  draw.Palette
	clip     func(string) error

	keys KeyMap
	help help.Model

	cpu, ram, battery, volume progress.Model

	snap   sensor.Snapshot
	ready  bool
	width  int
	height int

	statusMsg string
	statusErr bool
}

// New creates a preview model.
func New(collect CollectFunc, palette draw.Palette, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	bar := func(c draw.Color) progress.Model {
		return progress.New(
			progress.WithSolidFill(c.Hex()),
			progress.WithoutPercentage(),
			progress.WithWidth(barWidth),
		)
	}
	return Model{
		collect:  collect,
		interval: interval,
		palette:  palette,
		clip:     copyText,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		cpu:      bar(palette.Pine),
		ram:      bar(palette.Iris),
		battery:  bar(palette.Foam),
		volume:   bar(palette.Rose),
	}
}

type snapshotMsg sensor.Snapshot

type tickMsg time.Time

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Init collects the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.collectCmd
}

func (m Model) collectCmd() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()
	return snapshotMsg(m.collect(ctx))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, m.collectCmd

	case snapshotMsg:
		m.snap = sensor.Snapshot(msg)
		m.ready = true
		return m, m.tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.collectCmd
	case key.Matches(msg, m.keys.CopyJSON):
		return m, m.copySnapshot("json")
	case key.Matches(msg, m.keys.CopyYAML):
		return m, m.copySnapshot("yaml")
	}
	return m, nil
}

func (m Model) copySnapshot(format string) tea.Cmd {
	snap := m.snap
	clip := m.clip
	return func() tea.Msg {
		text, err := encodeSnapshot(snap, format)
		if err == nil {
			err = clip(text)
		}
		if err != nil {
			return statusMsg{text: "Copy failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Copied snapshot as " + strings.ToUpper(format)}
	}
}

func (m Model) style(c draw.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// View renders the preview.
func (m Model) View() string {
	if !m.ready {
		return "Reading sensors..."
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.palette.Rose.Hex())).
		Background(lipgloss.Color(m.palette.Surface.Hex())).
		Padding(0, 1).
		Render("wlrs-bar " + m.snap.Time.Format("15:04:05"))

	label := lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color(m.palette.Subtle.Hex()))
	muted := m.style(m.palette.Muted)

	var rows []string
	row := func(name, value string) {
		rows = append(rows, label.Render(name)+value)
	}

	if ws := m.snap.Workspaces; ws != nil {
		row("workspaces", m.renderWorkspaces(*ws))
	}
	if cpu := m.snap.CPU; cpu != nil {
		row("cpu", m.cpu.ViewAs(*cpu/100)+fmt.Sprintf(" %3.0f%%", *cpu))
	}
	if ram := m.snap.RAM; ram != nil {
		extra := ""
		if mem := m.snap.Memory; mem != nil {
			extra = muted.Render(fmt.Sprintf("  %s / %s", humanize.IBytes(mem.Used()), humanize.IBytes(mem.Total)))
		}
		row("ram", m.ram.ViewAs(*ram/100)+fmt.Sprintf(" %3.0f%%", *ram)+extra)
	}
	if b := m.snap.Battery; b != nil {
		row("battery", m.battery.ViewAs(b.Charge)+
			m.batteryStyle(b.Class).Render(fmt.Sprintf(" %3.0f%% %s", b.Charge*100, b.Class)))
	}
	if v := m.snap.Volume; v != nil {
		text := fmt.Sprintf(" %3.0f%%", v.Percent)
		if v.Muted {
			text += " muted"
		}
		row("volume", m.volume.ViewAs(v.Percent/100)+text)
	}
	if m.snap.UpdatedLast != "" {
		row("updated", m.style(m.palette.Gold).Render(m.snap.UpdatedLast))
	}
	for _, name := range slices.Sorted(maps.Keys(m.snap.Errors)) {
		row(name, m.style(m.palette.Love).Render(m.snap.Errors[name]))
	}

	footer := m.help.View(m.keys)
	if m.statusMsg != "" {
		s := m.style(m.palette.Text)
		if m.statusErr {
			s = m.style(m.palette.Love)
		}
		footer = s.Render(m.statusMsg)
	}

	return title + "\n\n" + strings.Join(rows, "\n") + "\n\n" + footer
}

func (m Model) renderWorkspaces(ws sensor.WorkspaceSnapshot) string {
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Base.Hex())).
		Background(lipgloss.Color(m.palette.Rose.Hex()))
	idle := m.style(m.palette.Text)

	parts := make([]string, len(ws.IDs))
	for i, id := range ws.IDs {
		s := idle
		if id == ws.Active {
			s = active
		}
		parts[i] = s.Render(fmt.Sprintf(" %d ", id))
	}
	return strings.Join(parts, "")
}

func (m Model) batteryStyle(class string) lipgloss.Style {
	switch class {
	case sensor.BatteryCritical.String():
		return m.style(m.palette.Love)
	case sensor.BatteryWarn.String():
		return m.style(m.palette.Gold)
	case sensor.BatteryCharging.String(), sensor.BatteryFull.String():
		return m.style(m.palette.Pine)
	default:
		return m.style(m.palette.Text)
	}
}

// RunOptions configures the preview.
type RunOptions struct {
	Collect  CollectFunc
	Palette  draw.Palette
	Interval time.Duration
}

// Run starts the preview and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts RunOptions) error {
	m := New(opts.Collect, opts.Palette, opts.Interval)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
