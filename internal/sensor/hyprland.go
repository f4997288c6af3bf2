package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	hyprEventSocket   = ".socket2.sock"
	hyprRequestSocket = ".socket.sock"
)

// HyprlandDir returns $XDG_RUNTIME_DIR/hypr/$HYPRLAND_INSTANCE_SIGNATURE.
func HyprlandDir(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	runtime := getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		return "", newError("hyprland", "XDG_RUNTIME_DIR is not set", nil)
	}
	sig := getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", newError("hyprland", "HYPRLAND_INSTANCE_SIGNATURE is not set", nil)
	}
	return filepath.Join(runtime, "hypr", sig), nil
}

// WorkspaceEventKind says what happened to a workspace.
type WorkspaceEventKind int

const (
	WorkspaceSetActive WorkspaceEventKind = iota
	WorkspaceCreate
	WorkspaceDestroy
)

func (k WorkspaceEventKind) String() string {
	switch k {
	case WorkspaceCreate:
		return "create"
	case WorkspaceDestroy:
		return "destroy"
	default:
		return "set-active"
	}
}

// WorkspaceEvent is one parsed line from the event socket.
type WorkspaceEvent struct {
	Kind WorkspaceEventKind
	ID   int
}

// ParseEvent parses a "name>>data" line. Events that do not concern
// numbered workspaces are reported as not ok.
func ParseEvent(line string) (WorkspaceEvent, bool) {
	name, data, found := strings.Cut(strings.TrimSpace(line), ">>")
	if !found {
		return WorkspaceEvent{}, false
	}

	var kind WorkspaceEventKind
	var field string
	switch name {
	case "workspace":
		kind, field = WorkspaceSetActive, data
	case "workspacev2":
		kind, field = WorkspaceSetActive, firstField(data)
	case "createworkspace":
		kind, field = WorkspaceCreate, data
	case "createworkspacev2":
		kind, field = WorkspaceCreate, firstField(data)
	case "destroyworkspace":
		kind, field = WorkspaceDestroy, data
	case "destroyworkspacev2":
		kind, field = WorkspaceDestroy, firstField(data)
	case "focusedmon", "focusedmonv2":
		_, ws, ok := strings.Cut(data, ",")
		if !ok {
			return WorkspaceEvent{}, false
		}
		kind, field = WorkspaceSetActive, ws
	default:
		return WorkspaceEvent{}, false
	}

	id, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || id <= 0 {
		return WorkspaceEvent{}, false
	}
	return WorkspaceEvent{Kind: kind, ID: id}, true
}

func firstField(data string) string {
	id, _, _ := strings.Cut(data, ",")
	return id
}

// Hyprland talks to one compositor instance over its two unix sockets.
type Hyprland struct {
	dir    string
	dialer net.Dialer
}

// NewHyprland uses dir, or the instance from the environment when dir is
// empty.
func NewHyprland(dir string) (*Hyprland, error) {
	if dir == "" {
		d, err := HyprlandDir(nil)
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Hyprland{dir: dir}, nil
}

func (h *Hyprland) Dir() string { return h.dir }

// Request sends one command on the request socket and returns the reply.
func (h *Hyprland) Request(ctx context.Context, cmd string) ([]byte, error) {
	conn, err := h.dialer.DialContext(ctx, "unix", filepath.Join(h.dir, hyprRequestSocket))
	if err != nil {
		return nil, newError("hyprland", "failed to connect to request socket", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := io.WriteString(conn, cmd); err != nil {
		return nil, newError("hyprland", "failed to send "+strconv.Quote(cmd), err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, newError("hyprland", "failed to read reply to "+strconv.Quote(cmd), err)
	}
	return reply, nil
}

// Workspaces returns the ids of all numbered workspaces, sorted.
func (h *Hyprland) Workspaces(ctx context.Context) ([]int, error) {
	reply, err := h.Request(ctx, "j/workspaces")
	if err != nil {
		return nil, err
	}
	return ParseWorkspaces(reply)
}

// ParseWorkspaces reads the ids out of a j/workspaces reply.
func ParseWorkspaces(reply []byte) ([]int, error) {
	if !gjson.ValidBytes(reply) {
		return nil, newError("hyprland", "invalid workspaces reply", nil)
	}
	var ids []int
	gjson.GetBytes(reply, "#.id").ForEach(func(_, v gjson.Result) bool {
		if id := int(v.Int()); id > 0 {
			ids = append(ids, id)
		}
		return true
	})
	sort.Ints(ids)
	return ids, nil
}

// ActiveWorkspace returns the focused workspace id.
func (h *Hyprland) ActiveWorkspace(ctx context.Context) (int, error) {
	reply, err := h.Request(ctx, "j/activeworkspace")
	if err != nil {
		return 0, err
	}
	id := gjson.GetBytes(reply, "id")
	if !id.Exists() {
		return 0, newError("hyprland", "active workspace reply has no id", nil)
	}
	return int(id.Int()), nil
}

// Dispatch runs a hyprctl dispatcher, e.g. Dispatch(ctx, "workspace", "3").
func (h *Hyprland) Dispatch(ctx context.Context, args ...string) error {
	cmd := "dispatch " + strings.Join(args, " ")
	reply, err := h.Request(ctx, cmd)
	if err != nil {
		return err
	}
	if r := strings.TrimSpace(string(reply)); r != "ok" {
		return newError("hyprland", fmt.Sprintf("%s failed: %s", cmd, r), nil)
	}
	return nil
}

// Events reads the event socket until ctx is cancelled or the connection
// fails, calling fn for every workspace event.
func (h *Hyprland) Events(ctx context.Context, fn func(WorkspaceEvent)) error {
	conn, err := h.dialer.DialContext(ctx, "unix", filepath.Join(h.dir, hyprEventSocket))
	if err != nil {
		return newError("hyprland", "failed to connect to event socket", err)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ev, ok := ParseEvent(scanner.Text()); ok {
			fn(ev)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return newError("hyprland", "event socket read failed", err)
	}
	return newError("hyprland", "event socket closed", nil)
}
