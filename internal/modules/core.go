package modules

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"telwire/internal/nodes"
	"telwire/pkg/telnet"
)

// OptionReporter is implemented by connections that negotiate telnet options.
type OptionReporter interface {
	Options() *telnet.Table
}

// CoreModule provides the built-in commands.
type CoreModule struct {
	Nodes *nodes.Manager
}

// Safe ASCII border for clients without UTF-8
var asciiBorder = lipgloss.Border{
	Top:         "-",
	Bottom:      "-",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

func (m *CoreModule) Name() string {
	return "core"
}

func (m *CoreModule) HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error) {
	switch cmd {
	case "help":
		io.WriteString(w, "Commands: help, who, term, options, say <msg>, quit\n")
	case "who":
		m.who(w, node)
	case "term":
		io.WriteString(w, terminalBox(node)+"\n")
	case "options":
		m.options(w, node)
	case "say":
		msg := strings.TrimSpace(args)
		if msg == "" {
			io.WriteString(w, "Usage: say <message>\n")
			break
		}
		m.Nodes.BroadcastExcept(fmt.Sprintf("[Node %d] %s", node.ID, msg), node.ID)
	default:
		return false, nil
	}
	return true, nil
}

func (m *CoreModule) who(w io.Writer, node *nodes.Node) {
	for _, n := range m.Nodes.List() {
		marker := " "
		if n.ID == node.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, n)
	}
}

func (m *CoreModule) options(w io.Writer, node *nodes.Node) {
	reporter, ok := node.Conn.(OptionReporter)
	if !ok {
		io.WriteString(w, "Options are not available on this connection\n")
		return
	}

	table := reporter.Options()
	supported := table.Supported()
	if len(supported) == 0 {
		io.WriteString(w, "No options configured\n")
		return
	}

	for _, opt := range supported {
		state := table.Option(opt)
		fmt.Fprintf(w, "%-16s local:%-4s remote:%s\n", opt, onOff(state.LocalEnabled()), onOff(state.RemoteEnabled()))
	}
}

func terminalBox(node *nodes.Node) string {
	info := node.Conn.TerminalInfo()

	ttype := info.Type
	if ttype == "" {
		ttype = "unknown"
	}
	window := "unknown"
	if info.Width > 0 && info.Height > 0 {
		window = fmt.Sprintf("%dx%d", info.Width, info.Height)
	}

	return lipgloss.NewStyle().
		BorderStyle(asciiBorder).
		Padding(0, 1).
		Render(fmt.Sprintf("Terminal: %s\nWindow:   %s", ttype, window))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
