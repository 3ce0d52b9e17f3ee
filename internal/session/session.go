package session

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/term"

	"telwire/internal/ansi"
	"telwire/internal/app"
	"telwire/internal/modules"
	"telwire/internal/nodes"
)

// Conn is the transport a session runs on.
type Conn interface {
	io.ReadWriter
	nodes.Connection
}

// Session represents an active connection at the command prompt.
type Session struct {
	conn     Conn
	node     *nodes.Node
	logger   *slog.Logger
	registry *modules.Registry
	term     *term.Terminal
}

func New(conn Conn, node *nodes.Node, logger *slog.Logger) *Session {
	// Initialize Module Registry
	registry := modules.NewRegistry()
	registry.Register(&modules.CoreModule{Nodes: app.Nodes})

	return &Session{
		conn:     conn,
		node:     node,
		logger:   logger,
		registry: registry,
	}
}

// RunSession starts the REPL and blocks until the client leaves.
func RunSession(conn Conn, node *nodes.Node, logger *slog.Logger) {
	New(conn, node, logger).Run()
}

func (s *Session) Run() {
	// We treat the connection as a terminal.
	// term.NewTerminal handles the prompt, line editing, and echo.
	s.term = term.NewTerminal(s.conn, s.prompt())

	for {
		if info := s.conn.TerminalInfo(); info.Width > 0 && info.Height > 0 {
			_ = s.term.SetSize(info.Width, info.Height)
		}

		line, err := s.term.ReadLine()
		if err != nil {
			if err != io.EOF {
				s.logger.Error("Error reading line", "err", err)
			}
			break
		}

		if !s.Execute(s.term, line) {
			break
		}
	}
}

// Execute runs one input line, writing output to w. It returns false when the
// session should end.
func (s *Session) Execute(w io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	cmd, args, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)

	switch cmd {
	case "":
		return true
	case "exit", "quit":
		fmt.Fprintln(w, "Goodbye!")
		return false
	}

	handled, err := s.registry.HandleCommand(w, s.node, cmd, args)
	if err != nil {
		s.logger.Error("Command failed", "cmd", cmd, "err", err)
		fmt.Fprintln(w, "Command failed.")
		return true
	}
	if !handled {
		// Anything else is echoed back
		fmt.Fprintln(w, line)
	}
	return true
}

func (s *Session) prompt() string {
	text := app.Config.Listeners.Telnet.Prompt
	if text == "" {
		return "> "
	}
	out, err := ansi.RenderTemplate("prompt", text, TemplateData(s.conn, s.node))
	if err != nil {
		s.logger.Warn("Invalid prompt template", "err", err)
		return "> "
	}
	return string(out)
}

// TemplateData collects the values greeting and prompt templates can use.
func TemplateData(conn nodes.Connection, node *nodes.Node) ansi.TemplateData {
	info := conn.TerminalInfo()
	return ansi.TemplateData{
		Name:     app.Config.General.Name,
		Hostname: app.Config.General.Hostname,
		Version:  app.Version,
		Node:     node.ID,
		Session:  node.SessionID.String(),
		Terminal: info.Type,
		Width:    info.Width,
		Height:   info.Height,
	}
}
