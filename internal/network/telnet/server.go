package telnet

import (
	"errors"
	"fmt"
	"net"
	"time"

	"telwire/internal/ansi"
	"telwire/internal/app"
	"telwire/internal/config"
	"telwire/internal/nodes"
	"telwire/internal/session"
	"telwire/pkg/telnet"
)

type Server struct {
	config config.TelnetConfig
	ln     net.Listener
}

func NewServer() *Server {
	return &Server{
		config: app.Config.Listeners.Telnet,
	}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return err
	}
	app.Logger.Info("Telnet server listening", "port", s.config.Port)
	return s.Serve(ln)
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	defer s.ln.Close()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			app.Logger.Error("Telnet accept error", "err", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) Stop() error {
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	node, err := app.Nodes.Acquire()
	if err != nil {
		app.Metrics.ConnectionRejected()
		app.Logger.Warn("Connection rejected: system full", "addr", conn.RemoteAddr())
		conn.Close()
		return
	}
	defer app.Nodes.Release(node.ID)

	app.Metrics.ConnectionOpened()
	defer app.Metrics.ConnectionClosed()

	logger := app.Logger.With("node", node.ID, "session", node.SessionID.String())

	// Each connection negotiates on its own copy of the configured table
	telnetConn := NewConnection(conn, logger,
		telnet.WithTable(app.Options.Clone()),
		telnet.WithBufferSize(s.config.BufferSize),
	)
	telnetConn.SetMetrics(app.Metrics)

	// Assign connection to node for cross-node comms
	app.Nodes.Attach(node.ID, telnetConn)

	defer telnetConn.Close()
	defer logger.Info("Telnet connection closed", "addr", telnetConn.RemoteAddr())

	logger.Debug("Telnet connection from", "addr", telnetConn.RemoteAddr())

	// Initiate Negotiation
	if err := s.offer(telnetConn, app.Config.Offers()); err != nil {
		logger.Warn("Telnet negotiation failed", "err", err)
		return
	}

	// Start a background logger to report connection details once negotiation settles
	telnetConn.StartNegotiationLogger(2 * time.Second)

	if err := s.greet(telnetConn, node); err != nil {
		logger.Error("Failed to send greeting", "err", err)
	}

	// Hand off to the session
	// RunSession blocks until the user disconnects
	session.RunSession(telnetConn, node, logger)
}

func (s *Server) offer(conn *Connection, offers []config.OptionConfig) error {
	for _, o := range offers {
		if o.Local {
			if err := conn.Will(o.Option.Code); err != nil {
				return err
			}
		}
		if o.Remote {
			if err := conn.Do(o.Option.Code); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) greet(conn *Connection, node *nodes.Node) error {
	if app.Config.Greeting == "" {
		return nil
	}
	out, err := ansi.RenderTemplate("greeting", app.Config.Greeting, session.TemplateData(conn, node))
	if err != nil {
		return err
	}
	_, err = ansi.Print(conn, string(out))
	return err
}
