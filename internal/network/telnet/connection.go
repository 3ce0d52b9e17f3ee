package telnet

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/eapache/queue"

	"telwire/internal/ansi"
	"telwire/internal/metrics"
	"telwire/internal/nodes"
	"telwire/pkg/telnet"
)

// Connection runs a telnet.Session over a net.Conn. Read returns plain data
// only; negotiation replies are written back as a side effect.
type Connection struct {
	conn    net.Conn
	reader  *Reader
	writer  *Writer
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Protects the session
	mu      sync.Mutex
	session *telnet.Session

	// Serializes writes; outbound holds frames waiting for Flush
	wmu      sync.Mutex
	outbound *queue.Queue

	// Terminal Info
	info         sync.RWMutex
	TerminalType string
	WindowWidth  int
	WindowHeight int
}

func NewConnection(conn net.Conn, logger *slog.Logger, opts ...telnet.SessionOption) *Connection {
	opts = append([]telnet.SessionOption{telnet.WithLogger(logger)}, opts...)
	c := &Connection{
		conn:     conn,
		logger:   logger,
		session:  telnet.NewSession(opts...),
		outbound: queue.New(),
	}
	c.reader = NewReader(conn, c)
	c.writer = NewWriter(c.counting())
	return c
}

// SetMetrics attaches collectors. A nil value disables them.
func (c *Connection) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

func (c *Connection) Read(p []byte) (n int, err error) {
	return c.reader.Read(p)
}

// Write sends p as plain data. Queued negotiation frames go out first.
func (c *Connection) Write(p []byte) (n int, err error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.flushLocked(); err != nil {
		return 0, err
	}
	return c.writer.Write(p)
}

// Send writes msg followed by a line break, with NVT line endings.
func (c *Connection) Send(msg string) error {
	_, err := c.Write([]byte(ansi.NormalizeNewlines(msg + "\n")))
	return err
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Receive implements EventHandler. It runs the session and appends the
// follow-up requests some options need once they are enabled.
func (c *Connection) Receive(p []byte) []telnet.Event {
	c.metrics.BytesReceived(len(p))

	c.mu.Lock()
	events := c.session.Receive(p)
	for _, ev := range events {
		neg, ok := ev.(telnet.NegotiationEvent)
		if !ok || neg.Command != telnet.WILL || neg.Option != telnet.TType {
			continue
		}
		// We must explicitly ask for the terminal type
		if out, ok := c.session.Subnegotiate(telnet.TType, []byte{telnet.SEND}); ok {
			events = append(events, out)
		}
	}
	c.mu.Unlock()

	c.metrics.ObserveEvents(events)
	return events
}

// HandleEvent implements EventHandler.
func (c *Connection) HandleEvent(ev telnet.Event) {
	switch e := ev.(type) {
	case telnet.OutboundEvent:
		c.enqueue(e)

	case telnet.CommandEvent:
		c.handleCommand(e.Command)

	case telnet.SubnegotiationEvent:
		c.handleSubnegotiation(e.Option, telnet.UnescapeIAC(e.Payload))
	}
}

func (c *Connection) handleCommand(cmd telnet.Command) {
	c.logger.Debug("Telnet command [IN]", "cmd", cmd)

	switch cmd {
	case telnet.AYT:
		// Are You There?
		c.enqueue(telnet.OutboundEvent{Raw: []byte("\r\n[Yes]\r\n")})
	case telnet.IP:
		c.logger.Info("Telnet IP (Interrupt Process) received")
	case telnet.AO:
		c.logger.Info("Telnet AO (Abort Output) received")
	case telnet.BRK:
		c.logger.Info("Telnet BRK (Break) received")
	}
}

func (c *Connection) handleSubnegotiation(option telnet.Option, data []byte) {
	c.logger.Debug("Telnet sub-negotiation [IN]", "opt", option, "len", len(data))

	switch option {
	case telnet.NAWS:
		// RFC 1073: IAC SB NAWS <16-bit width> <16-bit height> IAC SE
		if len(data) >= 4 {
			width := int(binary.BigEndian.Uint16(data[0:2]))
			height := int(binary.BigEndian.Uint16(data[2:4]))

			c.info.Lock()
			c.WindowWidth = width
			c.WindowHeight = height
			c.info.Unlock()

			c.logger.Debug("Telnet window size", "dims", fmt.Sprintf("%dx%d", width, height))
		}
	case telnet.TType:
		// RFC 1091: IAC SB TTYPE IS <terminal-type-string> IAC SE
		if len(data) > 1 && data[0] == telnet.IS {
			ttype := string(data[1:])

			c.info.Lock()
			c.TerminalType = ttype
			c.info.Unlock()

			c.logger.Debug("Telnet terminal type", "type", ttype)
		}
	}
}

func (c *Connection) enqueue(ev telnet.OutboundEvent) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.outbound.Add(ev)
}

// Flush implements EventHandler by writing every queued frame in order.
func (c *Connection) Flush() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.flushLocked()
}

func (c *Connection) flushLocked() error {
	for c.outbound.Length() > 0 {
		ev := c.outbound.Remove().(telnet.OutboundEvent)
		if _, err := c.writer.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// Will offers to enable option on our side if the table allows it.
func (c *Connection) Will(option telnet.Option) error {
	return c.negotiate(c.session.Will, option)
}

// Do asks the client to enable option if the table allows it.
func (c *Connection) Do(option telnet.Option) error {
	return c.negotiate(c.session.Do, option)
}

// Wont disables option on our side.
func (c *Connection) Wont(option telnet.Option) error {
	return c.negotiate(c.session.Wont, option)
}

// Dont asks the client to disable option.
func (c *Connection) Dont(option telnet.Option) error {
	return c.negotiate(c.session.Dont, option)
}

func (c *Connection) negotiate(fn func(telnet.Option) (telnet.OutboundEvent, bool), option telnet.Option) error {
	c.mu.Lock()
	out, ok := fn(option)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	c.enqueue(out)
	return c.Flush()
}

// IsLocalOptionEnabled checks if we have enabled a specific option
func (c *Connection) IsLocalOptionEnabled(option telnet.Option) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Table().Option(option).LocalEnabled()
}

// IsRemoteOptionEnabled checks if the client has enabled a specific option
func (c *Connection) IsRemoteOptionEnabled(option telnet.Option) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Table().Option(option).RemoteEnabled()
}

// Options returns a snapshot of the session's compatibility table.
func (c *Connection) Options() *telnet.Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.CloneTable()
}

// TerminalInfo implements nodes.Connection.
func (c *Connection) TerminalInfo() nodes.TerminalInfo {
	c.info.RLock()
	defer c.info.RUnlock()
	return nodes.TerminalInfo{
		Type:   c.TerminalType,
		Width:  c.WindowWidth,
		Height: c.WindowHeight,
	}
}

// StartNegotiationLogger starts a goroutine that waits for negotiation to complete
// (or timeout) and then logs the connection details.
func (c *Connection) StartNegotiationLogger(timeout time.Duration) {
	go func() {
		deadline := time.Now().Add(timeout)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for time.Now().Before(deadline) {
			info := c.TerminalInfo()
			if info.Type != "" && info.Width > 0 {
				break
			}
			<-ticker.C
		}

		c.LogConnectionInfo()
	}()
}

// LogConnectionInfo logs the summary of the connection info
func (c *Connection) LogConnectionInfo() {
	info := c.TerminalInfo()

	ttype := info.Type
	if ttype == "" {
		ttype = "UNKNOWN"
	}

	dims := fmt.Sprintf("%dx%d", info.Width, info.Height)
	if info.Width == 0 || info.Height == 0 {
		dims = "UNKNOWN"
	}

	c.logger.Info("Telnet connection established",
		"addr", c.RemoteAddr(),
		"terminal", ttype,
		"window", dims,
	)
}

// counting wraps the connection so bytes written are reported to metrics.
func (c *Connection) counting() *countingWriter {
	return &countingWriter{c: c}
}

type countingWriter struct {
	c *Connection
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.c.conn.Write(p)
	w.c.metrics.BytesSent(n)
	return n, err
}
