package telnet

import (
	"io"
	"log/slog"
)

// Session is the protocol state of one connection: a parser, a compatibility
// table and the negotiator that works on it. It performs no I/O. Feed it
// what was read with Receive and write back every OutboundEvent it returns.
//
// A Session must not be shared between goroutines.
type Session struct {
	parser     *Parser
	table      *Table
	negotiator *Negotiator
	logger     *slog.Logger
}

type sessionOptions struct {
	bufferSize int
	table      *Table
	logger     *slog.Logger
}

// SessionOption configures NewSession.
type SessionOption func(*sessionOptions)

// WithBufferSize sets the initial capacity of the receive buffer.
func WithBufferSize(n int) SessionOption {
	return func(o *sessionOptions) { o.bufferSize = n }
}

// WithTable hands table to the session. The session mutates it during
// negotiation, so pass a Clone of any table shared between sessions.
func WithTable(table *Table) SessionOption {
	return func(o *sessionOptions) { o.table = table }
}

// WithLogger sets the logger used for negotiation tracing.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = logger }
}

// NewSession returns a session with an empty table unless one is given.
func NewSession(opts ...SessionOption) *Session {
	o := sessionOptions{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = NewTable()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		parser:     NewParser(o.bufferSize),
		table:      o.table,
		negotiator: NewNegotiator(o.table, o.logger),
		logger:     o.logger,
	}
}

// Receive parses p and returns the resulting events in stream order,
// followed by any replies the negotiation produced.
func (s *Session) Receive(p []byte) []Event {
	events := s.parser.Parse(p)
	var replies []Event
	for _, ev := range events {
		neg, ok := ev.(NegotiationEvent)
		if !ok {
			continue
		}
		if out, ok := s.negotiator.Respond(neg); ok {
			replies = append(replies, out)
		}
	}
	if s.parser.Pending() > 0 {
		s.logger.Debug("Telnet partial sequence held", "bytes", s.parser.Pending())
	}
	return append(events, replies...)
}

// Send escapes p for transmission as plain data.
func (s *Session) Send(p []byte) []byte {
	return EscapeIAC(p)
}

// SendString escapes the bytes of str for transmission.
func (s *Session) SendString(str string) []byte {
	return EscapeIAC([]byte(str))
}

// Will offers to enable opt on our side. See Negotiator.Will.
func (s *Session) Will(opt Option) (OutboundEvent, bool) { return s.negotiator.Will(opt) }

// Wont disables opt on our side. See Negotiator.Wont.
func (s *Session) Wont(opt Option) (OutboundEvent, bool) { return s.negotiator.Wont(opt) }

// Do asks the peer to enable opt. See Negotiator.Do.
func (s *Session) Do(opt Option) (OutboundEvent, bool) { return s.negotiator.Do(opt) }

// Dont asks the peer to disable opt. See Negotiator.Dont.
func (s *Session) Dont(opt Option) (OutboundEvent, bool) { return s.negotiator.Dont(opt) }

// Negotiate builds IAC <cmd> <opt> without consulting or updating the table.
func (s *Session) Negotiate(cmd Command, opt Option) OutboundEvent {
	return BuildOutbound(BuildNegotiation(cmd, opt))
}

// Command builds a two byte command such as IAC GA.
func (s *Session) Command(cmd Command) OutboundEvent {
	return BuildOutbound(BuildCommand(cmd))
}

// Subnegotiate frames payload for opt. It is refused until opt has been
// enabled in at least one direction.
func (s *Session) Subnegotiate(opt Option, payload []byte) (OutboundEvent, bool) {
	state := s.table.Option(opt)
	if !state.LocalEnabled() && !state.RemoteEnabled() {
		return OutboundEvent{}, false
	}
	return BuildOutbound(BuildSubnegotiation(opt, payload)), true
}

// Table returns the live compatibility table.
func (s *Session) Table() *Table { return s.table }

// CloneTable returns a copy of the compatibility table.
func (s *Session) CloneTable() *Table { return s.table.Clone() }

// Pending returns the number of received bytes waiting for a complete frame.
func (s *Session) Pending() int { return s.parser.Pending() }
