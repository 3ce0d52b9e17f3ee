package telnet

import (
	"io"
	"log/slog"
)

// Negotiator answers the peer's WILL/WONT/DO/DONT requests using a Table as
// policy. A request that would not change the enabled state gets no answer,
// which is what keeps two peers from looping on acknowledgements.
type Negotiator struct {
	table  *Table
	logger *slog.Logger
}

// NewNegotiator returns a negotiator over table. A nil logger discards.
func NewNegotiator(table *Table, logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Negotiator{table: table, logger: logger}
}

// Respond returns the reply to ev, if any, and updates the table.
func (n *Negotiator) Respond(ev NegotiationEvent) (OutboundEvent, bool) {
	opt := n.table.Option(ev.Option)
	n.logger.Debug("Telnet command [IN]", "cmd", ev.Command, "opt", ev.Option)

	switch ev.Command {
	case WILL:
		// Peer wants to enable the option on its side
		switch {
		case !opt.Remote():
			return n.reply(DONT, ev.Option)
		case !opt.RemoteEnabled():
			opt.SetRemoteEnabled(true)
			return n.reply(DO, ev.Option)
		}
	case WONT:
		if opt.RemoteEnabled() {
			opt.SetRemoteEnabled(false)
			return n.reply(DONT, ev.Option)
		}
	case DO:
		// Peer wants us to enable the option
		switch {
		case !opt.Local():
			return n.reply(WONT, ev.Option)
		case !opt.LocalEnabled():
			opt.SetLocalEnabled(true)
			opt.SetRemoteEnabled(true)
			return n.reply(WILL, ev.Option)
		}
	case DONT:
		if opt.LocalEnabled() {
			opt.SetLocalEnabled(false)
			return n.reply(WONT, ev.Option)
		}
	}
	return OutboundEvent{}, false
}

// Will offers to enable opt locally. Local state is updated optimistically.
func (n *Negotiator) Will(opt Option) (OutboundEvent, bool) {
	s := n.table.Option(opt)
	if !s.Local() || s.LocalEnabled() {
		return OutboundEvent{}, false
	}
	s.SetLocalEnabled(true)
	return n.reply(WILL, opt)
}

// Wont disables opt locally.
func (n *Negotiator) Wont(opt Option) (OutboundEvent, bool) {
	s := n.table.Option(opt)
	if !s.LocalEnabled() {
		return OutboundEvent{}, false
	}
	s.SetLocalEnabled(false)
	return n.reply(WONT, opt)
}

// Do asks the peer to enable opt. Remote state is updated optimistically, so
// the peer's WILL in answer is not acknowledged a second time.
func (n *Negotiator) Do(opt Option) (OutboundEvent, bool) {
	s := n.table.Option(opt)
	if !s.Remote() || s.RemoteEnabled() {
		return OutboundEvent{}, false
	}
	s.SetRemoteEnabled(true)
	return n.reply(DO, opt)
}

// Dont asks the peer to disable opt.
func (n *Negotiator) Dont(opt Option) (OutboundEvent, bool) {
	s := n.table.Option(opt)
	if !s.RemoteEnabled() {
		return OutboundEvent{}, false
	}
	s.SetRemoteEnabled(false)
	return n.reply(DONT, opt)
}

func (n *Negotiator) reply(cmd Command, opt Option) (OutboundEvent, bool) {
	n.logger.Debug("Telnet command [OUT]", "cmd", cmd, "opt", opt)
	return BuildOutbound(BuildNegotiation(cmd, opt)), true
}
