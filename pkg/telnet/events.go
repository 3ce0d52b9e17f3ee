package telnet

// EventKind identifies the variant of an Event.
type EventKind int

const (
	KindData EventKind = iota
	KindCommand
	KindNegotiation
	KindSubnegotiation
	KindOutbound
)

var kindNames = [...]string{
	KindData:           "data",
	KindCommand:        "command",
	KindNegotiation:    "negotiation",
	KindSubnegotiation: "subnegotiation",
	KindOutbound:       "outbound",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is one unit of parser output. The set of implementations is closed:
// DataEvent, CommandEvent, NegotiationEvent, SubnegotiationEvent and
// OutboundEvent.
type Event interface {
	Kind() EventKind
	// Bytes returns the raw wire bytes of the event.
	Bytes() []byte
	event()
}

// DataEvent is a run of plain data. Raw still holds any escaped IAC pairs.
type DataEvent struct {
	Raw []byte
}

func (e DataEvent) Kind() EventKind { return KindData }
func (e DataEvent) Bytes() []byte   { return e.Raw }
func (DataEvent) event()            {}

// Text returns the data with IAC escapes removed.
func (e DataEvent) Text() []byte {
	return UnescapeIAC(e.Raw)
}

// CommandEvent is a two byte IAC sequence such as IAC GA.
type CommandEvent struct {
	Command Command
	Raw     []byte
}

func (e CommandEvent) Kind() EventKind { return KindCommand }
func (e CommandEvent) Bytes() []byte   { return e.Raw }
func (CommandEvent) event()            {}

// NegotiationEvent is IAC <WILL|WONT|DO|DONT> <option>.
type NegotiationEvent struct {
	Command Command
	Option  Option
	Raw     []byte
}

func (e NegotiationEvent) Kind() EventKind { return KindNegotiation }
func (e NegotiationEvent) Bytes() []byte   { return e.Raw }
func (NegotiationEvent) event()            {}

// SubnegotiationEvent is IAC SB <option> <payload> IAC SE. Payload is left
// exactly as received; unescaping is up to the consumer of the option.
type SubnegotiationEvent struct {
	Option  Option
	Payload []byte
	Raw     []byte
}

func (e SubnegotiationEvent) Kind() EventKind { return KindSubnegotiation }
func (e SubnegotiationEvent) Bytes() []byte   { return e.Raw }
func (SubnegotiationEvent) event()            {}

// OutboundEvent carries bytes that must be written to the peer as is.
type OutboundEvent struct {
	Raw []byte
}

func (e OutboundEvent) Kind() EventKind { return KindOutbound }
func (e OutboundEvent) Bytes() []byte   { return e.Raw }
func (OutboundEvent) event()            {}

// BuildCommand returns IAC <cmd>.
func BuildCommand(cmd Command) CommandEvent {
	return CommandEvent{Command: cmd, Raw: []byte{iac, byte(cmd)}}
}

// BuildNegotiation returns IAC <cmd> <option>.
func BuildNegotiation(cmd Command, opt Option) NegotiationEvent {
	return NegotiationEvent{Command: cmd, Option: opt, Raw: []byte{iac, byte(cmd), byte(opt)}}
}

// BuildSubnegotiation frames payload as IAC SB <option> <payload> IAC SE,
// escaping any IAC in payload on the wire.
func BuildSubnegotiation(opt Option, payload []byte) SubnegotiationEvent {
	escaped := EscapeIAC(payload)
	raw := make([]byte, 0, len(escaped)+5)
	raw = append(raw, iac, byte(SB), byte(opt))
	raw = append(raw, escaped...)
	raw = append(raw, iac, byte(SE))
	return SubnegotiationEvent{Option: opt, Payload: escaped, Raw: raw}
}

// BuildOutbound wraps the wire bytes of ev for sending.
func BuildOutbound(ev Event) OutboundEvent {
	return OutboundEvent{Raw: append([]byte{}, ev.Bytes()...)}
}

// classify turns a delimited frame into an event. The frame kind comes from
// the scanner state that closed it, not from its byte pattern.
func classify(kind EventKind, frame []byte) Event {
	switch kind {
	case KindCommand:
		return CommandEvent{Command: Command(frame[1]), Raw: frame}
	case KindNegotiation:
		return NegotiationEvent{Command: Command(frame[1]), Option: Option(frame[2]), Raw: frame}
	case KindSubnegotiation:
		return SubnegotiationEvent{Option: Option(frame[2]), Payload: frame[3 : len(frame)-2], Raw: frame}
	default:
		return DataEvent{Raw: frame}
	}
}
