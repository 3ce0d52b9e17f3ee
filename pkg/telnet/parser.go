package telnet

// DefaultBufferSize is the initial capacity of a parser's buffer.
const DefaultBufferSize = 128

type scanState int

const (
	stateNormal scanState = iota
	stateIAC
	stateNegotiation
	stateSubOption
	stateSubData
	stateSubIAC
)

// Parser splits a raw TELNET byte stream into events. Input may be cut at any
// point; an incomplete control sequence at the end of one call is kept and
// completed by the next.
//
// Each call appends the new bytes to whatever was left over and scans the
// combined bytes from the start.
type Parser struct {
	buf *Buffer
}

// NewParser returns a parser whose buffer starts with the given capacity.
func NewParser(bufferSize int) *Parser {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Parser{buf: NewBuffer(bufferSize)}
}

// Pending returns the number of bytes held back from previous calls.
func (p *Parser) Pending() int {
	return p.buf.Len()
}

// Parse consumes chunk and returns every complete frame, in order.
func (p *Parser) Parse(chunk []byte) []Event {
	p.stash(chunk)
	data := p.buf.Split().Freeze()

	var (
		events []Event
		state  = stateNormal
		start  int // first byte of the frame being built
		iacAt  int // position of the IAC that left stateNormal
	)

	emit := func(kind EventKind, end int) {
		if end > start {
			events = append(events, classify(kind, data[start:end:end]))
		}
		start = end
	}
	flushData := func() {
		emit(KindData, iacAt)
	}

	for i, c := range data {
		switch state {
		case stateNormal:
			if c == iac {
				iacAt = i
				state = stateIAC
			}
		case stateIAC:
			switch cmd := Command(c); {
			case cmd == IAC:
				// Escaped literal; it stays in the current data run.
				state = stateNormal
			case cmd == SB:
				flushData()
				state = stateSubOption
			case cmd.single():
				flushData()
				emit(KindCommand, i+1)
				state = stateNormal
			default:
				flushData()
				state = stateNegotiation
			}
		case stateNegotiation:
			emit(KindNegotiation, i+1)
			state = stateNormal
		case stateSubOption:
			state = stateSubData
		case stateSubData:
			if c == iac {
				state = stateSubIAC
			}
		case stateSubIAC:
			if Command(c) == SE {
				emit(KindSubnegotiation, i+1)
				state = stateNormal
			} else {
				// IAC IAC is an escaped payload byte. Anything else is
				// malformed and kept as payload.
				state = stateSubData
			}
		}
	}

	switch state {
	case stateNormal:
		emit(KindData, len(data))
	case stateIAC:
		flushData()
		fallthrough
	default:
		p.stash(data[start:])
	}
	return events
}

// stash appends b to the buffer, reserving room first.
func (p *Parser) stash(b []byte) {
	if short := len(b) - p.buf.Available(); short > 0 {
		p.buf.Reserve(short)
	}
	// Cannot fail: the reserve above made room.
	_ = p.buf.Put(b)
}
