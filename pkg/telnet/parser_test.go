package telnet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telwire/pkg/telnet"
)

const (
	iac  = byte(telnet.IAC)
	sb   = byte(telnet.SB)
	se   = byte(telnet.SE)
	will = byte(telnet.WILL)
	do   = byte(telnet.DO)
	ga   = byte(telnet.GA)
	gmcp = byte(telnet.GMCP)
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// wire joins the raw bytes of every event.
func wire(events []telnet.Event) []byte {
	var out []byte
	for _, ev := range events {
		out = append(out, ev.Bytes()...)
	}
	return out
}

var _ = Describe("Parser", func() {
	var parser *telnet.Parser

	BeforeEach(func() {
		parser = telnet.NewParser(0)
	})

	It("splits negotiation, data and commands", func() {
		events := parser.Parse([]byte{iac, will, gmcp, 'H', 'i', iac, ga})

		Expect(events).To(HaveLen(3))
		Expect(events[0]).To(Equal(telnet.NegotiationEvent{
			Command: telnet.WILL,
			Option:  telnet.GMCP,
			Raw:     []byte{iac, will, gmcp},
		}))
		Expect(events[1]).To(Equal(telnet.DataEvent{Raw: []byte("Hi")}))
		Expect(events[2]).To(Equal(telnet.CommandEvent{Command: telnet.GA, Raw: []byte{iac, ga}}))
	})

	It("parses a complete subnegotiation", func() {
		events := parser.Parse([]byte{iac, sb, gmcp, 'x', 'y', iac, se})

		Expect(events).To(HaveLen(1))
		sub, ok := events[0].(telnet.SubnegotiationEvent)
		Expect(ok).To(BeTrue())
		Expect(sub.Option).To(Equal(telnet.GMCP))
		Expect(sub.Payload).To(Equal([]byte("xy")))
		Expect(sub.Raw).To(Equal([]byte{iac, sb, gmcp, 'x', 'y', iac, se}))
	})

	It("holds an unterminated subnegotiation until the terminator arrives", func() {
		Expect(parser.Parse([]byte{iac, sb, gmcp, 'x'})).To(BeEmpty())
		Expect(parser.Pending()).To(Equal(4))

		events := parser.Parse([]byte{'y', iac, se})
		Expect(events).To(HaveLen(1))
		Expect(events[0].(telnet.SubnegotiationEvent).Payload).To(Equal([]byte("xy")))
		Expect(parser.Pending()).To(Equal(0))
	})

	It("parses a mixed stream of data and negotiation", func() {
		in := concat(
			[]byte{iac, will, gmcp},
			[]byte("Welcome to a test telnet connection!"),
			[]byte{iac, sb, gmcp},
			[]byte("Core.Hello {}"),
			[]byte{iac, se},
			[]byte("Some more text."),
			[]byte{iac, ga},
		)
		events := parser.Parse(in)

		Expect(events).To(HaveLen(5))
		kinds := []telnet.EventKind{}
		for _, ev := range events {
			kinds = append(kinds, ev.Kind())
		}
		Expect(kinds).To(Equal([]telnet.EventKind{
			telnet.KindNegotiation,
			telnet.KindData,
			telnet.KindSubnegotiation,
			telnet.KindData,
			telnet.KindCommand,
		}))
		Expect(events[2].(telnet.SubnegotiationEvent).Payload).To(Equal([]byte("Core.Hello {}")))
	})

	Context("escaped IAC in data", func() {
		It("keeps the literal inside one data event", func() {
			events := parser.Parse([]byte{'a', iac, iac, 'b'})

			Expect(events).To(HaveLen(1))
			data := events[0].(telnet.DataEvent)
			Expect(data.Raw).To(Equal([]byte{'a', iac, iac, 'b'}))
			Expect(data.Text()).To(Equal([]byte{'a', iac, 'b'}))
		})

		It("treats data starting with an escaped IAC as data", func() {
			events := parser.Parse([]byte{iac, iac, 'z', iac, ga})

			Expect(events).To(HaveLen(2))
			Expect(events[0].Kind()).To(Equal(telnet.KindData))
			Expect(events[1].Kind()).To(Equal(telnet.KindCommand))
		})

		It("keeps escaped IAC inside a subnegotiation payload", func() {
			events := parser.Parse([]byte{iac, sb, gmcp, 1, iac, iac, 2, iac, se})

			Expect(events).To(HaveLen(1))
			sub := events[0].(telnet.SubnegotiationEvent)
			Expect(sub.Payload).To(Equal([]byte{1, iac, iac, 2}))
			Expect(telnet.UnescapeIAC(sub.Payload)).To(Equal([]byte{1, iac, 2}))
		})
	})

	Context("partial sequences", func() {
		It("defers a trailing lone IAC but emits the data before it", func() {
			events := parser.Parse([]byte{'o', 'k', iac})
			Expect(events).To(Equal([]telnet.Event{telnet.DataEvent{Raw: []byte("ok")}}))
			Expect(parser.Pending()).To(Equal(1))

			events = parser.Parse([]byte{ga})
			Expect(events).To(Equal([]telnet.Event{telnet.CommandEvent{Command: telnet.GA, Raw: []byte{iac, ga}}}))
		})

		It("defers a negotiation missing its option", func() {
			Expect(parser.Parse([]byte{iac, do})).To(BeEmpty())

			events := parser.Parse([]byte{byte(telnet.Echo)})
			Expect(events).To(HaveLen(1))
			Expect(events[0].Bytes()).To(Equal([]byte{iac, do, byte(telnet.Echo)}))
		})

		It("does not end a subnegotiation on a bare SE byte", func() {
			Expect(parser.Parse([]byte{iac, sb, gmcp, se, 'a'})).To(BeEmpty())

			events := parser.Parse([]byte{iac, se})
			Expect(events).To(HaveLen(1))
			Expect(events[0].(telnet.SubnegotiationEvent).Payload).To(Equal([]byte{se, 'a'}))
		})
	})

	It("gives the same result however the stream is chunked", func() {
		stream := concat(
			[]byte{iac, will, gmcp},
			[]byte("Hi"), []byte{iac, iac}, []byte("there"),
			[]byte{iac, sb, gmcp}, []byte("Core.Hello {}"), []byte{iac, iac, iac, se},
			[]byte{iac, byte(telnet.NOP)},
			[]byte{iac, do, byte(telnet.Echo)},
			[]byte("bye"),
		)
		whole := wire(telnet.NewParser(0).Parse(stream))
		Expect(whole).To(Equal(stream))

		for size := 1; size <= len(stream); size++ {
			p := telnet.NewParser(4)
			var events []telnet.Event
			for i := 0; i < len(stream); i += size {
				end := min(i+size, len(stream))
				events = append(events, p.Parse(stream[i:end])...)
			}
			Expect(wire(events)).To(Equal(whole), "chunk size %d", size)
			Expect(p.Pending()).To(Equal(0))
		}
	})

	It("emits negotiation and subnegotiation frames of the expected shape", func() {
		events := parser.Parse(concat(
			[]byte{iac, will, 1, iac, byte(telnet.WONT), 2},
			[]byte{iac, sb, 24, byte(telnet.IS), 'x', 't', 'e', 'r', 'm', iac, se},
		))
		for _, ev := range events {
			switch e := ev.(type) {
			case telnet.NegotiationEvent:
				Expect(e.Raw).To(HaveLen(3))
				Expect(e.Raw[0]).To(Equal(iac))
			case telnet.SubnegotiationEvent:
				Expect(e.Raw[:3]).To(Equal([]byte{iac, sb, 24}))
				Expect(e.Raw[len(e.Raw)-2:]).To(Equal([]byte{iac, se}))
			default:
				Fail("unexpected event " + ev.Kind().String())
			}
		}
	})
})
