package telnet_test

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"telwire/internal/app"
	"telwire/internal/network/telnet"
	proto "telwire/pkg/telnet"
)

const (
	iac = byte(proto.IAC)
	sb  = byte(proto.SB)
	se  = byte(proto.SE)
)

var _ = Describe("Telnet Protocol", func() {
	var (
		serverConn net.Conn
		clientConn net.Conn
		connection *telnet.Connection
		table      *proto.Table
	)

	// drain keeps the server side reading so replies get written
	drain := func() {
		go func() {
			defer GinkgoRecover()
			buf := make([]byte, 1024)
			for {
				if _, err := connection.Read(buf); err != nil {
					return
				}
			}
		}()
	}

	expectFrame := func(expected ...byte) {
		buf := make([]byte, len(expected))
		_, err := io.ReadFull(clientConn, buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal(expected))
	}

	BeforeEach(func() {
		table = proto.NewTable()
		table.Support(proto.Echo)
		table.SupportRemote(proto.NAWS)
		table.SupportRemote(proto.TType)

		serverConn, clientConn = net.Pipe()
		connection = telnet.NewConnection(serverConn, app.Logger, proto.WithTable(table))

		// Set deadlines to prevent infinite hangs
		serverConn.SetDeadline(time.Now().Add(2 * time.Second))
		clientConn.SetDeadline(time.Now().Add(2 * time.Second))
	})

	AfterEach(func() {
		connection.Close()
		clientConn.Close()
	})

	Context("Negotiation", func() {
		It("should respond to DO ECHO with WILL ECHO", func() {
			drain()

			_, err := clientConn.Write([]byte{iac, byte(proto.DO), byte(proto.Echo)})
			Expect(err).NotTo(HaveOccurred())

			expectFrame(iac, byte(proto.WILL), byte(proto.Echo))

			Eventually(func() bool {
				return connection.IsLocalOptionEnabled(proto.Echo)
			}).Should(BeTrue())
		})

		It("should answer according to the table", func() {
			drain()

			_, err := clientConn.Write([]byte{iac, byte(proto.WILL), byte(proto.Echo)})
			Expect(err).NotTo(HaveOccurred())
			expectFrame(iac, byte(proto.DO), byte(proto.Echo))

			_, err = clientConn.Write([]byte{iac, byte(proto.DO), byte(proto.NAWS)})
			Expect(err).NotTo(HaveOccurred())
			expectFrame(iac, byte(proto.WONT), byte(proto.NAWS))
			Expect(connection.IsLocalOptionEnabled(proto.NAWS)).To(BeFalse())
		})

		It("should respond to WILL NAWS with DO NAWS", func() {
			drain()

			_, err := clientConn.Write([]byte{iac, byte(proto.WILL), byte(proto.NAWS)})
			Expect(err).NotTo(HaveOccurred())

			expectFrame(iac, byte(proto.DO), byte(proto.NAWS))

			Eventually(func() bool {
				return connection.IsRemoteOptionEnabled(proto.NAWS)
			}).Should(BeTrue())
		})

		It("should ask for the terminal type once TTYPE is enabled", func() {
			drain()

			_, err := clientConn.Write([]byte{iac, byte(proto.WILL), byte(proto.TType)})
			Expect(err).NotTo(HaveOccurred())

			expectFrame(iac, byte(proto.DO), byte(proto.TType))
			expectFrame(iac, sb, byte(proto.TType), proto.SEND, iac, se)

			_, err = clientConn.Write(append([]byte{iac, sb, byte(proto.TType), proto.IS}, append([]byte("XTERM"), iac, se)...))
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() string {
				return connection.TerminalInfo().Type
			}).Should(Equal("XTERM"))
		})

		It("should send offers through the session table", func() {
			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				Expect(connection.Will(proto.Echo)).To(Succeed())
				Expect(connection.Do(proto.NAWS)).To(Succeed())
				// Unsupported offers are not sent
				Expect(connection.Will(proto.NAWS)).To(Succeed())
			}()

			expectFrame(iac, byte(proto.WILL), byte(proto.Echo))
			expectFrame(iac, byte(proto.DO), byte(proto.NAWS))
			Eventually(done).Should(BeClosed())

			Expect(connection.Options().Option(proto.Echo).LocalEnabled()).To(BeTrue())
		})

		It("should log each inbound negotiation once", func() {
			logs := gbytes.NewBuffer()
			logged := telnet.NewConnection(serverConn, slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})), proto.WithTable(table))
			go func() {
				defer GinkgoRecover()
				buf := make([]byte, 1024)
				for {
					if _, err := logged.Read(buf); err != nil {
						return
					}
				}
			}()

			_, err := clientConn.Write([]byte{iac, byte(proto.WILL), byte(proto.NAWS)})
			Expect(err).NotTo(HaveOccurred())
			expectFrame(iac, byte(proto.DO), byte(proto.NAWS))

			Eventually(logs).Should(gbytes.Say(`Telnet command \[OUT\]`))
			Expect(strings.Count(string(logs.Contents()), "[IN]")).To(Equal(1))
		})

		It("should handle AYT command", func() {
			drain()

			_, err := clientConn.Write([]byte{iac, byte(proto.AYT)})
			Expect(err).NotTo(HaveOccurred())

			expectFrame([]byte("\r\n[Yes]\r\n")...)
		})
	})

	Context("Sub-negotiation", func() {
		It("should parse NAWS data", func() {
			drain()

			// IAC SB NAWS 0 80 0 24 IAC SE
			data := []byte{
				iac, sb, byte(proto.NAWS),
				0, 80, 0, 24,
				iac, se,
			}
			_, err := clientConn.Write(data)
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() int {
				return connection.TerminalInfo().Width
			}, 1*time.Second).Should(Equal(80))

			Expect(connection.TerminalInfo().Height).To(Equal(24))
		})

		It("should unescape IAC inside NAWS dimensions", func() {
			drain()

			// Width 255 is sent as IAC IAC
			_, err := clientConn.Write([]byte{iac, sb, byte(proto.NAWS), 0, iac, iac, 0, 40, iac, se})
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() int {
				return connection.TerminalInfo().Width
			}).Should(Equal(255))
			Expect(connection.TerminalInfo().Height).To(Equal(40))
		})
	})

	Context("Data", func() {
		It("should deliver plain data split across writes", func() {
			go func() {
				defer GinkgoRecover()
				_, _ = clientConn.Write([]byte("hel"))
				_, _ = clientConn.Write([]byte{iac})
				_, _ = clientConn.Write([]byte{iac, 'l', 'o'})
			}()

			buf := make([]byte, 16)
			var got []byte
			for len(got) < 6 {
				n, err := connection.Read(buf)
				Expect(err).NotTo(HaveOccurred())
				got = append(got, buf[:n]...)
			}
			Expect(got).To(Equal([]byte{'h', 'e', 'l', iac, 'l', 'o'}))
		})

		It("should escape IAC on write", func() {
			go func() {
				defer GinkgoRecover()
				n, err := connection.Write([]byte{'a', iac, 'b'})
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(3))
			}()

			expectFrame('a', iac, iac, 'b')
		})
	})
})
