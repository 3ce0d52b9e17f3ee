package telnet_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telwire/pkg/telnet"
)

var _ = Describe("IAC escaping", func() {
	raw := []byte{255, 56, 27, 22, 255, 32}
	escaped := []byte{255, 255, 56, 27, 22, 255, 255, 32}

	It("doubles IAC bytes", func() {
		Expect(telnet.EscapeIAC(raw)).To(Equal(escaped))
	})

	It("collapses doubled IAC bytes", func() {
		Expect(telnet.UnescapeIAC(escaped)).To(Equal(raw))
	})

	It("keeps runs of escaped IACs distinct", func() {
		Expect(telnet.UnescapeIAC([]byte{255, 255, 255, 255})).To(Equal([]byte{255, 255}))
	})

	It("does not modify its input", func() {
		in := []byte{1, 255, 2}
		telnet.EscapeIAC(in)
		Expect(in).To(Equal([]byte{1, 255, 2}))
	})

	It("round trips arbitrary bytes", func() {
		rng := rand.New(rand.NewSource(854))
		for i := 0; i < 200; i++ {
			in := make([]byte, rng.Intn(64))
			for j := range in {
				// Bias toward IAC so runs show up.
				if rng.Intn(3) == 0 {
					in[j] = 255
				} else {
					in[j] = byte(rng.Intn(256))
				}
			}
			Expect(telnet.UnescapeIAC(telnet.EscapeIAC(in))).To(Equal(in))
		}
	})
})
