package bitflags_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telwire/pkg/bitflags"
)

type color uint8

const (
	red color = iota
	green
	blue
)

var _ = Describe("Flags", func() {
	It("starts empty", func() {
		var f bitflags.Flags[color]
		Expect(f.Empty()).To(BeTrue())
		Expect(f.Has(red)).To(BeFalse())
	})

	It("sets and unsets individual flags", func() {
		var f bitflags.Flags[color]
		f.Set(green)
		Expect(f.Has(green)).To(BeTrue())
		Expect(f.Has(red)).To(BeFalse())
		Expect(f.Bits()).To(Equal(uint8(0b10)))

		f.Unset(green)
		Expect(f.Empty()).To(BeTrue())
	})

	It("builds sets from a flag list", func() {
		f := bitflags.Of(red, blue)
		Expect(f.Has(red)).To(BeTrue())
		Expect(f.Has(green)).To(BeFalse())
		Expect(f.Has(blue)).To(BeTrue())
		Expect(bitflags.From[color](f.Bits())).To(Equal(f))
	})

	It("toggles", func() {
		var f bitflags.Flags[color]
		f.Toggle(blue, true)
		Expect(f.Has(blue)).To(BeTrue())
		f.Toggle(blue, false)
		Expect(f.Has(blue)).To(BeFalse())
	})

	It("returns modified copies without touching the receiver", func() {
		f := bitflags.Of(red)
		g := f.With(green).Without(red)
		Expect(f.Has(red)).To(BeTrue())
		Expect(g.Has(red)).To(BeFalse())
		Expect(g.Has(green)).To(BeTrue())
	})
})
