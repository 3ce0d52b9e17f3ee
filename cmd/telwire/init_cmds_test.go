package main

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("init", func() {
	DescribeTable("validateInt",
		func(input string, ok bool) {
			err := validateInt(1, 65535)(input)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(HaveOccurred())
			}
		},
		Entry("lower bound", "1", true),
		Entry("upper bound", "65535", true),
		Entry("surrounding spaces", " 2323 ", true),
		Entry("below range", "0", false),
		Entry("above range", "65536", false),
		Entry("not a number", "telnet", false),
	)

	It("reports the range it enforces", func() {
		Expect(validateInt(1, 1000)("5000")).To(MatchError("must be between 1 and 1000"))
	})

	It("sanitizes config names", func() {
		Expect(sanitizeFilename("My Board!")).To(Equal("my_board"))
	})
})
