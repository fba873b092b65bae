package fixture_test

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/sst88/fixture"
)

var _ = Describe("Reader", func() {
	It("should read back what the writer produced", func() {
		buf := &bytes.Buffer{}
		w := fixture.NewWriter(buf)
		Expect(w.WriteHeader(fixture.Header{Source: "src", Opcode: "00", Status: "normal"})).To(Succeed())

		first := sampleRecord()
		second := sampleRecord()
		second.ID = fixture.NewID("00", 1)
		second.Name = "second"
		second.Final.Memory = nil
		Expect(w.WriteRecord(first)).To(Succeed())
		Expect(w.WriteRecord(second)).To(Succeed())
		Expect(w.Flush()).To(Succeed())

		recs, err := fixture.ReadAll(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0]).To(Equal(first))
		Expect(recs[1]).To(Equal(second))
	})

	It("should ignore comments and blank lines", func() {
		text := "# leading comment\n\n" + sampleText + "\n\n# trailing\n"
		recs, err := fixture.ReadAll(strings.NewReader(text))
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(1))
		Expect(recs[0].Name).To(Equal("add byte [ss:bp+di-64h], cl"))
	})

	It("should return io.EOF on empty input", func() {
		r := fixture.NewReader(strings.NewReader("\n#\n"))
		_, err := r.Next()
		Expect(err).To(Equal(io.EOF))
	})

	It("should report the line of a short R line", func() {
		text := "T 00:0 x\nU0000\nR0000 0000\n"
		_, err := fixture.ReadAll(strings.NewReader(text))
		Expect(err).To(HaveOccurred())

		var perr *fixture.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Line).To(Equal(3))
	})

	It("should reject content before the first T line", func() {
		_, err := fixture.ReadAll(strings.NewReader("U0000\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should reject a malformed identifier", func() {
		_, err := fixture.ReadAll(strings.NewReader("T 00x name\n"))
		Expect(err).To(HaveOccurred())
	})
})
