package encoder_test

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sarchlab/sst88/encoder"
	"github.com/sarchlab/sst88/fixture"
	"github.com/sarchlab/sst88/vectors"
)

const summaryJSON = `{
	"00": {"status": "normal", "flags-mask": 2261},
	"0F": {"status": "undocumented"},
	"D0": {"reg": {
		"4": {"status": "normal"},
		"6": {"status": "undocumented"}
	}},
	"F6": {"status": "normal"}
}`

func collection(n int) string {
	var parts []string
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf(`{
			"name": "test %d",
			"initial": {"regs": {"ax": %d, "ip": 256}, "ram": [[1024, %d], [1025, 1]]},
			"final": {"regs": {"ax": %d}, "ram": [[1024, 255]]},
			"idx": %d
		}`, i, i, i, i+1, 100+i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func writeGzip(path string, content string) {
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = f.Close() }()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	Expect(err).NotTo(HaveOccurred())
	Expect(gz.Close()).To(Succeed())
}

var _ = Describe("Encoder", func() {
	var (
		srcDir string
		outDir string
		config *encoder.Config
	)

	BeforeEach(func() {
		var err error
		srcDir, err = os.MkdirTemp("", "encoder-src")
		Expect(err).NotTo(HaveOccurred())
		outDir, err = os.MkdirTemp("", "encoder-out")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(srcDir, "8088.json"), []byte(summaryJSON), 0644)).To(Succeed())
		writeGzip(filepath.Join(srcDir, "00.json.gz"), collection(3))
		writeGzip(filepath.Join(srcDir, "D0.4.json.gz"), collection(2))
		writeGzip(filepath.Join(srcDir, "0F.json.gz"), collection(1))

		config = encoder.DefaultConfig()
		config.SourceRoot = srcDir
		config.OutputDir = outDir
	})

	AfterEach(func() {
		_ = os.RemoveAll(srcDir)
		_ = os.RemoveAll(outDir)
	})

	readFixture := func(opcode string) []*fixture.Record {
		f, err := os.Open(filepath.Join(outDir, "opcode-"+opcode+".dat"))
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = f.Close() }()

		recs, err := fixture.ReadAll(f)
		Expect(err).NotTo(HaveOccurred())
		return recs
	}

	Describe("Run", func() {
		It("should produce one file per normal opcode", func() {
			summary, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Processed).To(Equal([]string{"00", "D0.4"}))
			Expect(summary.Skipped).To(Equal([]string{"0F", "D0.6"}))
			Expect(summary.Failed).To(Equal([]string{"F6"}))
			Expect(summary.Records).To(Equal(5))

			entries, err := os.ReadDir(outDir)
			Expect(err).NotTo(HaveOccurred())
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			Expect(names).To(ConsistOf("opcode-00.dat", "opcode-D0.4.dat"))
		})

		It("should not produce output for opcodes that are not normal", func() {
			_, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(filepath.Join(outDir, "opcode-0F.dat"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("should number records by position", func() {
			_, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())

			recs := readFixture("00")
			Expect(recs).To(HaveLen(3))
			for i, rec := range recs {
				Expect(rec.ID.Opcode()).To(Equal("00"))
				Expect(rec.ID.Index()).To(Equal(i))
				Expect(rec.Name).To(Equal(fmt.Sprintf("test %d", i)))
			}
		})

		It("should carry the flags mask and register defaults", func() {
			_, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())

			rec := readFixture("00")[2]
			Expect(rec.FlagsMask).To(Equal(uint16(2261)))
			Expect(rec.Initial.Regs[1]).To(Equal(uint16(2)))
			Expect(rec.Initial.Regs[2]).To(Equal(uint16(0)))
			Expect(rec.Initial.Regs[9]).To(Equal(uint16(256)))
			Expect(rec.Final.Regs[1]).To(Equal(uint16(3)))
			Expect(rec.Final.Regs[9]).To(Equal(uint16(0)))
			Expect(rec.Initial.Memory).To(Equal([]fixture.Patch{{Addr: 1024, Value: 2}, {Addr: 1025, Value: 1}}))

			variant := readFixture("D0.4")[0]
			Expect(variant.ID).To(Equal(fixture.ID("D0.4:0")))
			Expect(variant.FlagsMask).To(Equal(uint16(0xffff)))
		})

		It("should write the metadata header", func() {
			_, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(outDir, "opcode-00.dat"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(HavePrefix("\n#\n# Automatically generated from " +
				filepath.Join(srcDir, "00.json.gz") + "\n# Opcode: 00\n# Status: normal\n#\n\n\nT 00:0 test 0\n"))
			Expect(string(data)).To(HaveSuffix("@0x400 0xff\n\n"))
		})

		It("should produce byte-identical output when run twice", func() {
			_, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())
			first, err := os.ReadFile(filepath.Join(outDir, "opcode-00.dat"))
			Expect(err).NotTo(HaveOccurred())

			_, err = encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())
			second, err := os.ReadFile(filepath.Join(outDir, "opcode-00.dat"))
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("should log progress and the missing collection", func() {
			core, logs := observer.New(zap.InfoLevel)

			_, err := encoder.New(config, zap.New(core)).Run()
			Expect(err).NotTo(HaveOccurred())

			Expect(logs.FilterMessage("Processing opcode 00...").Len()).To(Equal(1))
			failures := logs.FilterMessageSnippet("Failed to open").All()
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Message).To(ContainSubstring("F6.json.gz"))
			Expect(failures[0].Message).To(ContainSubstring("opcode F6"))
		})

		It("should skip a corrupt collection and continue", func() {
			Expect(os.WriteFile(filepath.Join(srcDir, "00.json.gz"), []byte("garbage"), 0644)).To(Succeed())

			summary, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Failed).To(ContainElement("00"))
			Expect(summary.Processed).To(Equal([]string{"D0.4"}))
		})

		It("should skip a collection whose gzip checksum does not match", func() {
			path := filepath.Join(srcDir, "00.json.gz")
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			data[len(data)-8] ^= 0xff
			Expect(os.WriteFile(path, data, 0644)).To(Succeed())

			summary, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Failed).To(ContainElement("00"))
			Expect(summary.Processed).To(Equal([]string{"D0.4"}))
			Expect(filepath.Join(outDir, "opcode-00.dat")).NotTo(BeAnExistingFile())
		})

		It("should not see config changes made after New", func() {
			enc := encoder.New(config, nil)
			config.Opcodes = []string{"D0.4"}
			config.OutputDir = filepath.Join(outDir, "missing")

			summary, err := enc.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Processed).To(Equal([]string{"00", "D0.4"}))
		})

		It("should restrict the run to the configured opcodes", func() {
			config.Opcodes = []string{"D0.4", "77"}

			summary, err := encoder.New(config, nil).Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Processed).To(Equal([]string{"D0.4"}))
			Expect(summary.Failed).To(BeEmpty())
		})

		It("should fail when the summary is missing", func() {
			Expect(os.Remove(filepath.Join(srcDir, "8088.json"))).To(Succeed())

			_, err := encoder.New(config, nil).Run()
			Expect(err).To(HaveOccurred())
		})

		It("should fail when the output directory is missing", func() {
			config.OutputDir = filepath.Join(outDir, "does", "not", "exist")

			_, err := encoder.New(config, nil).Run()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to create fixture file"))
		})
	})

	Describe("EncodeOpcode", func() {
		It("should return a SourceError for a missing collection", func() {
			_, err := encoder.New(config, nil).EncodeOpcode(vectors.Descriptor{Opcode: "F6", Status: "normal"})
			Expect(err).To(HaveOccurred())

			var srcErr *encoder.SourceError
			Expect(err).To(BeAssignableToTypeOf(srcErr))
			Expect(err.Error()).To(ContainSubstring("for opcode F6"))
		})

		It("should encode regardless of status", func() {
			n, err := encoder.New(config, nil).EncodeOpcode(vectors.Descriptor{Opcode: "0F", Status: "undocumented"})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})
	})
})
