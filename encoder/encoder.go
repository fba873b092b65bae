// Package encoder converts the upstream single-step corpus into fixture
// files, one per opcode.
//
// Usage:
//
//	enc := encoder.New(encoder.DefaultConfig(), logger)
//	summary, err := enc.Run()
//
// A collection that cannot be opened or decoded is reported and skipped;
// the rest of the batch still runs. Failing to write an output file stops
// the batch.
package encoder

import (
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/sst88/fixture"
	"github.com/sarchlab/sst88/vectors"
)

// SourceError reports a collection that could not be read.
type SourceError struct {
	Opcode string
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to open %s for opcode %s: %v", e.Path, e.Opcode, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Summary describes the outcome of a batch run.
type Summary struct {
	// Processed lists the opcodes that produced a fixture file.
	Processed []string
	// Skipped lists the opcodes whose status is not normal.
	Skipped []string
	// Failed lists the opcodes whose collection could not be read.
	Failed []string
	// Records is the total number of records written.
	Records int
}

// Encoder runs the conversion.
type Encoder struct {
	config *Config
	logger *zap.Logger
}

// New creates an Encoder working on a copy of config. A nil logger
// discards all output.
func New(config *Config, logger *zap.Logger) *Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{config: config.Clone(), logger: logger}
}

// Run converts every normal opcode in the summary document.
func (e *Encoder) Run() (*Summary, error) {
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid encoder config: %w", err)
	}

	doc, err := vectors.LoadSummary(e.config.SummaryPath())
	if err != nil {
		return nil, err
	}

	descs, err := doc.Flatten()
	if err != nil {
		return nil, err
	}
	if ce := e.logger.Check(zapcore.DebugLevel, "Flattened summary"); ce != nil {
		ce.Write(zap.Int("count", len(descs)), zap.String("descriptors", spew.Sdump(descs)))
	}

	descs = e.selectOpcodes(descs)

	summary := &Summary{}
	for _, d := range descs {
		if !d.Normal() {
			e.logger.Debug("Skipping opcode",
				zap.String("opcode", d.Opcode),
				zap.String("status", d.Status))
			summary.Skipped = append(summary.Skipped, d.Opcode)
			continue
		}

		e.logger.Info(fmt.Sprintf("Processing opcode %s...", d.Opcode))

		n, err := e.EncodeOpcode(d)
		var srcErr *SourceError
		if errors.As(err, &srcErr) {
			e.logger.Error(fmt.Sprintf("Failed to open %s for opcode %s", srcErr.Path, srcErr.Opcode),
				zap.Error(srcErr.Err))
			summary.Failed = append(summary.Failed, d.Opcode)
			continue
		}
		if err != nil {
			return summary, err
		}

		summary.Processed = append(summary.Processed, d.Opcode)
		summary.Records += n
	}

	return summary, nil
}

// selectOpcodes applies the Opcodes restriction from the config.
func (e *Encoder) selectOpcodes(descs []vectors.Descriptor) []vectors.Descriptor {
	if len(e.config.Opcodes) == 0 {
		return descs
	}

	want := make(map[string]bool, len(e.config.Opcodes))
	for _, op := range e.config.Opcodes {
		want[op] = true
	}

	var selected []vectors.Descriptor
	for _, d := range descs {
		if want[d.Opcode] {
			selected = append(selected, d)
			delete(want, d.Opcode)
		}
	}
	for op := range want {
		e.logger.Warn("Opcode not in summary", zap.String("opcode", op))
	}

	return selected
}

// EncodeOpcode writes the fixture file for one descriptor and returns the
// number of records written. The status is not checked. A collection
// that cannot be read yields a *SourceError and no output file.
func (e *Encoder) EncodeOpcode(d vectors.Descriptor) (int, error) {
	src := e.config.SourcePath(d.Opcode)

	tests, err := vectors.LoadTestCases(src)
	if err != nil {
		return 0, &SourceError{Opcode: d.Opcode, Path: src, Err: err}
	}

	out := e.config.OutputPath(d.Opcode)
	if err := writeFixture(out, src, d, tests); err != nil {
		return 0, err
	}

	e.logger.Debug("Wrote fixture",
		zap.String("opcode", d.Opcode),
		zap.String("path", out),
		zap.Int("records", len(tests)))

	return len(tests), nil
}

func writeFixture(path, src string, d vectors.Descriptor, tests []vectors.TestCase) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create fixture file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close fixture file: %w", cerr)
		}
	}()

	w := fixture.NewWriter(f)
	if err := w.WriteHeader(fixture.Header{Source: src, Opcode: d.Opcode, Status: d.Status}); err != nil {
		return fmt.Errorf("failed to write fixture header: %w", err)
	}

	for i := range tests {
		if err := w.WriteRecord(newRecord(d, i, &tests[i])); err != nil {
			return fmt.Errorf("failed to write record %d of %s: %w", i, d.Opcode, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write fixture file: %w", err)
	}
	return nil
}

// newRecord builds the record for the index-th test case of an opcode.
func newRecord(d vectors.Descriptor, index int, tc *vectors.TestCase) *fixture.Record {
	return &fixture.Record{
		ID:        fixture.NewID(d.Opcode, index),
		Name:      tc.Name,
		FlagsMask: d.FlagsMask,
		Initial:   newState(&tc.Initial),
		Final:     newState(&tc.Final),
	}
}

func newState(s *vectors.State) fixture.State {
	st := fixture.State{Regs: fixture.NewRegisters(s.Regs)}
	for _, p := range s.RAM {
		st.Memory = append(st.Memory, fixture.Patch{Addr: p.Addr, Value: p.Value})
	}
	return st
}
