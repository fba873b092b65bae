package fixture

import (
	"bufio"
	"fmt"
	"io"
)

// Writer renders records in the fixture format. Output is buffered; call
// Flush when done.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (fw *Writer) printf(format string, args ...any) {
	if fw.err != nil {
		return
	}
	_, fw.err = fmt.Fprintf(fw.w, format, args...)
}

// WriteHeader writes the metadata comment block. The harness ignores it;
// it records where the records came from.
func (fw *Writer) WriteHeader(h Header) error {
	fw.printf("\n#\n")
	fw.printf("# Automatically generated from %s\n", h.Source)
	fw.printf("# Opcode: %s\n", h.Opcode)
	fw.printf("# Status: %s\n", h.Status)
	fw.printf("#\n\n\n")
	return fw.err
}

// WriteRecord writes one record followed by its blank separator line.
func (fw *Writer) WriteRecord(rec *Record) error {
	fw.printf("T %s %s\n", rec.ID, rec.Name)
	fw.printf("U%04x\n", rec.FlagsMask)
	fw.writeState(&rec.Initial)
	fw.printf("X\n")
	fw.writeState(&rec.Final)
	fw.printf("\n")
	return fw.err
}

func (fw *Writer) writeState(s *State) {
	fw.printf("R%s\n", s.Regs)
	for _, p := range s.Memory {
		fw.printf("@%#x %#x\n", p.Addr, p.Value)
	}
}

// Flush writes any buffered output.
func (fw *Writer) Flush() error {
	if fw.err != nil {
		return fw.err
	}
	fw.err = fw.w.Flush()
	return fw.err
}
