package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/sst88/fixture"
)

// State is the extractor state.
type State int

const (
	// Idle: lines are dropped until a matching header arrives.
	Idle State = iota
	// Emitting: lines are copied until the record's blank separator.
	Emitting
)

func (s State) String() string {
	if s == Emitting {
		return "emitting"
	}
	return "idle"
}

// LineKind is what the extractor sees in a fixture line.
type LineKind int

const (
	LineOther LineKind = iota
	LineBlank
	LineHeader
)

// headerMarker starts every record.
const headerMarker = "T "

// ClassifyFixtureLine reports the kind of a trimmed fixture line.
func ClassifyFixtureLine(line string) LineKind {
	switch {
	case line == "":
		return LineBlank
	case strings.HasPrefix(line, headerMarker):
		return LineHeader
	default:
		return LineOther
	}
}

// headerID returns the second field of a header line.
func headerID(line string) fixture.ID {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fixture.ID(fields[1])
}

// Extractor copies the fixture records whose identifiers are in a set. It
// works on one line at a time and never buffers a record.
type Extractor struct {
	ids     IDSet
	w       *bufio.Writer
	state   State
	current fixture.ID
	emitted int
	err     error

	// OnUnterminated, if set, is called when a header arrives while a
	// record is still being emitted. The open record is closed with a
	// blank line before the header is handled.
	OnUnterminated func(open, next fixture.ID)
}

// NewExtractor creates an Extractor writing matched records to w.
func NewExtractor(ids IDSet, w io.Writer) *Extractor {
	return &Extractor{ids: ids, w: bufio.NewWriter(w)}
}

// State returns the current state.
func (x *Extractor) State() State {
	return x.state
}

// Emitted returns the number of records started so far.
func (x *Extractor) Emitted() int {
	return x.emitted
}

func (x *Extractor) writeLine(s string) {
	if x.err != nil {
		return
	}
	if _, err := x.w.WriteString(s); err != nil {
		x.err = err
		return
	}
	x.err = x.w.WriteByte('\n')
}

// closeRecord writes the blank separator of the open record.
func (x *Extractor) closeRecord() {
	x.writeLine("")
	x.state = Idle
	x.current = ""
}

// Feed processes one fixture line. Surrounding whitespace is ignored.
func (x *Extractor) Feed(line string) error {
	line = strings.TrimSpace(line)

	switch ClassifyFixtureLine(line) {
	case LineBlank:
		if x.state == Emitting {
			x.closeRecord()
		}

	case LineHeader:
		id := headerID(line)
		if x.state == Emitting {
			if x.OnUnterminated != nil {
				x.OnUnterminated(x.current, id)
			}
			x.closeRecord()
		}
		if !x.ids.Has(id) {
			x.state = Idle
			break
		}
		x.state = Emitting
		x.current = id
		x.emitted++
		x.writeLine(line)

	case LineOther:
		if x.state == Emitting {
			x.writeLine(line)
		}
	}

	return x.err
}

// Extract feeds every line of r and then closes a record left open at the
// end of the input.
func (x *Extractor) Extract(r io.Reader) error {
	if err := eachLine(r, x.Feed); err != nil {
		return err
	}

	if x.state == Emitting {
		x.closeRecord()
	}
	return x.err
}

// ExtractFile runs Extract on the named file.
func (x *Extractor) ExtractFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := x.Extract(f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// Flush writes any buffered output.
func (x *Extractor) Flush() error {
	if x.err != nil {
		return x.err
	}
	x.err = x.w.Flush()
	return x.err
}

// ExtractFiles copies the records of paths whose identifiers are in ids to
// w, file by file in the order given.
func ExtractFiles(ids IDSet, w io.Writer, paths ...string) (int, error) {
	x := NewExtractor(ids, w)
	for _, path := range paths {
		if err := x.ExtractFile(path); err != nil {
			_ = x.Flush()
			return x.Emitted(), err
		}
	}
	return x.Emitted(), x.Flush()
}
