// Package filter reduces fixture files to the records named in a harness
// log.
//
// The harness prints one result line per test case:
//
//	[PASS]   00:17 add byte [ss:bp+di-64h], cl
//	[FAIL]   D0.4:3 shl al, 1
//	[WARN]   Register AX has value 0x12, expected 0x13
//
// usually wrapped in terminal colour codes. CollectIDs turns such a log into
// an IDSet; an Extractor then copies the matching records out of one or
// more fixture files.
package filter

import (
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/sarchlab/sst88/fixture"
)

// Tag is the result marker at the start of a harness log line.
type Tag int

const (
	// TagNone marks a line without a recognised result marker.
	TagNone Tag = iota
	TagPass
	TagFail
	TagWarn
)

// tagWidth is the width of every result marker.
const tagWidth = 6

var tagNames = map[string]Tag{
	"[PASS]": TagPass,
	"[FAIL]": TagFail,
	"[WARN]": TagWarn,
}

func (t Tag) String() string {
	switch t {
	case TagPass:
		return "pass"
	case TagFail:
		return "fail"
	case TagWarn:
		return "warn"
	default:
		return "none"
	}
}

// Clean removes terminal escape sequences and surrounding whitespace.
func Clean(line string) string {
	return strings.TrimSpace(ansi.Strip(line))
}

// ClassifyLine cleans a log line and splits off its result marker. For
// pass and fail lines the returned text starts after the marker and any
// whitespace following it; for other lines it is the cleaned line.
func ClassifyLine(line string) (Tag, string) {
	line = Clean(line)
	if len(line) < tagWidth {
		return TagNone, line
	}

	tag, ok := tagNames[line[:tagWidth]]
	if !ok {
		return TagNone, line
	}
	if tag == TagWarn {
		return TagWarn, line
	}
	return tag, strings.TrimLeftFunc(line[tagWidth:], unicode.IsSpace)
}

// ParseLine extracts the test identifier from a harness log line. Warn
// lines, lines without whitespace and first tokens that are not
// "<opcode>:<integer>" yield false.
func ParseLine(line string) (fixture.ID, bool) {
	tag, rest := ClassifyLine(line)
	if tag == TagWarn {
		return "", false
	}

	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return "", false
	}

	id, err := fixture.ParseID(strings.TrimRightFunc(rest[:end], unicode.IsSpace))
	if err != nil {
		return "", false
	}
	return id, true
}

// IDSet is a set of record identifiers.
type IDSet map[fixture.ID]struct{}

// Add inserts id.
func (s IDSet) Add(id fixture.ID) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id fixture.ID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the identifiers in lexical order.
func (s IDSet) Sorted() []fixture.ID {
	ids := make([]fixture.ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...fixture.ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// CollectIDs reads a whole harness log and returns the identifiers of its
// result lines. Only read errors are returned; lines that do not parse,
// whatever their length, are skipped.
func CollectIDs(r io.Reader) (IDSet, error) {
	ids := make(IDSet)

	err := eachLine(r, func(line string) error {
		if id, ok := ParseLine(line); ok {
			ids.Add(id)
		}
		return nil
	})

	return ids, err
}
