package vectors

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// StatusNormal is the only descriptor status that produces fixtures.
// Other values (undocumented, prefix, fpu, ...) mark opcodes whose
// upstream tests are not meaningful for the harness.
const StatusNormal = "normal"

// DefaultFlagsMask is used when a descriptor carries no flags-mask:
// every flag bit is significant.
const DefaultFlagsMask uint16 = 0xffff

// Descriptor identifies one opcode, or one register variant of an opcode.
type Descriptor struct {
	// Opcode is the encoded opcode name, "<opcode>" or "<opcode>.<reg>".
	Opcode string
	// Status is the upstream status tag.
	Status string
	// FlagsMask selects the flag bits the harness compares.
	FlagsMask uint16
}

// Normal reports whether the descriptor should be turned into a fixture.
func (d Descriptor) Normal() bool {
	return d.Status == StatusNormal
}

// flagsMask accepts both a JSON number and a quoted number. Numbers are
// decimal unless written with an explicit 0x prefix.
type flagsMask uint16

func (m *flagsMask) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flags-mask must be a number: %s", data)
		}
		n = json.Number(s)
	}

	v, err := parseFlagsMask(strings.TrimSpace(n.String()))
	if err != nil {
		return fmt.Errorf("invalid flags-mask %q: %w", n, err)
	}
	*m = flagsMask(v)
	return nil
}

func parseFlagsMask(s string) (uint64, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return strconv.ParseUint(s[2:], 16, 16)
	}
	return strconv.ParseUint(s, 10, 16)
}

type summaryEntry struct {
	Status    string                  `json:"status"`
	FlagsMask *flagsMask              `json:"flags-mask"`
	Reg       map[string]summaryEntry `json:"reg"`
}

func (e summaryEntry) descriptor(opcode string) Descriptor {
	d := Descriptor{
		Opcode:    opcode,
		Status:    e.Status,
		FlagsMask: DefaultFlagsMask,
	}
	if e.FlagsMask != nil {
		d.FlagsMask = uint16(*e.FlagsMask)
	}
	return d
}

// Summary is the decoded summary document.
type Summary struct {
	entries map[string]summaryEntry
}

// ParseSummary decodes a summary document.
func ParseSummary(r io.Reader) (*Summary, error) {
	entries := make(map[string]summaryEntry)
	if err := decodeAll(r, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &Summary{entries: entries}, nil
}

// LoadSummary reads a summary document, gzip-compressed or plain.
func LoadSummary(path string) (*Summary, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return ParseSummary(doc)
}

// Len returns the number of top-level opcodes in the summary.
func (s *Summary) Len() int {
	return len(s.entries)
}

// Flatten expands the summary into a list of descriptors. An opcode with a
// nested reg mapping yields one descriptor per register variant. Opcodes
// are returned in lexical order, variants in lexical order within their
// opcode.
//
// Flatten fails if two entries encode to the same opcode name, since the
// name is the prefix of every fixture identifier.
func (s *Summary) Flatten() ([]Descriptor, error) {
	opcodes := sortedKeys(s.entries)

	var descs []Descriptor
	seen := make(map[string]bool, len(opcodes))
	add := func(d Descriptor) error {
		if seen[d.Opcode] {
			return fmt.Errorf("duplicate opcode %q in summary", d.Opcode)
		}
		seen[d.Opcode] = true
		descs = append(descs, d)
		return nil
	}

	for _, opcode := range opcodes {
		entry := s.entries[opcode]

		if entry.Reg == nil {
			if err := add(entry.descriptor(opcode)); err != nil {
				return nil, err
			}
			continue
		}

		for _, reg := range sortedKeys(entry.Reg) {
			variant := entry.Reg[reg].descriptor(opcode + "." + reg)
			if err := add(variant); err != nil {
				return nil, err
			}
		}
	}

	return descs, nil
}

func sortedKeys(m map[string]summaryEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
