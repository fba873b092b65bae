package vectors

import (
	"encoding/json"
	"fmt"
	"io"
)

// Patch is a single byte of memory state: a write during setup, or an
// expected value during verification.
type Patch struct {
	Addr  uint32
	Value uint8
}

// UnmarshalJSON decodes the upstream [address, value] pair form.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var pair []uint32
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid ram entry %s: %w", data, err)
	}
	if len(pair) < 2 {
		return fmt.Errorf("invalid ram entry %s: want [address, value]", data)
	}
	if pair[1] > 0xff {
		return fmt.Errorf("invalid ram entry %s: value exceeds a byte", data)
	}

	p.Addr = pair[0]
	p.Value = uint8(pair[1])
	return nil
}

// State is the CPU and memory state on one side of a test case.
type State struct {
	// Regs holds only the registers the document names; missing registers
	// are zero.
	Regs map[string]uint16 `json:"regs"`
	// RAM is kept in document order; addresses may repeat.
	RAM []Patch `json:"ram"`
}

// TestCase is one single-instruction scenario.
type TestCase struct {
	Name    string `json:"name"`
	Initial State  `json:"initial"`
	Final   State  `json:"final"`
}

// ParseTestCases decodes a test-case collection (a JSON array). r is read
// to the end; trailing data after the array is an error.
func ParseTestCases(r io.Reader) ([]TestCase, error) {
	var tests []TestCase
	if err := decodeAll(r, &tests); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return tests, nil
}

// LoadTestCases reads a test-case collection file. The file is normally
// gzip-compressed; plain JSON is accepted as well.
func LoadTestCases(path string) ([]TestCase, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open test file: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return ParseTestCases(doc)
}
