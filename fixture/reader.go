package fixture

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports a malformed fixture line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Reader parses fixture records the way the harness does.
type Reader struct {
	sc      *bufio.Scanner
	line    int
	pending string
	hasNext bool
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// nextLine returns the next non-empty line with comments removed.
func (fr *Reader) nextLine() (string, bool) {
	for fr.sc.Scan() {
		fr.line++
		line := fr.sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func (fr *Reader) errorf(format string, args ...any) error {
	return &ParseError{Line: fr.line, Msg: fmt.Sprintf(format, args...)}
}

// Next returns the next record, or io.EOF when the input is exhausted.
func (fr *Reader) Next() (*Record, error) {
	line, ok := fr.pending, fr.hasNext
	fr.hasNext = false
	if !ok {
		line, ok = fr.nextLine()
	}
	if !ok {
		if err := fr.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	if line[0] != 'T' {
		return nil, fr.errorf("expected T line, got %q", line)
	}

	rec, err := fr.parseHeader(line)
	if err != nil {
		return nil, err
	}

	executed := false
	seenRegs := false
	for {
		line, ok = fr.nextLine()
		if !ok {
			break
		}

		switch line[0] {
		case 'T':
			fr.pending, fr.hasNext = line, true
			return rec, nil

		case 'U':
			v, err := strconv.ParseUint(strings.TrimSpace(line[1:]), 16, 16)
			if err != nil {
				return nil, fr.errorf("invalid flags mask %q", line)
			}
			rec.FlagsMask = uint16(v)

		case 'R':
			regs, err := parseRegisters(line[1:])
			if err != nil {
				return nil, fr.errorf("%v", err)
			}
			if executed {
				rec.Final.Regs = regs
			} else {
				rec.Initial.Regs = regs
			}
			seenRegs = true

		case '@':
			p, err := parsePatch(line[1:])
			if err != nil {
				return nil, fr.errorf("%v", err)
			}
			if executed {
				rec.Final.Memory = append(rec.Final.Memory, p)
			} else {
				rec.Initial.Memory = append(rec.Initial.Memory, p)
			}

		case 'X':
			if !seenRegs {
				return nil, fr.errorf("X before initial registers in %s", rec.ID)
			}
			executed = true

		default:
			return nil, fr.errorf("unknown line %q", line)
		}
	}

	if err := fr.sc.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (fr *Reader) parseHeader(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "T" {
		return nil, fr.errorf("malformed T line %q", line)
	}

	id, err := ParseID(fields[1])
	if err != nil {
		return nil, fr.errorf("%v", err)
	}

	rest := strings.TrimSpace(line[1:])
	name := strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))

	return &Record{ID: id, Name: name, FlagsMask: 0xffff}, nil
}

func parseRegisters(s string) (Registers, error) {
	var regs Registers

	fields := strings.Fields(s)
	if len(fields) != NumRegisters {
		return regs, fmt.Errorf("R line has %d values, want %d", len(fields), NumRegisters)
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 16)
		if err != nil {
			return regs, fmt.Errorf("invalid %s value %q", RegisterOrder[i], f)
		}
		regs[i] = uint16(v)
	}
	return regs, nil
}

func parsePatch(s string) (Patch, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Patch{}, fmt.Errorf("memory line needs address and value: %q", s)
	}
	addr, err := strconv.ParseUint(fields[0], 0, 32)
	if err != nil {
		return Patch{}, fmt.Errorf("invalid address %q", fields[0])
	}
	val, err := strconv.ParseUint(fields[1], 0, 8)
	if err != nil {
		return Patch{}, fmt.Errorf("invalid value %q", fields[1])
	}
	return Patch{Addr: uint32(addr), Value: uint8(val)}, nil
}

// ReadAll parses every record in r.
func ReadAll(r io.Reader) ([]*Record, error) {
	fr := NewReader(r)

	var recs []*Record
	for {
		rec, err := fr.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}
