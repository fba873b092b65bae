// Package fixture implements the line-oriented test fixture format read by
// the emulator test harness.
//
// A fixture file is a sequence of records, one per test case:
//
//	T <opcode>:<index> <name>
//	U<flags mask>
//	R<flags> <ax> <bx> <cx> <dx> <si> <di> <bp> <sp> <ip> <cs> <ds> <es> <ss>
//	@<address> <value>     initial memory, zero or more
//	X
//	R<flags> <ax> ... <ss>
//	@<address> <value>     expected memory, zero or more
//	<blank line>
//
// Register values are four lower-case hex digits. Memory lines use 0x
// prefixed hex for both fields. '#' starts a comment that runs to the end
// of the line.
package fixture

import (
	"fmt"
	"strings"
)

// RegisterOrder is the positional layout of an R line.
var RegisterOrder = [NumRegisters]string{
	"flags",
	"ax", "bx", "cx", "dx",
	"si", "di", "bp", "sp", "ip",
	"cs", "ds", "es", "ss",
}

// NumRegisters is the number of values on an R line.
const NumRegisters = 14

// Registers is a complete register state in RegisterOrder.
type Registers [NumRegisters]uint16

// NewRegisters fills every register with zero and then overrides the ones
// named in sparse. Names outside RegisterOrder are ignored.
func NewRegisters(sparse map[string]uint16) Registers {
	var regs Registers
	for i, name := range RegisterOrder {
		if v, ok := sparse[name]; ok {
			regs[i] = v
		}
	}
	return regs
}

// String renders the registers the way an R line carries them, without
// the leading 'R'.
func (r Registers) String() string {
	var sb strings.Builder
	for i, v := range r {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%04x", v)
	}
	return sb.String()
}
