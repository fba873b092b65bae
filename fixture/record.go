package fixture

// Patch is one memory byte: a write before execution, or an expected value
// after it.
type Patch struct {
	Addr  uint32
	Value uint8
}

// State is one side of a record.
type State struct {
	Regs   Registers
	Memory []Patch
}

// Record is one rendered test case.
type Record struct {
	ID        ID
	Name      string
	FlagsMask uint16
	Initial   State
	Final     State
}

// Header is the comment block written at the top of a fixture file.
type Header struct {
	Source string
	Opcode string
	Status string
}
