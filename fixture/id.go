package fixture

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a record identifier of the form "<opcode>:<index>". It is the key
// that ties a harness result line back to its fixture record.
type ID string

// NewID formats the identifier of the index-th test case of opcode.
func NewID(opcode string, index int) ID {
	return ID(opcode + ":" + strconv.Itoa(index))
}

// ParseID checks that s has the identifier shape: a colon followed by an
// integer. The opcode part is not interpreted.
func ParseID(s string) (ID, error) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", fmt.Errorf("identifier %q has no colon", s)
	}
	if _, err := strconv.Atoi(s[i+1:]); err != nil {
		return "", fmt.Errorf("identifier %q has a non-numeric index", s)
	}
	return ID(s), nil
}

// Opcode returns the part before the first colon.
func (id ID) Opcode() string {
	s := string(id)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

// Index returns the numeric part after the first colon, or -1 if the
// identifier is malformed.
func (id ID) Index() int {
	s := string(id)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return -1
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return -1
	}
	return n
}
