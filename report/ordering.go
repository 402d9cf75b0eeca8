package report

import (
	"fmt"
	"math/bits"
	"strings"
)

// Ordering is the bit-ordering convention used to label basis states.
//
// Internally bit q of an amplitude index is qubit q. LittleEndian writes the
// label from qubit n-1 down to qubit 0, so the label of index i is i in binary.
// BigEndian writes qubit 0 first. Both list basis states so that the labels
// read 0...0, 0...01, and so on up to 1...1.
type Ordering int

const (
	LittleEndian Ordering = iota
	BigEndian
)

// ParseOrdering maps a caller token to an Ordering. The empty token and
// "littleendian" select the default.
func ParseOrdering(token string) (Ordering, error) {
	switch token {
	case "", "littleendian":
		return LittleEndian, nil
	case "bigendian":
		return BigEndian, nil
	}
	return 0, &UnknownOrderingError{Token: token}
}

func (o Ordering) String() string {
	if o == BigEndian {
		return "bigendian"
	}
	return "littleendian"
}

// Label returns the bit string of basis state index on n qubits.
func (o Ordering) Label(index, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for pos := range n {
		q := n - 1 - pos
		if o == BigEndian {
			q = pos
		}
		if index&(1<<q) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// IndexAt returns the basis-state index listed at position pos.
func (o Ordering) IndexAt(pos, n int) int {
	if o == BigEndian {
		return reverseBits(pos, n)
	}
	return pos
}

// Index parses a label produced by Label back into its basis-state index.
func (o Ordering) Index(label string) (int, error) {
	n := len(label)
	index := 0
	for pos := range n {
		q := n - 1 - pos
		if o == BigEndian {
			q = pos
		}
		switch label[pos] {
		case '1':
			index |= 1 << q
		case '0':
		default:
			return 0, fmt.Errorf("label %q: character %q is not a bit", label, label[pos])
		}
	}
	return index, nil
}

func reverseBits(x, n int) int {
	return int(bits.Reverse64(uint64(x)) >> (64 - n))
}
