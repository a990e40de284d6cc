package cpu

import (
	"iter"
)

// Statement is a line of assembled code with its source location and
// generated bytes.
type Statement struct {
	LineNo    int
	Address   int
	Words     []string
	Bytes     []byte
	LinkLabel string // Label to resolve into Bytes[LinkIndex].
	LinkIndex int
}

type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that generated the byte at address.
func (prog *Program) Debug(address byte) (dbg Debug) {
	if prog == nil {
		return
	}

	for n, stmt := range prog.Statements {
		if int(address) >= stmt.Address && int(address) < stmt.Address+len(stmt.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address) - stmt.Address,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program. Gaps left by
// .org are zero filled.
func (prog *Program) Binary() (image []byte) {
	for address, value := range prog.Codes() {
		for len(image) <= address {
			image = append(image, 0)
		}
		image[address] = value
	}

	return
}

// Codes iterates over every generated byte and its address.
func (prog *Program) Codes() iter.Seq2[int, byte] {
	return func(yield func(address int, value byte) bool) {
		for _, stmt := range prog.Statements {
			for n, value := range stmt.Bytes {
				if !yield(stmt.Address+n, value) {
					return
				}
			}
		}
	}
}
