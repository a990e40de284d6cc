// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
)

// Register file layout.
const (
	REG_COUNT = 8 // General-purpose registers r0-r7.
	REG_IM    = 5 // Interrupt mask.
	REG_IS    = 6 // Interrupt status.
	REG_SP    = 7 // Stack pointer.
)

// Flags register bits. Exactly one is set after a CMP.
const (
	FL_EQUAL   = 0b001
	FL_GREATER = 0b010
	FL_LESS    = 0b100
)

// Reserved memory.
const (
	SP_INIT      = 0xf4 // Stack grows down from here.
	STACK_FLOOR  = 0xf3 // SP above this is an empty stack.
	KEY_BUFFER   = 0xf4 // Last key pressed.
	VECTOR_TABLE = 0xf8 // Interrupt vectors, one byte per line.
)

// Interrupt lines.
const (
	INT_TIMER    = 0
	INT_KEYBOARD = 1
	INT_SCANNED  = 7 // Lines 0-6 are scanned; line 7 is reserved.
)

// Memory is the byte addressable backing store.
type Memory interface {
	Read(address byte) (value byte)
	Write(address byte, value byte)
}

// Output receives PRN and PRA output, one unit per call.
type Output interface {
	Number(value byte) error
	Character(value byte) error
}

// State is the machine state mutated by the handlers.
type State struct {
	Register [REG_COUNT]byte // Register bank.
	Pc       byte            // Program counter.
	Fl       byte            // Flags.
	Armed    bool            // Interrupts enabled.
	Halted   bool            // Set by HLT or a fault.

	Memory Memory // Attached memory.
	Output Output // Attached output sink.
}

// Reset the machine registers. Memory is left untouched.
func (st *State) Reset() {
	clear(st.Register[:])
	st.Register[REG_SP] = SP_INIT
	st.Pc = 0
	st.Fl = 0
	st.Armed = true
	st.Halted = false
}

// Reg returns the register named by an operand byte.
// Operands wrap into the register bank.
func (st *State) Reg(index byte) *byte {
	return &st.Register[index%REG_COUNT]
}

// Im returns the interrupt mask.
func (st *State) Im() byte {
	return st.Register[REG_IM]
}

// Is returns the interrupt status.
func (st *State) Is() byte {
	return st.Register[REG_IS]
}

// Sp returns the stack pointer.
func (st *State) Sp() byte {
	return st.Register[REG_SP]
}

// String returns the current register state as a string.
func (st *State) String() (text string) {
	regs := []string{
		"pc", "fl",
		"r0", "r1", "r2", "r3", "r4", "im", "is", "sp",
		"armed",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", st.Pc)
		case "fl":
			strval = fmt.Sprintf("%03b", st.Fl)
		case "r0", "r1", "r2", "r3", "r4":
			strval = fmt.Sprintf("%02X", st.Register[reg[1]-'0'])
		case "im":
			strval = fmt.Sprintf("%08b", st.Register[REG_IM])
		case "is":
			strval = fmt.Sprintf("%08b", st.Register[REG_IS])
		case "sp":
			strval = fmt.Sprintf("%02X", st.Register[REG_SP])
		case "armed":
			strval = "false"
			if st.Armed {
				strval = "true"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}
