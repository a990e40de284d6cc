// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the first byte of an LS-8 instruction.
type Opcode byte

// Instruction encoding.
const (
	OPCODE_OPERANDS_SHIFT = 6          // Bits 7-6: operand count.
	OPCODE_ALU            = 0b00100000 // Bit 5: ALU operation.
)

const (
	OP_NOP  = Opcode(0b00000000)
	OP_HLT  = Opcode(0b00000001)
	OP_RET  = Opcode(0b00001001)
	OP_IRET = Opcode(0b00001011)
	OP_PRA  = Opcode(0b01000010)
	OP_PRN  = Opcode(0b01000011)
	OP_CALL = Opcode(0b01001000)
	OP_INT  = Opcode(0b01001010)
	OP_POP  = Opcode(0b01001100)
	OP_PUSH = Opcode(0b01001101)
	OP_JMP  = Opcode(0b01010000)
	OP_JEQ  = Opcode(0b01010001)
	OP_JNE  = Opcode(0b01010010)
	OP_JLT  = Opcode(0b01010011)
	OP_JGT  = Opcode(0b01010100)
	OP_NOT  = Opcode(0b01110000)
	OP_INC  = Opcode(0b01111000)
	OP_DEC  = Opcode(0b01111001)
	OP_LD   = Opcode(0b10011000)
	OP_LDI  = Opcode(0b10011001)
	OP_ST   = Opcode(0b10011010)
	OP_CMP  = Opcode(0b10100000)
	OP_ADD  = Opcode(0b10101000)
	OP_SUB  = Opcode(0b10101001)
	OP_MUL  = Opcode(0b10101010)
	OP_DIV  = Opcode(0b10101011)
	OP_MOD  = Opcode(0b10101100)
	OP_OR   = Opcode(0b10110001)
	OP_XOR  = Opcode(0b10110010)
	OP_AND  = Opcode(0b10110011)
)

var opcodeNames = map[Opcode]string{
	OP_NOP:  "NOP",
	OP_HLT:  "HLT",
	OP_RET:  "RET",
	OP_IRET: "IRET",
	OP_PRA:  "PRA",
	OP_PRN:  "PRN",
	OP_CALL: "CALL",
	OP_INT:  "INT",
	OP_POP:  "POP",
	OP_PUSH: "PUSH",
	OP_JMP:  "JMP",
	OP_JEQ:  "JEQ",
	OP_JNE:  "JNE",
	OP_JLT:  "JLT",
	OP_JGT:  "JGT",
	OP_NOT:  "NOT",
	OP_INC:  "INC",
	OP_DEC:  "DEC",
	OP_LD:   "LD",
	OP_LDI:  "LDI",
	OP_ST:   "ST",
	OP_CMP:  "CMP",
	OP_ADD:  "ADD",
	OP_SUB:  "SUB",
	OP_MUL:  "MUL",
	OP_DIV:  "DIV",
	OP_MOD:  "MOD",
	OP_OR:   "OR",
	OP_XOR:  "XOR",
	OP_AND:  "AND",
}

var opcodeByName = func() map[string]Opcode {
	names := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		names[name] = op
	}
	return names
}()

// LookupOpcode finds an opcode by its mnemonic, in any case.
func LookupOpcode(name string) (op Opcode, ok bool) {
	op, ok = opcodeByName[strings.ToUpper(name)]
	return
}

// Operands returns the number of operand bytes that follow the opcode.
func (op Opcode) Operands() int {
	return int(op >> OPCODE_OPERANDS_SHIFT)
}

// Size returns the total instruction length in bytes.
func (op Opcode) Size() int {
	return op.Operands() + 1
}

// IsAlu returns true if the opcode is dispatched to the ALU.
func (op Opcode) IsAlu() bool {
	return (op & OPCODE_ALU) != 0
}

// SetsPc returns true for the opcodes whose handlers assign the PC
// themselves, suppressing the automatic advance.
func (op Opcode) SetsPc() bool {
	switch op {
	case OP_CALL, OP_INT, OP_IRET, OP_JEQ, OP_JGT, OP_JLT, OP_JMP, OP_JNE, OP_RET:
		return true
	}

	return false
}

// Immediate returns true if operand n (0 or 1) is an immediate value
// rather than a register index.
func (op Opcode) Immediate(n int) bool {
	return op == OP_LDI && n == 1
}

// Known returns true if the opcode is part of the instruction set.
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		return fmt.Sprintf("0b%08b", byte(op))
	}
	return name
}
