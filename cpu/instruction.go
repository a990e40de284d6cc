package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Instruction is a fetched instruction: the opcode and the two bytes
// after it, whether or not the opcode uses them.
type Instruction struct {
	Address  byte
	Opcode   Opcode
	OperandA byte
	OperandB byte
}

// Fetch reads the instruction at address.
func Fetch(mem Memory, address byte) Instruction {
	return Instruction{
		Address:  address,
		Opcode:   Opcode(mem.Read(address)),
		OperandA: mem.Read(address + 1),
		OperandB: mem.Read(address + 2),
	}
}

// Size returns the encoded length of the instruction.
func (inst Instruction) Size() int {
	return inst.Opcode.Size()
}

// Bytes returns the encoded instruction.
func (inst Instruction) Bytes() []byte {
	if !inst.Opcode.Known() {
		return []byte{byte(inst.Opcode)}
	}
	return []byte{byte(inst.Opcode), inst.OperandA, inst.OperandB}[:inst.Size()]
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	op := inst.Opcode
	if !op.Known() {
		return fmt.Sprintf("db 0x%02x", byte(op))
	}

	var args []string
	for n, operand := range []byte{inst.OperandA, inst.OperandB}[:op.Operands()] {
		if op.Immediate(n) {
			args = append(args, fmt.Sprintf("0x%02x", operand))
		} else {
			args = append(args, fmt.Sprintf("R%d", operand%REG_COUNT))
		}
	}

	if len(args) == 0 {
		return op.String()
	}

	return op.String() + " " + strings.Join(args, ",")
}

// Disassemble decodes count bytes of memory starting at address.
// Unknown opcodes are yielded as single byte instructions.
func Disassemble(mem Memory, address byte, count int) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for count > 0 {
			inst := Fetch(mem, address)
			size := inst.Size()
			if !inst.Opcode.Known() {
				size = 1
			}
			if !yield(inst) {
				return
			}
			address += byte(size)
			count -= size
		}
	}
}
