package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for op := range opcodeNames {
		f.Add(byte(op), byte(0), byte(1), false)
		f.Add(byte(op), byte(7), byte(0), true)
	}
	f.Add(byte(0xff), byte(0), byte(0), false)

	f.Fuzz(func(t *testing.T, opcode byte, a byte, b byte, stack bool) {
		assert := assert.New(t)

		cpu, ram, _ := newTestCpu()
		for n := range 256 {
			ram.Write(byte(n), byte(n*7))
		}

		cpu.Pc = 0x1b
		cpu.Fl = FL_LESS
		cpu.Register[0] = 0x50
		cpu.Register[1] = 0x51
		cpu.Register[2] = 0x52
		cpu.Register[3] = 0x00
		cpu.Register[4] = 0x54
		if stack {
			cpu.Push(0xab)
		}

		pre := cpu.State
		inst := Instruction{Address: cpu.Pc, Opcode: Opcode(opcode), OperandA: a, OperandB: b}

		err := cpu.Execute(inst)

		code_str := fmt.Sprintf("%v (0b%08b) a=%d b=%d stack=%v\ncpu:\n%v",
			inst, opcode, a, b, stack, cpu.State.String())

		if err != nil {
			assert.True(cpu.Halted, code_str)
			assert.Equal(pre.Pc, cpu.Pc, code_str)

			switch {
			case errors.Is(err, ErrOpcode{}):
				assert.False(inst.Opcode.Known(), code_str)
			case errors.Is(err, ErrDivideByZero):
				assert.Contains([]Opcode{OP_DIV, OP_MOD}, inst.Opcode, code_str)
				assert.Equal(pre.Register, cpu.Register, code_str)
			default:
				assert.NoError(err, code_str)
			}
			return
		}

		assert.True(inst.Opcode.Known(), code_str)

		op := inst.Opcode
		if !op.SetsPc() {
			assert.Equal(pre.Pc+byte(op.Size()), cpu.Pc, code_str)
		}

		if op.IsAlu() && op != OP_CMP {
			// Only the destination register changes.
			for r := range REG_COUNT {
				if byte(r) == a%REG_COUNT {
					continue
				}
				assert.Equal(pre.Register[r], cpu.Register[r], code_str)
			}
			assert.Equal(pre.Fl, cpu.Fl, code_str)
		}

		if op == OP_CMP {
			assert.Contains([]byte{FL_EQUAL, FL_GREATER, FL_LESS}, cpu.Fl, code_str)
			assert.Equal(pre.Register, cpu.Register, code_str)
		}
	})
}
