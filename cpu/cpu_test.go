package cpu

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/memory"
)

type testOutput struct {
	bytes.Buffer
}

func (out *testOutput) Number(value byte) (err error) {
	_, err = fmt.Fprintf(&out.Buffer, "%d\n", value)
	return
}

func (out *testOutput) Character(value byte) error {
	return out.WriteByte(value)
}

func newTestCpu(image ...byte) (cpu *Cpu, ram *memory.Ram, out *testOutput) {
	ram = &memory.Ram{}
	copy(ram.Data[:], image)
	out = &testOutput{}
	cpu = NewCpu(ram, out)
	return
}

func assembleTestCpu(t *testing.T, program []string) (cpu *Cpu, ram *memory.Ram, out *testOutput) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatalf("%v", err)
	}

	return newTestCpu(prog.Binary()...)
}

func runTestCpu(t *testing.T, cpu *Cpu) {
	for range 1000 {
		err := cpu.Tick()
		if errors.Is(err, ErrHalted) {
			return
		}
		if err != nil {
			t.Log(cpu.State.String())
			t.Fatalf("%v", err)
		}
	}
	t.Fatal("cpu did not halt")
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()

	assert.Equal(byte(SP_INIT), cpu.Sp())
	assert.Equal(byte(0), cpu.Pc)
	assert.Equal(byte(0), cpu.Fl)
	assert.True(cpu.Armed)
	assert.False(cpu.Halted)
	assert.Equal(0, cpu.Ticks)

	cpu.Register[0] = 0x12
	cpu.Pc = 0x40
	cpu.Halted = true
	cpu.Ticks = 9
	cpu.Reset()

	assert.Equal(byte(0), cpu.Register[0])
	assert.Equal(byte(0), cpu.Pc)
	assert.False(cpu.Halted)
	assert.Equal(0, cpu.Ticks)
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	defines := maps.Collect(cpu.Defines())

	assert.Equal("R5", defines["IM"])
	assert.Equal("R6", defines["IS"])
	assert.Equal("R7", defines["SP"])
	assert.Equal("0xf4", defines["KEY_BUFFER"])
	assert.Equal("0xf8", defines["VECTOR_TABLE"])
	assert.Equal("0", defines["INT_TIMER"])
	assert.Equal("1", defines["INT_KEYBOARD"])
}

func TestCpuAdd(t *testing.T) {
	assert := assert.New(t)

	cpu, _, out := assembleTestCpu(t, []string{
		"LDI R0, 5",
		"LDI R1, 3",
		"ADD R0, R1",
		"PRN R0",
		"HLT",
	})

	runTestCpu(t, cpu)

	assert.Equal("8\n", out.String())
	assert.Equal(5, cpu.Ticks)
}

func TestCpuPrint8(t *testing.T) {
	assert := assert.New(t)

	cpu, _, out := newTestCpu(
		0b10011001, 0b00000000, 0b00001000, // LDI R0,8
		0b01000011, 0b00000000, // PRN R0
		0b00000001, // HLT
	)

	runTestCpu(t, cpu)

	assert.Equal("8\n", out.String())
}

func TestCpuPushPop(t *testing.T) {
	assert := assert.New(t)

	cpu, _, out := assembleTestCpu(t, []string{
		"LDI R0, 10",
		"PUSH R0",
		"LDI R0, 0",
		"POP R0",
		"PRN R0",
		"HLT",
	})

	runTestCpu(t, cpu)

	assert.Equal("10\n", out.String())
	assert.Equal(byte(SP_INIT), cpu.Sp())
}

func TestCpuCompareJump(t *testing.T) {
	assert := assert.New(t)

	cpu, _, out := assembleTestCpu(t, []string{
		"        LDI R0, 5",
		"        LDI R1, 5",
		"        LDI R2, Equal",
		"        CMP R0, R1",
		"        JEQ R2",
		"        PRN R0",
		"        HLT",
		"Equal:  PRN R1",
		"        HLT",
	})

	for range 5 {
		assert.NoError(cpu.Tick())
	}
	assert.Equal(byte(FL_EQUAL), cpu.Fl)
	assert.Equal(cpu.Register[2], cpu.Pc)

	runTestCpu(t, cpu)
	assert.Equal("5\n", out.String())
}

func TestCpuUnimplemented(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(0xff, 0x00, 0x00)

	err := cpu.Tick()
	assert.ErrorIs(err, ErrOpcode{})

	var decode ErrOpcode
	assert.True(errors.As(err, &decode))
	assert.Equal(Opcode(0xff), decode.Opcode)
	assert.Equal(byte(0), decode.Address)

	assert.True(cpu.Halted)
	assert.Equal(byte(0), cpu.Pc)
	assert.Equal(0, cpu.Ticks)

	err = cpu.Tick()
	assert.ErrorIs(err, ErrHalted)
	assert.Equal(byte(0), cpu.Pc)
}

func TestCpuHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(byte(OP_HLT))

	assert.NoError(cpu.Tick())
	assert.True(cpu.Halted)
	assert.Equal(1, cpu.Ticks)

	assert.ErrorIs(cpu.Tick(), ErrHalted)
	assert.Equal(1, cpu.Ticks)
}

func TestCpuPcAdvance(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []Opcode{
		OP_NOP, OP_LD, OP_LDI, OP_ST, OP_PUSH, OP_POP, OP_PRN, OP_PRA,
		OP_NOT, OP_INC, OP_DEC, OP_CMP, OP_ADD, OP_SUB, OP_MUL,
		OP_OR, OP_XOR, OP_AND,
	} {
		cpu, _, _ := newTestCpu()
		cpu.Pc = 0x10
		cpu.Register[1] = 1

		err := cpu.Execute(Instruction{Address: 0x10, Opcode: op, OperandA: 0, OperandB: 1})
		assert.NoError(err, op.String())
		assert.Equal(byte(0x10+op.Size()), cpu.Pc, op.String())
	}
}

func TestCpuJumps(t *testing.T) {
	assert := assert.New(t)

	type jump struct {
		op    Opcode
		fl    byte
		taken bool
	}

	for _, tc := range []jump{
		{OP_JMP, 0, true},
		{OP_JEQ, FL_EQUAL, true},
		{OP_JEQ, FL_LESS, false},
		{OP_JNE, FL_EQUAL, false},
		{OP_JNE, FL_GREATER, true},
		{OP_JLT, FL_LESS, true},
		{OP_JLT, FL_EQUAL, false},
		{OP_JGT, FL_GREATER, true},
		{OP_JGT, FL_LESS, false},
	} {
		cpu, _, _ := newTestCpu()
		cpu.Pc = 0x10
		cpu.Fl = tc.fl
		cpu.Register[3] = 0x80

		err := cpu.Execute(Instruction{Address: 0x10, Opcode: tc.op, OperandA: 3})
		assert.NoError(err)

		expected := byte(0x12)
		if tc.taken {
			expected = 0x80
		}
		assert.Equal(expected, cpu.Pc, "%v fl=%03b", tc.op, tc.fl)
	}
}

func TestCpuCallRet(t *testing.T) {
	assert := assert.New(t)

	cpu, ram, _ := newTestCpu()
	cpu.Pc = 0x10
	cpu.Register[1] = 0x40

	assert.NoError(cpu.Execute(Instruction{Address: 0x10, Opcode: OP_CALL, OperandA: 1}))
	assert.Equal(byte(0x40), cpu.Pc)
	assert.Equal(byte(SP_INIT-1), cpu.Sp())
	assert.Equal(byte(0x12), ram.Read(SP_INIT-1))

	assert.NoError(cpu.Execute(Instruction{Address: 0x40, Opcode: OP_RET}))
	assert.Equal(byte(0x12), cpu.Pc)
	assert.Equal(byte(SP_INIT), cpu.Sp())
}

func TestCpuLoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu, ram, _ := assembleTestCpu(t, []string{
		"LDI R0, 0x80",
		"LDI R1, 0x55",
		"ST R0, R1",
		"LD R2, R0",
		"HLT",
	})

	runTestCpu(t, cpu)

	assert.Equal(byte(0x55), ram.Read(0x80))
	assert.Equal(byte(0x55), cpu.Register[2])
}

func TestCpuRegisterWrap(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()

	assert.NoError(cpu.Execute(Instruction{Opcode: OP_LDI, OperandA: 9, OperandB: 7}))
	assert.Equal(byte(7), cpu.Register[1])
}

func TestCpuOutputMissing(t *testing.T) {
	assert := assert.New(t)

	ram := &memory.Ram{}
	ram.Data[0] = byte(OP_PRN)

	cpu := NewCpu(ram, nil)

	err := cpu.Tick()
	assert.ErrorIs(err, ErrOutput)
	assert.True(cpu.Halted)
	assert.Equal(byte(0), cpu.Pc)
}

func TestCpuInstructionError(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := assembleTestCpu(t, []string{
		"LDI R0, 9",
		"DIV R0, R1",
	})

	assert.NoError(cpu.Tick())

	err := cpu.Tick()
	assert.ErrorIs(err, ErrDivideByZero)
	assert.Contains(err.Error(), "0x03: DIV R0,R1")
	assert.Equal(byte(3), cpu.Pc)
	assert.Equal(byte(9), cpu.Register[0])
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu()
	cpu.Register[2] = 0xab

	text := cpu.State.String()
	assert.Contains(text, "pc: 00")
	assert.Contains(text, "r2: AB")
	assert.Contains(text, "sp: F4")
	assert.Contains(text, "armed: true")
}
