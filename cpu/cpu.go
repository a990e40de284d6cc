// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"IM":           fmt.Sprintf("R%d", REG_IM),
	"IS":           fmt.Sprintf("R%d", REG_IS),
	"SP":           fmt.Sprintf("R%d", REG_SP),
	"FL_EQUAL":     fmt.Sprintf("0x%x", FL_EQUAL),
	"FL_GREATER":   fmt.Sprintf("0x%x", FL_GREATER),
	"FL_LESS":      fmt.Sprintf("0x%x", FL_LESS),
	"SP_INIT":      fmt.Sprintf("0x%x", SP_INIT),
	"KEY_BUFFER":   fmt.Sprintf("0x%x", KEY_BUFFER),
	"VECTOR_TABLE": fmt.Sprintf("0x%x", VECTOR_TABLE),
	"INT_TIMER":    fmt.Sprintf("%d", INT_TIMER),
	"INT_KEYBOARD": fmt.Sprintf("%d", INT_KEYBOARD),
}

// Cpu is the fetch-decode-execute engine. It exclusively owns its State.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State // Machine state.

	Ticks int // Completed cycles since reset.
}

// NewCpu creates a new CPU attached to memory and an output sink.
func NewCpu(memory Memory, output Output) (cpu *Cpu) {
	cpu = &Cpu{
		State: State{
			Memory: memory,
			Output: output,
		},
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers and flags.
// - Sets SP to the top of the stack.
// - Arms interrupts and clears the halt.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.State.Reset()
	cpu.Ticks = 0
}

// Tick executes a single machine cycle:
// check interrupts, fetch, decode, execute, then advance the PC.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Armed {
		line, ok := cpu.checkInterrupts()
		if ok && cpu.Verbose {
			log.Printf("cpu: interrupt %d -> %02x", line, cpu.Pc)
		}
	}

	inst := Fetch(cpu.Memory, cpu.Pc)

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute executes a single fetched instruction. A fault halts the CPU
// and leaves the PC on the faulting instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			cpu.Halted = true
			if cpu.Verbose {
				log.Printf("cpu: fault %v\n%v", err, cpu.State.String())
			}
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", inst.Address, inst)
	}

	op := inst.Opcode

	handle := handlers[op]
	if handle == nil {
		err = ErrOpcode{Address: inst.Address, Opcode: op}
		return
	}

	st := &cpu.State
	if op.IsAlu() {
		err = alu(st, op, inst.OperandA, inst.OperandB)
	} else {
		err = handle(st, inst.OperandA, inst.OperandB)
	}
	if err != nil {
		err = errors.Join(ErrInstruction(inst), err)
		return
	}

	if !op.SetsPc() {
		cpu.Pc += byte(op.Size())
	}

	return
}
