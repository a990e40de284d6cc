// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
	"github.com/ezrec/ls8/memory"
)

var _emulator_defines = map[string]string{
	"RAM_SIZE": fmt.Sprintf("0x%x", memory.RAM_SIZE),
}

// Emulator state. CPU + RAM + devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded program, if assembled.

	Ram      memory.Ram  // Main memory.
	Console  io.Console  // PRN/PRA output.
	Keyboard io.Keyboard // Keyboard interrupt source.

	image []byte // Image reloaded on Reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}

	emu.Cpu = cpu.NewCpu(&emu.Ram, &emu.Console)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	emu.Cpu.Halted = true

	return
}

// Load sets the memory image used by Reset.
func (emu *Emulator) Load(image []byte) (err error) {
	if len(image) > memory.RAM_SIZE {
		err = memory.ErrImageTooLarge
		return
	}

	emu.image = image
	emu.Program = &cpu.Program{}

	return
}

// LoadProgram sets an assembled program as the memory image used by Reset.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the memory from the loaded image, and reset the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Ram.Reset()
	err = emu.Ram.Load(emu.image)
	if err != nil {
		return
	}

	emu.Cpu.Reset()

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// LineNo returns the source line number for the current PC, or 0 if
// the program was not assembled.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Key delivers a key press: the key is stored in the key buffer and the
// keyboard interrupt is raised.
func (emu *Emulator) Key(key byte) {
	if emu.Verbose {
		log.Printf("emulator: key %#02x", key)
	}

	emu.Ram.Write(cpu.KEY_BUFFER, key)
	emu.Cpu.Raise(cpu.INT_KEYBOARD)
}

// Tick performs a single tick of the emulator.
// done is set once the program has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			// An interrupt may have moved the PC before the fault.
			var decode cpu.ErrOpcode
			var inst cpu.ErrInstruction
			switch {
			case errors.As(err, &decode):
				pc = decode.Address
			case errors.As(err, &inst):
				pc = inst.Address
			}
			dbg := emu.Program.Debug(pc)
			lineno := 0
			if dbg.Statement != nil {
				lineno = dbg.LineNo
			}
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}
