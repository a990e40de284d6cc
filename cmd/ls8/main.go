// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/loader"
	"github.com/ezrec/ls8/translate"
)

func main() {
	var compile string
	var input string
	var output string
	var verbose bool
	var step bool
	var disassemble bool
	var hz int
	var timer time.Duration

	flag.StringVar(&compile, "c", "", ".asm file to assemble and run")
	flag.StringVar(&input, "i", "-", "Keyboard input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&step, "step", false, "Run without the real time scheduler")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the image, do not execute")
	flag.IntVar(&hz, "hz", 1000, "Machine cycles per second")
	flag.DurationVar(&timer, "timer", emulator.TIMER_INTERVAL, "Timer interrupt interval")

	flag.Parse()

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	defer emu.Close()

	var image []byte

	switch {
	case len(compile) != 0 && flag.NArg() == 0:
		// Assemble a new program.
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		image = prog.Binary()
		err = emu.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(compile) == 0 && flag.NArg() == 1:
		// Load an .ls8 image.
		var err error
		path := flag.Arg(0)
		image, err = loader.ParseFile(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		err = emu.Load(image)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	default:
		log.Fatalf("%v: usage: %v [flags] (-c file.asm | file.ls8)", os.Args[0], os.Args[0])
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	if disassemble {
		for inst := range cpu.Disassemble(&emu.Ram, 0, len(image)) {
			err = translate.To(os.Stdout, "%02x: %v\n", inst.Address, inst)
			if err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	switch input {
	case "":
	case "-":
		emu.Keyboard.Input = os.Stdin
	default:
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Keyboard.Input = inf
	}

	if step {
		for done, err := emu.Tick(); !done; done, err = emu.Tick() {
			if err != nil {
				log.Fatal(err)
			}
		}
	} else {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		sch := emulator.NewScheduler(emu)
		sch.TimerInterval = timer
		if hz > 0 {
			sch.CycleInterval = time.Second / time.Duration(hz)
		}

		err = sch.Run(ctx)
		if err != nil {
			log.Fatal(err)
		}
	}

	if verbose {
		_ = translate.To(os.Stderr, "halted after %d ticks\n%v", emu.Ticks(), emu.Cpu.State.String())
	}
}
