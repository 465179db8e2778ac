// Package main implements the command line interface for the 8-bit
// machine: an assembler, a binary image runner, and an interactive
// monitor.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"github.com/CiccioBro17/8-Bit-Machine/emulator"
)

// newLogger creates a logger with appropriate settings.
func newLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %v <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "commands:\n")
	fmt.Fprintf(os.Stderr, "  asm      assemble a source file into a binary image\n")
	fmt.Fprintf(os.Stderr, "  run      run a binary image\n")
	fmt.Fprintf(os.Stderr, "  monitor  start the interactive monitor\n")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "asm":
		cmdAsm(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "monitor":
		cmdMonitor(os.Args[2:])
	default:
		usage()
	}
}

func cmdAsm(args []string) {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("o", "out.bin", "output binary image")
	verbose := fs.Bool("v", false, "verbose mode")
	fs.Parse(args)

	logger := newLogger(*verbose)

	if fs.NArg() != 1 {
		logger.Fatal("asm requires exactly one source file")
	}
	source := fs.Arg(0)

	inf, err := os.Open(source)
	if err != nil {
		logger.Fatal(err.Error())
	}
	defer inf.Close()

	asm := emulator.NewEmulator().Assembler()
	asm.Verbose = *verbose

	prog, err := asm.Parse(inf)
	if err != nil {
		// No output file is written on failure.
		logger.Error("assembly failed", log.String("source", source), log.Err(err))
		os.Exit(1)
	}

	image := prog.Binary()
	err = os.WriteFile(*output, image, 0o644)
	if err != nil {
		logger.Fatal(err.Error())
	}

	fmt.Printf("Wrote %d bytes to %v\n", len(image), *output)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	addr := fs.Int("a", emulator.LOAD_BASE, "load address")
	trace := fs.Bool("t", false, "trace execution")
	fs.Parse(args)

	logger := newLogger(*trace)

	if fs.NArg() != 1 {
		logger.Fatal("run requires exactly one binary image")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		logger.Fatal(err.Error())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = *trace
	emu.Console.Input = os.Stdin
	emu.Console.Output = os.Stdout

	err = emu.Load(data, *addr)
	if err != nil {
		logger.Fatal(err.Error())
	}

	err = emu.Run()
	if err != nil {
		logger.Error("run failed", log.Err(err))
		os.Exit(1)
	}

	fmt.Printf("\n[Halted]\n%v\n", emu.Machine)
}

func cmdMonitor(args []string) {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	fs.Parse(args)

	logger := newLogger(false)

	emu := emulator.NewEmulator()
	emu.Console.Input = os.Stdin
	emu.Console.Output = os.Stdout

	mon := &emulator.Monitor{
		Emulator: emu,
		Input:    os.Stdin,
		Output:   os.Stdout,
	}

	err := mon.Run()
	if err != nil {
		logger.Fatal(err.Error())
	}
}
