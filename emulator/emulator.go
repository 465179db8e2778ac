// Package emulator drives the 8-bit machine: it loads binary images into
// memory, runs the processor, and hosts the interactive monitor.
package emulator

import (
	"fmt"
	"iter"
	"maps"

	"github.com/CiccioBro17/8-Bit-Machine/cpu"
	"github.com/CiccioBro17/8-Bit-Machine/device"
	"github.com/CiccioBro17/8-Bit-Machine/internal"
)

const (
	LOAD_BASE = 0 // Base load address for binary images.
)

var _emulator_defines = map[string]string{
	"LOAD_BASE":  fmt.Sprintf("%v", LOAD_BASE),
	"STEP_LIMIT": fmt.Sprintf("%v", cpu.STEP_LIMIT),
}

// Emulator state. Machine + console device.
type Emulator struct {
	Verbose      bool // If set, enables verbose logging.
	*cpu.Machine      // Reference to the machine simulation.

	Program *cpu.Program // Optional listing of the running program.

	Console device.Console // Console IO device.
}

// NewEmulator creates a new emulator with an attached console.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Machine: cpu.NewMachine(),
	}

	emu.Machine.Bus = &emu.Console

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Assembler creates an assembler preloaded with the emulator defines.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// LineNo returns the source line number of the executing statement,
// when a program listing is attached.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Machine.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.Statement.LineNo
}

// Load resets the machine and copies a binary image into memory at the
// base address. The remainder of memory is zero-filled.
func (emu *Emulator) Load(image []byte, addr int) (err error) {
	emu.Machine.Reset()
	emu.Machine.Trace = emu.Verbose
	emu.Machine.Pc = addr

	err = emu.Machine.Load(image, addr)
	if err != nil {
		err = &ErrRuntime{Pc: addr, Err: err}
	}

	return
}

// Run steps the machine until the halt condition holds. Failures carry
// the program counter at the point of failure.
func (emu *Emulator) Run() (err error) {
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: emu.Machine.Pc, Err: err}
		}
	}()

	err = emu.Machine.Run()

	return
}

// Step performs a single machine step with program counter context on
// failure.
func (emu *Emulator) Step() (err error) {
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: emu.Machine.Pc, Err: err}
		}
	}()

	err = emu.Machine.Step()

	return
}

// LoadAndRun loads a binary image at the base address and runs it to
// completion.
func (emu *Emulator) LoadAndRun(image []byte) (err error) {
	err = emu.Load(image, LOAD_BASE)
	if err != nil {
		return
	}

	err = emu.Run()

	return
}
