package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CiccioBro17/8-Bit-Machine/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Machine)
	assert.Equal(&emu.Console, emu.Machine.Bus)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0", defines["LOAD_BASE"])
	assert.Equal("256", defines["RAM_SIZE"])
	assert.Equal("0", defines["REG_A"])
	assert.Equal("1", defines["REG_B"])
}

// doRun assembles a program, runs it to completion, and returns the
// console output.
func doRun(emu *Emulator, program []string, input []byte, t *testing.T) (output []byte) {
	assert := assert.New(t)

	asm := emu.Assembler()
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}
	emu.Program = prog

	emu.Console.Input = bytes.NewReader(input)
	console_output := &bytes.Buffer{}
	emu.Console.Output = console_output

	err = emu.LoadAndRun(prog.Binary())
	assert.NoError(err)
	if err != nil {
		t.Log(emu.Machine.String())
		t.Fatal(err)
	}

	output = console_output.Bytes()
	return
}

func TestEmulatorHello(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI A, 'H'",
		"OUT A",
		"LDI A, 'i'",
		"OUT A",
		"HLT",
	}

	output := doRun(emu, program, []byte{}, t)

	assert.Equal("Hi", string(output))
	assert.True(emu.Machine.Halted)
}

func TestEmulatorCountdown(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI A, 3",
		"LDI B, 1",
		"loop:",
		"SUB A, B",
		"JNZ loop",
		"HLT",
	}

	doRun(emu, program, []byte{}, t)

	assert.Equal(uint8(0), emu.Machine.Register[cpu.REG_A])
	assert.True(emu.Machine.Zero)
}

func TestEmulatorEcho(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"IN A",
		"OUT A",
		"IN A",
		"OUT A",
		"HLT",
	}

	output := doRun(emu, program, []byte("ab"), t)

	assert.Equal("ab", string(output))
}

func TestEmulatorStoreLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI A, 42",
		"STR A, 0x80",
		"LDI A, 0",
		"MOV B, 0x80",
		"HLT",
	}

	doRun(emu, program, []byte{}, t)

	assert.Equal(uint8(42), emu.Machine.Ram[0x80])
	assert.Equal(uint8(42), emu.Machine.Register[cpu.REG_B])
}

func TestEmulatorMessageTable(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"JMP start",
		`msg: DB "OK"`,
		"start:",
		"MOV A, msg",
		"OUT A",
		"MOV A, $(2 + 1)", // second byte of msg
		"OUT A",
		"HLT",
	}

	output := doRun(emu, program, []byte{}, t)

	assert.Equal("OK", string(output))
}

func TestEmulatorPredefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"LDI A, $(RAM_SIZE - 1)",
		"HLT",
	}

	doRun(emu, program, []byte{}, t)

	assert.Equal(uint8(255), emu.Machine.Register[cpu.REG_A])
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	asm := emu.Assembler()

	program := []string{
		"LDI A, 1",
		"OUT A",
		"HLT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	emu.Program = prog

	err = emu.Load(prog.Binary(), LOAD_BASE)
	assert.NoError(err)

	assert.Equal(1, emu.LineNo())

	err = emu.Step()
	assert.NoError(err)
	assert.Equal(2, emu.LineNo())

	err = emu.Step()
	assert.NoError(err)
	assert.Equal(3, emu.LineNo())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	err := emu.LoadAndRun([]byte{0x55})
	assert.Error(err)

	var re *ErrRuntime
	assert.True(errors.As(err, &re))
	assert.Equal(0, re.Pc)
	assert.True(errors.Is(err, cpu.ErrOpcodeInvalid(0)))
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Machine.StepLimit = 50

	err := emu.LoadAndRun([]byte{0x30, 0x00}) // JMP 0
	assert.True(errors.Is(err, cpu.ErrStepLimit))

	var re *ErrRuntime
	assert.True(errors.As(err, &re))
}

func TestEmulatorLoadTooBig(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	err := emu.LoadAndRun(make([]byte, cpu.RAM_SIZE+1))
	assert.True(errors.Is(err, cpu.ErrMemoryRange(0)))
}

// Loading an image zero-fills the remainder of memory.
func TestEmulatorLoadZeroFill(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Machine.Ram[0x80] = 0xAA

	err := emu.Load([]byte{0xFF}, LOAD_BASE)
	assert.NoError(err)

	assert.Equal(uint8(0xFF), emu.Machine.Ram[0])
	assert.Equal(uint8(0), emu.Machine.Ram[0x80])
}
