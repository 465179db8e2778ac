package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/CiccioBro17/8-Bit-Machine/device"
)

// Bus is an I/O device interface.
type Bus device.Bus

var _machine_defines = map[string]string{
	"RAM_SIZE": fmt.Sprintf("%v", RAM_SIZE),
	"REG_A":    fmt.Sprintf("%v", REG_A),
	"REG_B":    fmt.Sprintf("%v", REG_B),
}

// Machine is the simulation context for the 8-bit processor.
//
// All register and memory cells hold unsigned 8-bit values that wrap
// modulo 256 on overflow. Memory addressing does not wrap: an operand
// address outside Ram is a fatal ErrMemoryRange.
type Machine struct {
	Trace bool // Set to log each fetch.

	Pc       int      // Program counter.
	Register [2]uint8 // Register file: A, B.
	Zero     bool     // Zero flag, tracks register A.
	Carry    bool     // Carry flag, set by ADD/SUB overflow.
	Ram      []uint8  // Memory cells.
	Halted   bool     // Halt condition.

	Bus       Bus // I/O device for OUT/IN.
	StepLimit int // Run() step ceiling; <= 0 selects STEP_LIMIT.

	Steps int // Steps executed since the last Reset.
}

// NewMachine creates a machine with the default memory size and an
// unattached console.
func NewMachine() (m *Machine) {
	m = &Machine{
		Ram: make([]uint8, RAM_SIZE),
		Bus: &device.Console{},
	}

	return
}

// Defines for the machine, injected as assembler predefines.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

// String returns the current register state.
func (m *Machine) String() string {
	flag := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	return fmt.Sprintf("PC: %02X  A: %02X  B: %02X  Z:%d C:%d",
		m.Pc, m.Register[REG_A], m.Register[REG_B], flag(m.Zero), flag(m.Carry))
}

// Reset clears the registers, flags, memory, and counters.
func (m *Machine) Reset() {
	if m.Trace {
		log.Printf("machine: reset")
	}

	clear(m.Register[:])
	clear(m.Ram)
	m.Pc = 0
	m.Zero = false
	m.Carry = false
	m.Halted = false
	m.Steps = 0
}

// Load copies a binary image into memory at the given base address.
// The image must fit; memory addressing does not wrap.
func (m *Machine) Load(image []byte, addr int) (err error) {
	if addr < 0 || addr+len(image) > len(m.Ram) {
		err = ErrMemoryRange(addr + len(image) - 1)
		return
	}

	copy(m.Ram[addr:], image)

	return
}

// peek checks an operand address against the memory size.
func (m *Machine) peek(addr uint8) (err error) {
	if int(addr) >= len(m.Ram) {
		err = ErrMemoryRange(addr)
	}

	return
}

// register maps an operand byte to a register index.
func (m *Machine) register(index uint8) (reg int, err error) {
	if int(index) >= len(m.Register) {
		err = ErrRegisterRange(index)
		return
	}
	reg = int(index)

	return
}

// Step performs a single fetch-decode-execute cycle.
//
// A program counter past the end of memory is a halt condition, not an
// error. A byte that decodes to no instruction is fatal ErrOpcodeInvalid
// and leaves memory untouched.
func (m *Machine) Step() (err error) {
	if m.Halted {
		return
	}

	if m.Pc < 0 || m.Pc >= len(m.Ram) {
		m.Halted = true
		return
	}

	opcode := m.Ram[m.Pc]

	if m.Trace {
		log.Printf("[PC=%02X] OPCODE %02X", m.Pc, opcode)
	}

	op, ok := ByOpcode(opcode)
	if !ok {
		err = ErrOpcodeInvalid(opcode)
		return
	}

	// Fetch operand bytes. An instruction straddling the end of memory
	// is a memory access fault, not a halt.
	var args [2]uint8
	for n := range op.Args {
		at := m.Pc + 1 + n
		if at >= len(m.Ram) {
			err = ErrMemoryRange(at)
			return
		}
		args[n] = m.Ram[at]
	}

	next := m.Pc + op.Len()

	switch op.Code {
	case OP_NOP:
		// pass

	case OP_LDI:
		var reg int
		reg, err = m.register(args[0])
		if err != nil {
			return
		}
		m.Register[reg] = args[1]
		m.Zero = m.Register[REG_A] == 0

	case OP_MOV:
		var reg int
		reg, err = m.register(args[0])
		if err != nil {
			return
		}
		err = m.peek(args[1])
		if err != nil {
			return
		}
		m.Register[reg] = m.Ram[args[1]]
		m.Zero = m.Register[REG_A] == 0

	case OP_STR:
		var reg int
		reg, err = m.register(args[0])
		if err != nil {
			return
		}
		err = m.peek(args[1])
		if err != nil {
			return
		}
		m.Ram[args[1]] = m.Register[reg]

	case OP_ADD:
		var r1, r2 int
		r1, err = m.register(args[0])
		if err != nil {
			return
		}
		r2, err = m.register(args[1])
		if err != nil {
			return
		}
		sum := uint16(m.Register[r1]) + uint16(m.Register[r2])
		m.Register[REG_A] = uint8(sum)
		m.Carry = sum > 0xff
		m.Zero = m.Register[REG_A] == 0

	case OP_SUB:
		var r1, r2 int
		r1, err = m.register(args[0])
		if err != nil {
			return
		}
		r2, err = m.register(args[1])
		if err != nil {
			return
		}
		m.Carry = m.Register[r1] < m.Register[r2]
		m.Register[REG_A] = m.Register[r1] - m.Register[r2]
		m.Zero = m.Register[REG_A] == 0

	case OP_JMP:
		next = int(args[0])

	case OP_JZ:
		if m.Zero {
			next = int(args[0])
		}

	case OP_JNZ:
		if !m.Zero {
			next = int(args[0])
		}

	case OP_OUT:
		var reg int
		reg, err = m.register(args[0])
		if err != nil {
			return
		}
		if m.Bus != nil {
			err = m.Bus.Out(m.Register[reg])
			if err != nil {
				return
			}
		}

	case OP_IN:
		var reg int
		reg, err = m.register(args[0])
		if err != nil {
			return
		}
		var value uint8
		if m.Bus != nil {
			value, err = m.Bus.In()
			if err == io.EOF {
				// End of input reads as zero.
				value = 0
				err = nil
			}
			if err != nil {
				return
			}
		}
		m.Register[reg] = value
		m.Zero = m.Register[REG_A] == 0

	case OP_HLT:
		m.Halted = true
	}

	m.Pc = next
	m.Steps += 1

	return
}

// Run repeatedly steps the machine until the halt condition holds.
// Fails with ErrStepLimit once the step ceiling is exceeded.
func (m *Machine) Run() (err error) {
	limit := m.StepLimit
	if limit <= 0 {
		limit = STEP_LIMIT
	}

	for !m.Halted {
		if m.Steps >= limit {
			err = ErrStepLimit
			return
		}
		err = m.Step()
		if err != nil {
			return
		}
	}

	return
}
