package cpu

import (
	"fmt"
	"strings"
)

// Register file indexes.
const (
	REG_A = 0 // Accumulator.
	REG_B = 1 // Scratch register.
)

const (
	RAM_SIZE   = 256       // Default memory size in bytes.
	STEP_LIMIT = 1_000_000 // Default Run() runaway-execution ceiling.
)

// Opcode values.
const (
	OP_NOP = byte(0x00)
	OP_LDI = byte(0x10) // LDI <reg> <imm8>   load immediate into reg
	OP_MOV = byte(0x11) // MOV <reg> <addr>   load from memory into reg
	OP_STR = byte(0x12) // STR <reg> <addr>   store reg to memory
	OP_ADD = byte(0x20) // ADD <reg> <reg>    reg+reg -> A
	OP_SUB = byte(0x21) // SUB <reg> <reg>    reg-reg -> A
	OP_JMP = byte(0x30) // JMP <addr>
	OP_JZ  = byte(0x31) // JZ  <addr>         jump if zero flag set
	OP_JNZ = byte(0x32) // JNZ <addr>
	OP_OUT = byte(0x40) // OUT <reg>          write reg to the output device
	OP_IN  = byte(0x41) // IN  <reg>          read one byte into reg
	OP_HLT = byte(0xFF)
)

// ArgKind classifies a single operand byte of an instruction.
type ArgKind int

const (
	ARG_REG  = ArgKind(0) // reg
	ARG_IMM  = ArgKind(1) // imm8
	ARG_ADDR = ArgKind(2) // addr
)

// String returns the operand placeholder used in listings and diagnostics.
func (ak ArgKind) String() (name string) {
	switch ak {
	case ARG_REG:
		name = "reg"
	case ARG_IMM:
		name = "imm8"
	case ARG_ADDR:
		name = "addr"
	default:
		name = fmt.Sprintf("ArgKind(%d)", int(ak))
	}

	return
}

// Op binds a mnemonic and opcode value to its operand shape.
// The table below is the single source of truth for both the
// assembler (lookup by name) and the machine (lookup by opcode).
type Op struct {
	Name string    // Mnemonic, upper case.
	Code byte      // Opcode value.
	Args []ArgKind // Operand bytes following the opcode.
}

// Len returns the total encoded length of the instruction in bytes.
func (op Op) Len() int {
	return 1 + len(op.Args)
}

// String returns the mnemonic with its operand placeholders.
func (op Op) String() (out string) {
	out = op.Name
	for _, arg := range op.Args {
		out += " " + arg.String()
	}

	return
}

var opTable = []Op{
	{Name: "NOP", Code: OP_NOP},
	{Name: "LDI", Code: OP_LDI, Args: []ArgKind{ARG_REG, ARG_IMM}},
	{Name: "MOV", Code: OP_MOV, Args: []ArgKind{ARG_REG, ARG_ADDR}},
	{Name: "STR", Code: OP_STR, Args: []ArgKind{ARG_REG, ARG_ADDR}},
	{Name: "ADD", Code: OP_ADD, Args: []ArgKind{ARG_REG, ARG_REG}},
	{Name: "SUB", Code: OP_SUB, Args: []ArgKind{ARG_REG, ARG_REG}},
	{Name: "JMP", Code: OP_JMP, Args: []ArgKind{ARG_ADDR}},
	{Name: "JZ", Code: OP_JZ, Args: []ArgKind{ARG_ADDR}},
	{Name: "JNZ", Code: OP_JNZ, Args: []ArgKind{ARG_ADDR}},
	{Name: "OUT", Code: OP_OUT, Args: []ArgKind{ARG_REG}},
	{Name: "IN", Code: OP_IN, Args: []ArgKind{ARG_REG}},
	{Name: "HLT", Code: OP_HLT},
}

var opByName map[string]Op
var opByCode map[byte]Op

func init() {
	opByName = make(map[string]Op, len(opTable))
	opByCode = make(map[byte]Op, len(opTable))

	for _, op := range opTable {
		_, dup := opByName[op.Name]
		if dup {
			panic(fmt.Sprintf("duplicate mnemonic %v", op.Name))
		}
		_, dup = opByCode[op.Code]
		if dup {
			panic(fmt.Sprintf("duplicate opcode 0x%02x", op.Code))
		}
		opByName[op.Name] = op
		opByCode[op.Code] = op
	}
}

// ByName looks up an instruction descriptor by mnemonic, case-insensitive.
func ByName(name string) (op Op, ok bool) {
	op, ok = opByName[strings.ToUpper(name)]
	return
}

// ByOpcode looks up an instruction descriptor by opcode value.
func ByOpcode(code byte) (op Op, ok bool) {
	op, ok = opByCode[code]
	return
}
