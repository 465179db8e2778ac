package cpu

import (
	"errors"

	"github.com/CiccioBro17/8-Bit-Machine/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrStepLimit = errors.New(f("step limit exceeded"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelSyntax     = errors.New(f("label syntax"))
	ErrOperandCount    = errors.New(f("operand count mismatch"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrDataEmpty       = errors.New(f("DB without data"))
	ErrQuoteOpen       = errors.New(f("unterminated quote"))
)

// ErrMnemonicUnknown reports a mnemonic with no instruction descriptor.
type ErrMnemonicUnknown string

func (em ErrMnemonicUnknown) Error() string {
	return f("unknown mnemonic %v", string(em))
}

// ErrLabelMissing reports a reference to a label that was never declared.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOperandRange reports a literal that does not fit its 8-bit operand.
type ErrOperandRange int

func (er ErrOperandRange) Error() string {
	return f("value %v exceeds 8-bit operand range", int(er))
}

// ErrOpcodeInvalid reports a fetched byte that decodes to no instruction.
type ErrOpcodeInvalid byte

func (eo ErrOpcodeInvalid) Error() string {
	return f("invalid opcode 0x%02x", byte(eo))
}

func (eo ErrOpcodeInvalid) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcodeInvalid)
	return
}

// ErrMemoryRange reports a memory access outside the machine's memory.
type ErrMemoryRange int

func (em ErrMemoryRange) Error() string {
	return f("address 0x%02x out of memory", int(em))
}

func (em ErrMemoryRange) Is(err error) (ok bool) {
	_, ok = err.(ErrMemoryRange)
	return
}

// ErrRegisterRange reports a register operand byte with no register.
type ErrRegisterRange byte

func (er ErrRegisterRange) Error() string {
	return f("register byte 0x%02x invalid", byte(er))
}

func (er ErrRegisterRange) Is(err error) (ok bool) {
	_, ok = err.(ErrRegisterRange)
	return
}

// ErrSyntax locates an assembly error on its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseNumber reports a token that is neither a numeral nor a known name.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression reports a $() expression that failed to evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
