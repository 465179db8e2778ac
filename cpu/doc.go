// Package cpu implements the processor and assembler for the 8-bit machine.
//
// The machine consists of a program counter, two 8-bit registers (A and B),
// zero and carry flags, and a flat byte-addressed memory. All register and
// memory values wrap modulo 256; memory addressing does not wrap.
//
// The assembler is a two-pass assembler over a parsed statement stream,
// supporting labels, `.equ` constants, and assembly-time `$()` expression
// evaluation. One instruction table drives both assembly and execution, so
// what the assembler emits, the machine can always decode.
package cpu
