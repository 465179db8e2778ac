package cpu

import (
	"iter"
)

// Statement is one parsed source statement: an instruction or DB
// directive with its source location, byte address, and encoded bytes.
type Statement struct {
	LineNo int
	Addr   int
	Words  []string
	Bytes  []byte
}

// Program is the assembled intermediate representation: a sequence of
// statement records produced once and consumed by both assembler passes.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Offset int
}

// Debug locates the statement covering a byte address.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= st.Addr && addr < st.Addr+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Offset:    addr - st.Addr,
			}
			break
		}
	}

	return
}

// Binary emits the flat, headerless binary image.
func (prog *Program) Binary() (image []byte) {
	for _, st := range prog.Statements {
		image = append(image, st.Bytes...)
	}

	return
}

// Bytes iterates the binary image as (address, byte) pairs.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(addr int, value byte) bool) {
		for _, st := range prog.Statements {
			for n, b := range st.Bytes {
				if !yield(st.Addr+n, b) {
					return
				}
			}
		}
	}
}
