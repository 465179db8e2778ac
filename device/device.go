// Package device provides the I/O peripherals of the 8-bit machine.
// The machine's OUT and IN instructions talk to a Bus; Console is the
// standard implementation, coupling the machine to a byte stream pair.
package device

import (
	"io"
)

// Bus is the interface between the processor and its peripherals.
type Bus interface {
	// In reads one byte from the device. io.EOF when exhausted.
	In() (value uint8, err error)
	// Out writes one byte to the device.
	Out(value uint8) error
}

// Console couples the machine to an input reader and an output writer.
// A nil Input reads as end-of-file; a nil Output discards.
type Console struct {
	Input  io.Reader
	Output io.Writer
}

var _ Bus = (*Console)(nil)

// In reads a single byte from the input stream.
func (con *Console) In() (value uint8, err error) {
	if con.Input == nil {
		err = io.EOF
		return
	}

	var one [1]byte
	_, err = io.ReadFull(con.Input, one[:])
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return
	}
	value = one[0]

	return
}

// Out writes a single byte to the output stream.
func (con *Console) Out(value uint8) (err error) {
	if con.Output == nil {
		return
	}

	_, err = con.Output.Write([]byte{value})

	return
}
