package emulator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Monitor is the interactive machine monitor: a line-oriented REPL for
// loading images, stepping the machine, and inspecting state.
type Monitor struct {
	Emulator *Emulator
	Input    io.Reader
	Output   io.Writer
}

func (mon *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(mon.Output, format, args...)
}

// number parses a decimal or 0x hex argument, returning the fallback
// when the argument is absent.
func number(words []string, index int, fallback int) (value int, err error) {
	if index >= len(words) {
		value = fallback
		return
	}

	v64, err := strconv.ParseInt(words[index], 0, 32)
	if err != nil {
		return
	}
	value = int(v64)

	return
}

// Run reads and executes monitor commands until exit or end of input.
func (mon *Monitor) Run() (err error) {
	emu := mon.Emulator
	m := emu.Machine

	scanner := bufio.NewScanner(mon.Input)

	mon.printf("8bit machine monitor. Type 'help' for commands.\n")
	for {
		mon.printf(">>> ")
		if !scanner.Scan() {
			break
		}
		words := strings.Fields(scanner.Text())
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit":
			return

		case "help":
			mon.printf("commands: load <file> [addr], run [addr], step, regs, mem [addr] [len], trace on/off, reset, exit\n")

		case "load":
			if len(words) < 2 {
				mon.printf("usage: load file [addr]\n")
				continue
			}
			data, lerr := os.ReadFile(words[1])
			if lerr != nil {
				mon.printf("%v\n", lerr)
				continue
			}
			addr, lerr := number(words, 2, LOAD_BASE)
			if lerr == nil {
				lerr = emu.Load(data, addr)
			}
			if lerr != nil {
				mon.printf("%v\n", lerr)
				continue
			}
			mon.printf("Loaded %d bytes at %02X\n", len(data), addr)

		case "run":
			addr, rerr := number(words, 1, LOAD_BASE)
			if rerr != nil {
				mon.printf("%v\n", rerr)
				continue
			}
			m.Pc = addr
			m.Halted = false
			m.Steps = 0
			rerr = emu.Run()
			if rerr != nil {
				mon.printf("%v\n", rerr)
				continue
			}
			mon.printf("\n[Halted]\n")

		case "step":
			serr := emu.Step()
			if serr != nil {
				mon.printf("%v\n", serr)
				continue
			}
			mon.printf("%v\n", m)
			if m.Halted {
				mon.printf("[Halted]\n")
			}

		case "regs":
			mon.printf("%v\n", m)

		case "mem":
			addr, merr := number(words, 1, 0)
			if merr != nil {
				mon.printf("%v\n", merr)
				continue
			}
			length, merr := number(words, 2, 64)
			if merr != nil {
				mon.printf("%v\n", merr)
				continue
			}
			mon.dumpMem(addr, length)

		case "trace":
			if len(words) > 1 && (words[1] == "on" || words[1] == "off") {
				emu.Verbose = words[1] == "on"
				m.Trace = emu.Verbose
				mon.printf("trace %v\n", m.Trace)
			} else {
				mon.printf("trace on/off\n")
			}

		case "reset":
			m.Reset()
			mon.printf("reset\n")

		default:
			mon.printf("unknown command\n")
		}
	}

	err = scanner.Err()

	return
}

// dumpMem prints a memory range, sixteen bytes per row.
func (mon *Monitor) dumpMem(start, length int) {
	m := mon.Emulator.Machine

	for n := 0; n < length; n++ {
		addr := start + n
		if addr < 0 || addr >= len(m.Ram) {
			break
		}
		if n%16 == 0 {
			mon.printf("\n%02X: ", addr)
		}
		mon.printf("%02X ", m.Ram[addr])
	}
	mon.printf("\n")
}
