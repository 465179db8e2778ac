package cpu

import (
	"bufio"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler translates mnemonic source text into a Program.
//
// Grammar: one statement per line; `;` starts a comment; `label:` declares
// a label, alone or prefixing a statement; mnemonics and register names are
// case-insensitive; operands are separated by spaces and/or commas; numerals
// are decimal, 0x hex, or negative decimal -128..-1 (two's complement);
// character literals are 'x'; the DB directive emits raw bytes from
// numerals, labels, character literals, and double-quoted strings. `.equ
// NAME VALUE` declares a constant, and `$( ... )` evaluates a constant
// expression at assembly time.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of parsed statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Symbol table: label name to byte address.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap maps register operand names to register file indexes.
var regMap = map[string]uint8{
	"A": REG_A,
	"B": REG_B,
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var parenRe = regexp.MustCompile(`\$\([^)]*\)`)

// valueOf returns the value of a numeral or character literal.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if len(word) == 3 && word[0] == '\'' && word[2] == '\'' {
		value = int(word[1])
		return
	}

	v64, perr := strconv.ParseInt(word, 0, 64)
	if perr != nil {
		err = ErrParseNumber(word)
		return
	}
	value = int(v64)

	return
}

// operand resolves a single operand token to its byte encoding.
// Labels resolve through the symbol table; numerals parse directly.
// A value outside the 8-bit operand range fails rather than truncates.
func (asm *Assembler) operand(word string) (b uint8, err error) {
	addr, ok := asm.Label[word]
	if ok {
		if addr > 0xff {
			err = ErrOperandRange(addr)
			return
		}
		b = uint8(addr)
		return
	}

	var value int
	value, err = asm.valueOf(word)
	if err != nil {
		if identRe.MatchString(word) {
			err = ErrLabelMissing(word)
		}
		return
	}

	if value < -128 || value > 255 {
		err = ErrOperandRange(value)
		return
	}
	b = uint8(value)

	return
}

// parenEval does assembly-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		val, verr := asm.valueOf(str)
		if verr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(val)
	}
	prog := "rc=" + expr + "\n"
	dict, xerr := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if xerr != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)

	return
}

// tokenize splits a statement into words on spaces, tabs, and commas,
// keeping quoted text intact.
func tokenize(line string) (words []string, err error) {
	var current strings.Builder
	inQuote := false
	var quote byte

	for n := 0; n < len(line); n++ {
		ch := line[n]
		switch {
		case inQuote:
			current.WriteByte(ch)
			if ch == quote {
				inQuote = false
			}
		case ch == '"' || ch == '\'':
			inQuote = true
			quote = ch
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t' || ch == ',':
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(ch)
		}
	}
	if inQuote {
		err = ErrQuoteOpen
		return
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return
}

// sizeOf computes the encoded byte length of a statement via the
// instruction table, without emitting bytes. Both passes rely on this
// single computation, so addresses can never drift between them.
func (asm *Assembler) sizeOf(words []string) (size int, err error) {
	name := strings.ToUpper(words[0])

	if name == "DB" {
		if len(words) < 2 {
			err = ErrDataEmpty
			return
		}
		for _, word := range words[1:] {
			if len(word) >= 2 && word[0] == '"' && word[len(word)-1] == '"' {
				size += len(word) - 2
			} else {
				size += 1
			}
		}
		return
	}

	op, ok := ByName(name)
	if !ok {
		err = ErrMnemonicUnknown(words[0])
		return
	}
	if len(words)-1 != len(op.Args) {
		err = ErrOperandCount
		return
	}
	size = op.Len()

	return
}

// parseLine expands a single source line into statement words:
// $() evaluation, equate substitution, and label collection.
func (asm *Assembler) parseLine(line string, lineno int, pc int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.Itoa(value)
	})
	if err != nil {
		return
	}

	words, err = tokenize(line)
	if err != nil {
		return
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !identRe.MatchString(label) {
			err = ErrLabelSyntax
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = pc
		words = words[1:]
	}

	return
}

// Parse assembles an input stream into a Program.
//
// Two passes over one parsed representation: the first assigns byte
// addresses and collects the symbol table, the second encodes bytes and
// resolves label operands. Forward references are supported; the source
// text is never re-read.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	// Pass 1 — address assignment.
	pc := 0
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.SplitN(text, ";", 2)
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno, pc)
		if err != nil {
			return
		}
		if len(words) == 0 {
			continue
		}

		var size int
		size, err = asm.sizeOf(words)
		if err != nil {
			return
		}

		asm.Statement = append(asm.Statement, Statement{LineNo: lineno, Addr: pc, Words: words})
		pc += size
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Pass 2 — encoding.
	for n := range asm.Statement {
		st := &asm.Statement[n]
		lineno = st.LineNo
		line = strings.Join(st.Words, " ")

		err = asm.encode(st)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// encode emits the bytes for a single statement.
func (asm *Assembler) encode(st *Statement) (err error) {
	name := strings.ToUpper(st.Words[0])

	if name == "DB" {
		var data []byte
		for _, word := range st.Words[1:] {
			if len(word) >= 2 && word[0] == '"' && word[len(word)-1] == '"' {
				data = append(data, word[1:len(word)-1]...)
				continue
			}
			var b uint8
			b, err = asm.operand(word)
			if err != nil {
				return
			}
			data = append(data, b)
		}
		st.Bytes = data
		return
	}

	op, ok := ByName(name)
	if !ok {
		err = ErrMnemonicUnknown(st.Words[0])
		return
	}

	data := []byte{op.Code}
	for n, kind := range op.Args {
		word := st.Words[1+n]
		switch kind {
		case ARG_REG:
			reg, is_reg := regMap[strings.ToUpper(word)]
			if !is_reg {
				err = ErrRegisterInvalid
				return
			}
			data = append(data, reg)
		case ARG_IMM, ARG_ADDR:
			var b uint8
			b, err = asm.operand(word)
			if err != nil {
				return
			}
			data = append(data, b)
		}
	}
	st.Bytes = data

	return
}
