// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
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

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = func() map[string]string {
	equ := map[string]string{
		"LINENO": "0",
	}
	maps.Copy(equ, _cpu_defines)
	return equ
}()

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass macro assembler for the LS-8 system.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	address   int                 // Address of the next statement.
	expansion int                 // Macro expansions so far.
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]byte{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": REG_IM,
	"r6": REG_IS,
	"r7": REG_SP,
}

// valueOf returns the byte value of a simple word.
// Negative values are stored as two's complement.
func (asm *Assembler) valueOf(word string) (value byte, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xff || v64 < -0x80 {
		err = ErrValueRange
		return
	}

	value = byte(v64)

	if invert {
		value = ^value
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value byte, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = strconv.ParseInt(str, 0, 32)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
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
	if st_int64 > 0xff || st_int64 < -0x80 {
		err = ErrValueRange
		return
	}
	value = byte(st_int64)
	return
}

// splitWords splits a line on whitespace and operand commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// expandCharacters replaces 'x' literals with their decimal value.
func expandCharacters(line string) string {
	return reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

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
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reIdentifier.MatchString(label) {
			err = ErrInstructionInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrSyntax{LineNo: lineno, Line: line, Err: ErrMacro{Macro: name, Line: lineno, Err: err}}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrSyntax{LineNo: lineno, Line: line, Err: ErrMacro{Macro: name, Line: lineno, Err: err}}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Statement = asm.Statement[:0]
	asm.address = 0
	asm.expansion = 0
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(expandCharacters(text), ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		stmt := &asm.Statement[n]

		if len(stmt.LinkLabel) == 0 {
			continue
		}
		address, ok := asm.Label[stmt.LinkLabel]
		if !ok {
			lineno = stmt.LineNo
			line = strings.Join(stmt.Words, " ")
			err = ErrLabelMissing(stmt.LinkLabel)
			return
		}
		stmt.Bytes[stmt.LinkIndex] = byte(address)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// operand encodes a register name, or an immediate value or label.
func (asm *Assembler) operand(word string, immediate bool) (value byte, label string, err error) {
	if !immediate {
		reg, ok := regMap[strings.ToLower(word)]
		if !ok {
			err = ErrRegisterInvalid
		}
		value = reg
		return
	}

	if reIdentifier.MatchString(word) {
		label = word
		return
	}

	value, err = asm.valueOf(word)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []byte
	var label string
	var link int

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		if asm.address+len(codes) > 0x100 {
			err = ErrAddressRange
			return
		}
		stmt := Statement{
			LineNo:    lineno,
			Address:   asm.address,
			Words:     initial_words,
			Bytes:     codes,
			LinkLabel: label,
			LinkIndex: link,
		}
		asm.Statement = append(asm.Statement, stmt)
		asm.address += len(codes)
	}()

	switch strings.ToLower(words[0]) {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var v64 int64
		v64, err = strconv.ParseInt(words[1], 0, 32)
		if err != nil {
			err = ErrParseNumber(words[1])
			return
		}
		if v64 < 0 || v64 > 0xff {
			err = ErrAddressRange
			return
		}
		asm.address = int(v64)
		return
	case "db":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) == 2 && reIdentifier.MatchString(words[1]) {
			codes = []byte{0}
			label = words[1]
			return
		}
		for _, word := range words[1:] {
			var value byte
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
		return
	case "ds":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var v64 int64
		v64, err = strconv.ParseInt(words[1], 0, 32)
		if err != nil {
			err = ErrParseNumber(words[1])
			return
		}
		if v64 < 1 || v64 > 0x100 {
			err = ErrValueRange
			return
		}
		codes = make([]byte, v64)
		return
	}

	op, ok := LookupOpcode(words[0])
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	if len(args) < op.Operands() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > op.Operands() {
		err = ErrOpcodeExtraArgs
		return
	}

	codes = append(codes, byte(op))
	for n, word := range args {
		var value byte
		var link_label string
		value, link_label, err = asm.operand(word, op.Immediate(n))
		if err != nil {
			codes = nil
			return
		}
		if len(link_label) != 0 {
			label = link_label
			link = len(codes)
		}
		codes = append(codes, value)
	}

	return
}
