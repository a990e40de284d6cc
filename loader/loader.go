// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package loader reads .ls8 program images.
//
// An image is a text file with one 8-bit binary literal per line. Anything
// after a '#' is a comment, and blank lines are ignored:
//
//	# print8.ls8
//	10011001 # LDI R0,8
//	00000000
//	00001000
//	01000011 # PRN R0
//	00000000
//	00000001 # HLT
package loader

import (
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

const (
	IMAGE_LIMIT   = 0x100 // Bytes in the address space.
	LITERAL_WIDTH = 8     // Binary digits per literal.
)

var (
	ErrImageTooLarge = errors.New(f("image too large"))
)

// ErrLiteral is a binary literal that is not exactly one byte wide.
type ErrLiteral struct {
	Pos  lexer.Position
	Bits string
}

func (err ErrLiteral) Error() string {
	return f("%v: '%v' is not an 8-bit binary literal", err.Pos, err.Bits)
}

// Image is the parsed form of an .ls8 file.
type Image struct {
	Values []*Value `parser:"@@*"`
}

// Value is a single binary literal.
type Value struct {
	Pos  lexer.Position
	Bits string `parser:"@Bits"`
}

var ls8Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Bits", Pattern: `[01]+`},
})

// Parser is the .ls8 image parser
var Parser = participle.MustBuild[Image](
	participle.Lexer(ls8Lexer),
	participle.Elide("Whitespace", "Comment"),
)

// Parse reads an .ls8 image into a memory image.
func Parse(input io.Reader) (image []byte, err error) {
	return parse("", input)
}

// ParseFile reads an .ls8 image from a file.
func ParseFile(path string) (image []byte, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return parse(path, inf)
}

func parse(name string, input io.Reader) (image []byte, err error) {
	parsed, err := Parser.Parse(name, input)
	if err != nil {
		return
	}

	for _, value := range parsed.Values {
		if len(value.Bits) != LITERAL_WIDTH {
			err = ErrLiteral{Pos: value.Pos, Bits: value.Bits}
			return
		}
		var v64 uint64
		v64, err = strconv.ParseUint(value.Bits, 2, 8)
		if err != nil {
			return
		}
		image = append(image, byte(v64))
	}

	if len(image) > IMAGE_LIMIT {
		image = nil
		err = ErrImageTooLarge
		return
	}

	return
}
